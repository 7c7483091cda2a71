package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbelos/polysched/rel"
)

func mustDomain(t *testing.T, s string) *rel.UnionSet {
	t.Helper()
	d, err := rel.ParseUnionSet(s)
	require.NoError(t, err)
	return d
}

func mustUnion(t *testing.T, s string) *rel.UnionRel {
	t.Helper()
	ur, err := rel.Parse(s)
	require.NoError(t, err)
	return ur
}

func TestOnDomainDefaults(t *testing.T) {
	s, err := OnDomain(mustDomain(t, "[n] -> { S[i] : i >= 0 and n - i - 1 >= 0 }"))
	require.NoError(t, err)

	assert.True(t, s.Context().IsUniverse())
	assert.Equal(t, 0, s.Prefix().Dim())
	for k := Validity; k < nKinds; k++ {
		assert.True(t, s.Get(k).IsEmpty(), "kind %s", k)
	}
	assert.Empty(t, s.Intra())
	assert.Empty(t, s.Inter())

	_, err = OnDomain(nil)
	assert.Error(t, err)
}

func TestSettersDoNotMutateReceiver(t *testing.T) {
	s, err := OnDomain(mustDomain(t, "{ S[i] : i >= 0 }"))
	require.NoError(t, err)

	ctx, err := rel.ParseSet("[n] -> { : n - 1 >= 0 }")
	require.NoError(t, err)
	s2, err := s.SetContext(ctx)
	require.NoError(t, err)

	assert.True(t, s.Context().IsUniverse(), "receiver changed")
	assert.False(t, s2.Context().IsUniverse())

	s3, err := s.Set(Validity, mustUnion(t, "{ S[i] -> S[j] : -i + j - 1 = 0 }"))
	require.NoError(t, err)
	assert.True(t, s.Validity().IsEmpty(), "receiver changed")
	assert.False(t, s3.Validity().IsEmpty())
}

func TestGettersReturnCopies(t *testing.T) {
	s, err := OnDomain(mustDomain(t, "{ S[i] : i >= 0 }"))
	require.NoError(t, err)

	before := s.Domain().String()
	d := s.Domain()
	d.Rels[0].Parts[0].AddIneq([]int64{5, -1})
	assert.Equal(t, before, s.Domain().String(), "mutating a returned copy leaked into the store")
}

func TestAddIsCommutative(t *testing.T) {
	s, err := OnDomain(mustDomain(t, "{ S[i] : i >= 0 and -i + 9 >= 0 }"))
	require.NoError(t, err)

	c1 := mustUnion(t, "{ S[i] -> S[j] : -i + j - 1 = 0 }")
	c2 := mustUnion(t, "{ S[i] -> S[j] : -i + j - 2 = 0 }")

	s12, err := s.Add(Validity, c1)
	require.NoError(t, err)
	s12, err = s12.Add(Validity, c2)
	require.NoError(t, err)

	s21, err := s.Add(Validity, c2)
	require.NoError(t, err)
	s21, err = s21.Add(Validity, c1)
	require.NoError(t, err)

	space := rel.RelSpace(nil, rel.FlatTuple("S", "i"), rel.FlatTuple("S", "j"))
	for i := int64(0); i <= 4; i++ {
		for j := int64(0); j <= 4; j++ {
			want := j == i+1 || j == i+2
			assert.Equal(t, want, s12.Validity().ContainsPoint(space, []int64{i, j}),
				"s12 at (%d, %d)", i, j)
			assert.Equal(t, want, s21.Validity().ContainsPoint(space, []int64{i, j}),
				"s21 at (%d, %d)", i, j)
		}
	}
	assert.Equal(t, s12.NBasicRels(), s21.NBasicRels())
}

func TestSetConditionalValidity(t *testing.T) {
	s, err := OnDomain(mustDomain(t, "{ S[i] : i >= 0 }"))
	require.NoError(t, err)

	cond := mustUnion(t, "{ [S[i] -> R[]] -> [S[j] -> R[]] : -i + j = 0 }")
	val := mustUnion(t, "{ [S[i] -> R[]] -> [S[j] -> R[]] : -i + j - 1 = 0 }")
	s2, err := s.SetConditionalValidity(cond, val)
	require.NoError(t, err)

	assert.False(t, s2.ConditionalValidityCondition().IsEmpty())
	assert.False(t, s2.ConditionalValidity().IsEmpty())
	assert.True(t, s.ConditionalValidity().IsEmpty(), "receiver changed")
}

func TestApplyRelabelsEverything(t *testing.T) {
	s, err := OnDomain(mustDomain(t, "{ S[i] : i >= 0 and -i + 9 >= 0 }"))
	require.NoError(t, err)
	s, err = s.Set(Validity, mustUnion(t, "{ S[i] -> S[j] : -i + j - 1 = 0 }"))
	require.NoError(t, err)
	s, err = s.SetIntra(rel.MultiAffList{mustMultiAff(t, "{ S[i] -> [(i)] }")})
	require.NoError(t, err)
	prefix, err := rel.ParseMultiAff("{ S[i] -> [(i)] }")
	require.NoError(t, err)
	s, err = s.SetPrefix(prefix)
	require.NoError(t, err)

	umap := mustUnion(t, "{ S[i] -> T[k] : -i + k = 0 }")
	s2, err := s.Apply(umap)
	require.NoError(t, err)

	valSpace := rel.RelSpace(nil, rel.FlatTuple("T", "i"), rel.FlatTuple("T", "j"))
	assert.True(t, s2.Validity().ContainsPoint(valSpace, []int64{2, 3}))
	assert.False(t, s2.Validity().ContainsPoint(valSpace, []int64{2, 4}))

	domSpace := rel.SetSpace(nil, rel.FlatTuple("T", "k"))
	assert.True(t, s2.Domain().ContainsPoint(domSpace, []int64{5}))
	assert.False(t, s2.Domain().ContainsPoint(domSpace, []int64{12}))

	// intra, inter and the prefix cannot be transported
	assert.Empty(t, s2.Intra())
	assert.Empty(t, s2.Inter())
	assert.Equal(t, 0, s2.Prefix().Dim())
}

func TestApplyReachesTaggedDomains(t *testing.T) {
	s, err := OnDomain(mustDomain(t, "{ S[i] : i >= 0 and -i + 9 >= 0 }"))
	require.NoError(t, err)
	s, err = s.Set(Condition, mustUnion(t, "{ [S[i] -> R[]] -> [S[j] -> R[]] : -i + j = 0 }"))
	require.NoError(t, err)

	umap := mustUnion(t, "{ S[i] -> T[k] : -i + k = 0 }")
	s2, err := s.Apply(umap)
	require.NoError(t, err)

	space := rel.RelSpace(nil,
		rel.WrapTuple(rel.FlatTuple("T", "i"), rel.FlatTuple("R")),
		rel.WrapTuple(rel.FlatTuple("T", "j"), rel.FlatTuple("R")))
	assert.True(t, s2.ConditionalValidityCondition().ContainsPoint(space, []int64{2, 2}))
	assert.False(t, s2.ConditionalValidityCondition().ContainsPoint(space, []int64{2, 3}))
}

func TestAlignParams(t *testing.T) {
	s, err := OnDomain(mustDomain(t, "[n] -> { S[i] : i >= 0 and n - i - 1 >= 0 }"))
	require.NoError(t, err)
	ctx, err := rel.ParseSet("[m] -> { : m - 1 >= 0 }")
	require.NoError(t, err)
	s, err = s.SetContext(ctx)
	require.NoError(t, err)

	s2 := s.AlignParams()
	assert.Equal(t, []string{"n", "m"}, s2.Domain().Params)
	assert.Equal(t, []string{"n", "m"}, s2.Context().Space.Params)
	assert.Equal(t, []string{"n", "m"}, s2.Validity().Params)

	s3 := s2.AlignParams()
	assert.Equal(t, s2.String(), s3.String(), "aligning twice changed the store")
}

func TestCounts(t *testing.T) {
	s, err := OnDomain(mustDomain(t, "{ S[i] : i >= 0 }"))
	require.NoError(t, err)
	s, err = s.Set(Validity, mustUnion(t, "{ S[i] -> S[j] : -i + j - 1 = 0; S[i] -> S[j] : -i + j - 2 = 0 }"))
	require.NoError(t, err)
	s, err = s.Set(Proximity, mustUnion(t, "{ S[i] -> S[j] : -i + j = 0 }"))
	require.NoError(t, err)
	inter, err := rel.ParseRel("{ S[i] -> [k] : k >= 0 }")
	require.NoError(t, err)
	s, err = s.SetInter(rel.RelList{inter})
	require.NoError(t, err)

	assert.Equal(t, 3, s.NBasicRels())
	assert.Equal(t, 1, s.NInter())
	assert.Equal(t, 3, s.NRels())

	var invalid *Store
	assert.Equal(t, -1, invalid.NBasicRels())
	assert.Equal(t, -1, invalid.NInter())
	assert.Equal(t, -1, invalid.NRels())
}

func mustMultiAff(t *testing.T, s string) *rel.MultiAff {
	t.Helper()
	ma, err := rel.ParseMultiAff(s)
	require.NoError(t, err)
	return ma
}
