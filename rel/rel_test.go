package rel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustRel(t *testing.T, s string) *Rel {
	t.Helper()
	r, err := ParseRel(s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return r
}

func mustUnion(t *testing.T, s string) *UnionRel {
	t.Helper()
	ur, err := Parse(s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return ur
}

func TestReverse(t *testing.T) {
	r := mustRel(t, "{ S[i] -> T[j] : -i + j - 1 >= 0 }")
	rev := r.Reverse()
	if rev.Space.In.Name != "T" || rev.Space.Out.Name != "S" {
		t.Fatalf("reversed space is %s", rev.Space)
	}
	// (2, 3) in r becomes (3, 2) in rev
	if !r.ContainsPoint([]int64{2, 3}) || !rev.ContainsPoint([]int64{3, 2}) {
		t.Errorf("reverse lost the point: %s", rev)
	}
	if rev.ContainsPoint([]int64{2, 3}) {
		t.Errorf("reverse kept the unswapped point: %s", rev)
	}
}

func TestCurryUncurry(t *testing.T) {
	r := mustRel(t, "{ [S[i] -> R[]] -> T[j] : -i + j = 0 }")
	c := r.Curry()
	if !c.Space.Out.Wrapped() || c.Space.In.Name != "S" {
		t.Fatalf("curried space is %s", c.Space)
	}
	back := c.Uncurry()
	if !back.Space.Equal(r.Space) {
		t.Fatalf("uncurry gives space %s, want %s", back.Space, r.Space)
	}
	for i := range r.Parts {
		if !r.Parts[i].StructurallyEqual(back.Parts[i]) {
			t.Errorf("uncurry(curry(r)) changed disjunct %d", i)
		}
	}
}

func TestIntersect(t *testing.T) {
	a := mustRel(t, "{ S[i] : i >= 0 }")
	b := mustRel(t, "{ S[i] : -i + 5 >= 0 }")
	both := a.Intersect(b)
	for i := int64(-2); i <= 7; i++ {
		want := i >= 0 && i <= 5
		if got := both.ContainsPoint([]int64{i}); got != want {
			t.Errorf("membership of %d: got %v, want %v", i, got, want)
		}
	}
}

func TestUnionApplyDomain(t *testing.T) {
	dep := mustUnion(t, "{ S[i] -> S[j] : -i + j - 1 = 0 }")
	relabel := mustUnion(t, "{ S[i] -> T[k] : -i + k = 0 }")

	moved, err := dep.ApplyDomain(relabel)
	if err != nil {
		t.Fatal(err)
	}
	space := RelSpace(nil, FlatTuple("T", "i"), FlatTuple("S", "j"))
	if !moved.ContainsPoint(space, []int64{2, 3}) {
		t.Errorf("T[2] -> S[3] missing from %s", moved)
	}
	if moved.ContainsPoint(space, []int64{2, 4}) {
		t.Errorf("T[2] -> S[4] should not be in %s", moved)
	}
}

func TestUnionApplyRange(t *testing.T) {
	dep := mustUnion(t, "{ S[i] -> S[j] : -i + j - 1 = 0 }")
	shift := mustUnion(t, "{ S[i] -> T[k] : -2i + k = 0 }")

	moved, err := dep.ApplyRange(shift)
	if err != nil {
		t.Fatal(err)
	}
	// S[i] -> S[i+1] -> T[2i+2]
	space := RelSpace(nil, FlatTuple("S", "i"), FlatTuple("T", "k"))
	if !moved.ContainsPoint(space, []int64{2, 6}) {
		t.Errorf("S[2] -> T[6] missing from %s", moved)
	}
	if moved.ContainsPoint(space, []int64{2, 5}) {
		t.Errorf("S[2] -> T[5] should not be in %s", moved)
	}
}

func TestApplyDomainSkipsOtherSpaces(t *testing.T) {
	dep := mustUnion(t, "{ S[i] -> S[j] : -i + j = 0; U[i] -> U[j] : -i + j = 0 }")
	relabel := mustUnion(t, "{ S[i] -> T[k] : -i + k = 0 }")

	moved, err := dep.ApplyDomain(relabel)
	if err != nil {
		t.Fatal(err)
	}
	// only the S part is transported; the U part has no image
	if moved.NRels() != 1 {
		t.Fatalf("got %d relation spaces, want 1: %s", moved.NRels(), moved)
	}
}

func TestAlignParams(t *testing.T) {
	r := mustRel(t, "[m] -> { S[i] : m - i >= 0 }")
	aligned := r.AlignParams([]string{"n", "m"})
	if diff := cmp.Diff([]string{"n", "m"}, aligned.Space.Params); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
	// point layout is now (n, m, i)
	if !aligned.ContainsPoint([]int64{7, 3, 2}) {
		t.Errorf("alignment moved the m coefficient: %s", aligned)
	}
	if aligned.ContainsPoint([]int64{7, 3, 4}) {
		t.Errorf("alignment broke the constraint: %s", aligned)
	}

	again := aligned.AlignParams([]string{"n", "m"})
	for i := range aligned.Parts {
		if !aligned.Parts[i].StructurallyEqual(again.Parts[i]) {
			t.Errorf("aligning twice changed disjunct %d", i)
		}
	}
}

func TestMergeParams(t *testing.T) {
	got := MergeParams([]string{"n", "m"}, []string{"m", "k", "n"})
	if diff := cmp.Diff([]string{"n", "m", "k"}, got); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestNegateIneq(t *testing.T) {
	b, err := ParseBasicRel("{ S[i] : i - 3 >= 0 }")
	if err != nil {
		t.Fatal(err)
	}
	b.NegateIneq(0)
	// i - 3 >= 0 becomes -i + 2 >= 0, i.e. i <= 2
	for i := int64(0); i <= 5; i++ {
		want := i <= 2
		if got := b.ContainsPoint([]int64{i}); got != want {
			t.Errorf("membership of %d after negation: got %v, want %v", i, got, want)
		}
	}
}

func TestDivRollback(t *testing.T) {
	b, err := ParseBasicRel("{ S[i] : i >= 0 }")
	if err != nil {
		t.Fatal(err)
	}
	before := b.Copy()
	num := []int64{0, 1} // floor(i/2)
	idx := b.AddDiv(num, 2)
	if !b.SameDiv(idx, []int64{0, 1, 0}, 2) {
		t.Errorf("division %d does not match its own definition", idx)
	}
	b.RemoveLastDivs(1)
	if !b.StructurallyEqual(before) {
		t.Errorf("removing the division did not restore the relation")
	}
}
