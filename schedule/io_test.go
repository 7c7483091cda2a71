package schedule

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullDoc = `
domain: '[n] -> { S[i] : i >= 0 and n - i - 1 >= 0 }'
context: '[n] -> { : n - 1 >= 0 }'
validity: '[n] -> { S[i] -> S[j] : -i + j - 1 = 0 }'
proximity: '[n] -> { S[i] -> S[j] : -i + j - 1 = 0 }'
coincidence: '[n] -> { S[i] -> S[j] : -i + j = 0 }'
condition: '[n] -> { [S[i] -> R[]] -> [S[j] -> R[]] : -i + j = 0 }'
conditional_validity: '[n] -> { [S[i] -> R[]] -> [S[j] -> R[]] : -i + j - 1 = 0 }'
intra_consecutivity:
  - '[n] -> { S[i] -> [(i)] }'
inter_consecutivity:
  - '[n] -> { S[i] -> [k] : k >= 0 }'
prefix: '[n] -> { S[i] -> [(i)] }'
`

func TestReadFullDocument(t *testing.T) {
	s, err := ReadString(fullDoc)
	require.NoError(t, err)

	assert.False(t, s.Context().IsUniverse())
	assert.False(t, s.Validity().IsEmpty())
	assert.False(t, s.Proximity().IsEmpty())
	assert.False(t, s.Coincidence().IsEmpty())
	assert.False(t, s.ConditionalValidityCondition().IsEmpty())
	assert.False(t, s.ConditionalValidity().IsEmpty())
	assert.Len(t, s.Intra(), 1)
	assert.Len(t, s.Inter(), 1)
	assert.Equal(t, 1, s.Prefix().Dim())
}

func TestRoundTrip(t *testing.T) {
	s1, err := ReadString(fullDoc)
	require.NoError(t, err)

	out := s1.String()
	s2, err := ReadString(out)
	require.NoError(t, err)

	assert.Equal(t, s1.String(), s2.String())
	assert.Equal(t, s1.NBasicRels(), s2.NBasicRels())
	assert.Equal(t, s1.NInter(), s2.NInter())
}

func TestWriteOmitsDefaults(t *testing.T) {
	s, err := ReadString("domain: '{ S[i] : i >= 0 }'")
	require.NoError(t, err)

	out := s.String()
	assert.Contains(t, out, "domain")
	for _, key := range []string{"context", "validity", "proximity", "coincidence",
		"condition", "conditional_validity", keyIntra, keyInter, keyPrefix} {
		assert.NotContains(t, out, key+":", "default field %q written", key)
	}

	s2, err := ReadString(out)
	require.NoError(t, err)
	assert.Equal(t, s.String(), s2.String())
}

func TestWriteOrder(t *testing.T) {
	s, err := ReadString(fullDoc)
	require.NoError(t, err)

	out := s.String()
	order := []string{"domain:", "context:", "validity:", "proximity:",
		"coincidence:", "condition:", "conditional_validity:",
		"intra_consecutivity:", "inter_consecutivity:", "prefix:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(out, key)
		require.GreaterOrEqual(t, idx, 0, "key %q missing from output", key)
		assert.Greater(t, idx, last, "key %q out of order in:\n%s", key, out)
		last = idx
	}
}

func TestReadRejectsUnknownKeys(t *testing.T) {
	_, err := ReadString("domain: '{ S[i] }'\nfrobnicate: '{ S[i] }'")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key")
}

func TestReadRejectsDuplicateKeys(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"domain twice", "domain: '{ S[i] }'\ndomain: '{ T[i] }'"},
		{"validity twice", "domain: '{ S[i] }'\n" +
			"validity: '{ S[i] -> S[j] : -i + j = 0 }'\n" +
			"validity: '{ S[i] -> S[j] : -i + j - 1 = 0 }'"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadString(tc.doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "duplicate key")
		})
	}
}

func TestReadRequiresDomain(t *testing.T) {
	_, err := ReadString("validity: '{ S[i] -> S[j] : -i + j = 0 }'")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain")
}

func TestReadRejectsBadValues(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"list for scalar", "domain:\n  - '{ S[i] }'"},
		{"scalar for list", "domain: '{ S[i] }'\nintra_consecutivity: '{ S[i] -> [(i)] }'"},
		{"unparsable", "domain: 'not a set'"},
		{"relation as domain", "domain: '{ S[i] -> S[j] }'"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadString(tc.doc)
			assert.Error(t, err)
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "constraints.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullDoc), 0o644))

	s, err := ReadFile(path)
	require.NoError(t, err)
	assert.False(t, s.Validity().IsEmpty())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
