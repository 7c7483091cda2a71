package rel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// reparse checks that printing and parsing again yields the same structure.
func reparse(t *testing.T, s string) *Rel {
	t.Helper()
	first, err := ParseRel(s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	second, err := ParseRel(first.String())
	if err != nil {
		t.Fatalf("reparsing %q: %v", first.String(), err)
	}
	if len(first.Parts) != len(second.Parts) {
		t.Fatalf("reparse of %q changed the number of disjuncts", s)
	}
	for i := range first.Parts {
		if !first.Parts[i].StructurallyEqual(second.Parts[i]) {
			t.Errorf("reparse of %q changed disjunct %d:\n  %s\n  %s",
				s, i, first.String(), second.String())
		}
	}
	return first
}

func TestParseRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{"universe set", "{ S[i] }"},
		{"simple set", "{ S[i] : i >= 0 }"},
		{"simple map", "{ S[i] -> T[j] : -i + j = 0 }"},
		{"parametric", "[n] -> { S[i] : i >= 0 and n - i - 1 >= 0 }"},
		{"two params", "[n, m] -> { S[i, j] : i >= 0 and j >= 0 and n - i - 1 >= 0 and m - j - 1 >= 0 }"},
		{"chained ops", "{ S[i] -> T[j] : 0 <= j <= i }"},
		{"strict", "{ S[i] -> S[j] : j > i }"},
		{"coefficients", "{ S[i] -> T[j] : 2i - 3j + 1 >= 0 }"},
		{"union", "{ S[i] : i >= 0; S[i] : -i - 1 >= 0 }"},
		{"exists", "{ S[i] : exists (e0 = floor((i)/2): i - 2e0 = 0) }"},
		{"wrapped domain", "{ [S[i] -> R[]] -> T[j] : -i + j = 0 }"},
		{"wrapped both", "{ [S[i] -> R[]] -> [T[j] -> R[]] : -i + j = 0 }"},
		{"flat tuples", "{ [i, j] -> [k] : i + j - k = 0 }"},
		{"params only", "[n] -> { : n - 1 >= 0 }"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reparse(t, tc.src)
		})
	}
}

func TestParsePrintsCanonically(t *testing.T) {
	testCases := []struct {
		src string
		exp string
	}{
		{"{ S[i] : i >= 0 }", "{ S[i] : i >= 0 }"},
		{"{S[i]: 0 <= i <= 9}", "{ S[i] : i >= 0 and -i + 9 >= 0 }"},
		{"{ S[i] -> T[j] : j = i }", "{ S[i] -> T[j] : -i + j = 0 }"},
		{"[n] -> { S[i] : i < n }", "[n] -> { S[i] : n - i - 1 >= 0 }"},
		{"{ S[] }", "{ S[] }"},
	}

	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			r, err := ParseRel(tc.src)
			if err != nil {
				t.Fatalf("parsing %q: %v", tc.src, err)
			}
			if got := r.String(); got != tc.exp {
				t.Errorf("printed %q, want %q", got, tc.exp)
			}
		})
	}
}

// Keywords after an integer literal must not be taken as the multiplicand:
// "i >= 0 and ..." reads the 0 as a constant, not as 0 * and.
func TestParseKeywordAfterConstant(t *testing.T) {
	b, err := ParseBasicRel("{ S[i] : i >= 0 and -i + 9 >= 0 }")
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	for i := int64(-2); i <= 11; i++ {
		want := i >= 0 && i <= 9
		if got := b.ContainsPoint([]int64{i}); got != want {
			t.Errorf("membership of %d: got %v, want %v", i, got, want)
		}
	}
	if _, err := ParseSet("{ S[i] : exists (e0 = floor((i)/2): 2e0 - i >= 0 and i - 2e0 >= 0) }"); err != nil {
		t.Errorf("keywords inside exists body: %v", err)
	}
}

func TestParseRejectsKeywordIdentifiers(t *testing.T) {
	for _, src := range []string{
		"{ and[i] }",
		"{ S[exists] }",
		"{ S[i] : i + floor >= 0 }",
	} {
		if _, err := Parse(src); err == nil {
			t.Errorf("parsing %q succeeded, expected an error", src)
		}
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{"missing brace", "{ S[i] : i >= 0"},
		{"unknown identifier", "{ S[i] : j >= 0 }"},
		{"bad operator", "{ S[i] : i >< 0 }"},
		{"empty", ""},
		{"trailing garbage", "{ S[i] } nonsense"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.src); err == nil {
				t.Errorf("parsing %q succeeded, expected an error", tc.src)
			}
		})
	}
}

func TestParseSpaces(t *testing.T) {
	r, err := ParseRel("[n] -> { S[i, j] -> T[k] : k >= 0 }")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"n"}, r.Space.Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	if r.Space.NIn() != 2 || r.Space.NOut() != 1 {
		t.Errorf("got %d -> %d dims, want 2 -> 1", r.Space.NIn(), r.Space.NOut())
	}
	if r.Space.In.Name != "S" || r.Space.Out.Name != "T" {
		t.Errorf("got tuples %s -> %s, want S -> T", r.Space.In.Name, r.Space.Out.Name)
	}
}

func TestParseMultiAff(t *testing.T) {
	testCases := []string{
		"{ S[i] -> [(i)] }",
		"[n] -> { S[i] -> [(i), (n - i)] }",
		"{ S[i, j] -> [(2i + j - 1)] }",
	}
	for _, src := range testCases {
		t.Run(src, func(t *testing.T) {
			ma, err := ParseMultiAff(src)
			if err != nil {
				t.Fatalf("parsing %q: %v", src, err)
			}
			again, err := ParseMultiAff(ma.String())
			if err != nil {
				t.Fatalf("reparsing %q: %v", ma.String(), err)
			}
			if !ma.Equal(again) {
				t.Errorf("reparse of %q changed the expression: %s vs %s",
					src, ma.String(), again.String())
			}
		})
	}
}

func TestContainsPoint(t *testing.T) {
	even, err := ParseSet("{ S[i] : exists (e0 = floor((i)/2): i - 2e0 = 0) }")
	if err != nil {
		t.Fatal(err)
	}
	for i := int64(-4); i <= 4; i++ {
		want := i%2 == 0
		if got := even.ContainsPoint([]int64{i}); got != want {
			t.Errorf("membership of %d: got %v, want %v", i, got, want)
		}
	}
}
