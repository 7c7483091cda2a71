package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testDoc = `domain: '{ S[i] : i >= 0 and -i + 9 >= 0 }'
validity: '{ S[i] -> S[j] : -i + j - 1 = 0 }'
`

func writeDoc(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "constraints.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunStats(t *testing.T) {
	var buf bytes.Buffer
	if err := runStats(writeDoc(t, testDoc), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"relations:", "basic relations:", "inter:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}
}

func TestRunStatsMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := runStats(filepath.Join(t.TempDir(), "nope.yaml"), &buf); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestRunAlign(t *testing.T) {
	doc := `domain: '[n] -> { S[i] : i >= 0 and n - i - 1 >= 0 }'
context: '[m] -> { : m - 1 >= 0 }'
`
	var buf bytes.Buffer
	if err := runAlign(writeDoc(t, doc), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "[n, m]") {
		t.Errorf("aligned output misses the merged parameter list:\n%s", out)
	}
}

func TestLexRun(t *testing.T) {
	o := &lexOptions{max: true}
	var buf bytes.Buffer
	err := o.run("{ [i] -> [j] : 0 <= j <= i }", "{ [i] : 0 <= i <= 10 }", &buf)
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "result:") || !strings.Contains(out, "residual:") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestLexRunRejectsBadInput(t *testing.T) {
	o := &lexOptions{}
	var buf bytes.Buffer
	if err := o.run("nonsense", "{ [i] }", &buf); err == nil {
		t.Error("expected a parse error for the relation")
	}
	if err := o.run("{ [i] -> [j] }", "nonsense", &buf); err == nil {
		t.Error("expected a parse error for the domain")
	}
	if err := o.run("{ [i] -> [j] }", "{ [i] -> [j] }", &buf); err == nil {
		t.Error("expected an error for a non-set domain")
	}
	if err := o.run("{ [i, k] -> [j] }", "{ [i] }", &buf); err == nil {
		t.Error("expected a dimension mismatch error")
	}
}
