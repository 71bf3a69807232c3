package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dyscolab/symbolite/pkg/symbolite"
)

const modelSource = `# model

x = Real()
y = Real()

z = x + 2 * y
`

const blockSource = `def scale(x: real.Real) -> real.Real:
    y = 2 * x + 1
    return y
`

// workspace creates a temp directory holding the model and block sources
// and returns it with the database path.
func workspace(t *testing.T) (dir, db string) {
	t.Helper()
	dir, err := os.MkdirTemp("", "symbolite-cli-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	if err := os.WriteFile(filepath.Join(dir, "model.sym"), []byte(modelSource), 0644); err != nil {
		t.Fatalf("failed to write model: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scale.sym"), []byte(blockSource), 0644); err != nil {
		t.Fatalf("failed to write block: %v", err)
	}
	return dir, filepath.Join(dir, "test.db")
}

// runCLI runs the command in-process and returns its exit code and output.
func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestImportThenShow(t *testing.T) {
	dir, db := workspace(t)

	code, _, errOut := runCLI(t, "", "-db", db, "-i", filepath.Join(dir, "model.sym"))
	if code != 0 {
		t.Fatalf("import failed: %s", errOut)
	}
	if !strings.Contains(errOut, "imported") || !strings.Contains(errOut, "namespace=model") {
		t.Errorf("expected an import log line, got: %s", errOut)
	}

	// A fresh session reads the stored namespace
	code, out, errOut := runCLI(t, "", "-db", db, "-show", "model")
	if code != 0 {
		t.Fatalf("show failed: %s", errOut)
	}
	if !strings.Contains(out, "z = x + 2 * y") {
		t.Errorf("expected output to contain 'z = x + 2 * y', got: %s", out)
	}
}

func TestEvaluateStoredNamespace(t *testing.T) {
	dir, db := workspace(t)
	runCLI(t, "", "-db", db, "-i", filepath.Join(dir, "model.sym"))

	code, out, errOut := runCLI(t, "", "-db", db, "-eval", "model", "-set", "x=1,y=2")
	if code != 0 {
		t.Fatalf("eval failed: %s", errOut)
	}
	if !strings.Contains(out, "z = 5\n") {
		t.Errorf("expected 'z = 5', got: %s", out)
	}

	code, out, errOut = runCLI(t, "", "-db", db, "-e", "z * 2", "-ns", "model", "-set", "x=1,y=1")
	if code != 0 {
		t.Fatalf("-e failed: %s", errOut)
	}
	if strings.TrimSpace(out) != "6" {
		t.Errorf("expected '6', got '%s'", out)
	}

	code, out, _ = runCLI(t, "", "-db", db, "-backend", "code", "-e", "z", "-ns", "model")
	if code != 0 || strings.TrimSpace(out) != "x + 2 * y" {
		t.Errorf("expected 'x + 2 * y', got '%s'", out)
	}
}

func TestListAndHistory(t *testing.T) {
	dir, db := workspace(t)
	path := filepath.Join(dir, "model.sym")
	runCLI(t, "", "-db", db, "-i", path)
	os.WriteFile(path, []byte(strings.Replace(modelSource, "2 * y", "3 * y", 1)), 0644)
	runCLI(t, "", "-db", db, "-i", path)

	code, out, errOut := runCLI(t, "", "-db", db, "-list")
	if code != 0 {
		t.Fatalf("list failed: %s", errOut)
	}
	if !strings.Contains(out, "model") || !strings.Contains(out, "v2") {
		t.Errorf("expected model at v2, got: %s", out)
	}

	_, out, _ = runCLI(t, "", "-db", db, "-history", "model")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "v2") || !strings.HasPrefix(lines[1], "v1") {
		t.Errorf("expected versions v2 and v1, got: %s", out)
	}

	_, out, _ = runCLI(t, "", "-db", db, "-history", "model", "-limit", "1")
	if strings.Count(strings.TrimSpace(out), "\n") != 0 {
		t.Errorf("expected a single version with -limit 1, got: %s", out)
	}

	code, _, _ = runCLI(t, "", "-db", db, "-delete", "model")
	if code != 0 {
		t.Fatal("delete failed")
	}
	if code, _, _ = runCLI(t, "", "-db", db, "-history", "model"); code == 0 {
		t.Error("expected an error for the history of a deleted namespace")
	}
}

func TestPipedInputImports(t *testing.T) {
	_, db := workspace(t)
	code, _, errOut := runCLI(t, modelSource, "-db", db)
	if code != 0 {
		t.Fatalf("piped import failed: %s", errOut)
	}
	_, out, _ := runCLI(t, "", "-db", db, "-list")
	if !strings.Contains(out, "model") {
		t.Errorf("expected the piped namespace to be stored, got: %s", out)
	}
}

func TestBlock(t *testing.T) {
	dir, db := workspace(t)
	path := filepath.Join(dir, "scale.sym")

	code, out, errOut := runCLI(t, "", "-db", db, "-block", path, "-args", "2")
	if code != 0 {
		t.Fatalf("block failed: %s", errOut)
	}
	if strings.TrimSpace(out) != "5" {
		t.Errorf("expected '5', got '%s'", out)
	}

	_, out, _ = runCLI(t, "", "-db", db, "-backend", "code", "-block", path)
	if !strings.Contains(out, "def scale(x: real.Real) -> real.Real:") {
		t.Errorf("expected the rendered block, got: %s", out)
	}
}

func TestErrors(t *testing.T) {
	_, db := workspace(t)
	if code, _, _ := runCLI(t, "", "-db", db, "-backend", "fortran", "-list"); code != 1 {
		t.Errorf("expected exit code 1 for an unknown backend, got %d", code)
	}
	if code, _, _ := runCLI(t, "", "-nope"); code != 2 {
		t.Errorf("expected exit code 2 for an unknown flag, got %d", code)
	}
	if code, _, errOut := runCLI(t, "", "-db", db, "-show", "missing"); code != 1 || !strings.Contains(errOut, "namespace missing not found") {
		t.Errorf("expected a not found error, got %d: %s", code, errOut)
	}
	if code, _, _ := runCLI(t, "", "-db", db, "-e", "x", "-set", "x"); code != 1 {
		t.Errorf("expected exit code 1 for a malformed binding, got %d", code)
	}
}

func TestParseBindings(t *testing.T) {
	got, err := parseBindings("x=1.5, flag=true ,name=abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["x"] != 1.5 || got["flag"] != true || got["name"] != "abc" {
		t.Errorf("unexpected bindings %v", got)
	}
	if _, err := parseBindings("=1"); err == nil {
		t.Error("expected error for an empty name")
	}
}

func TestREPL(t *testing.T) {
	dir, _ := workspace(t)
	s, err := symbolite.New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	script := strings.Join([]string{
		":import " + filepath.Join(dir, "model.sym"),
		":set x=1,y=2",
		"z + 1",
		":unset",
		":backend code",
		"z",
		":backend std",
		"def triple(a: real.Real) -> real.Real:",
		"    b = a * 3",
		"    return b",
		"",
		":call triple 2",
		":set a=4",
		":call triple",
		"b + 1",
		"(1 + \\",
		"2)",
		":nope",
		":quit",
		"1000 + 1",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := newREPL(s, &out).run(newBasicReader(strings.NewReader(script), &out)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"imported model (3 attributes)",
		">>> 6\n",
		"x + 2 * y\n",
		"compiled triple(a)",
		"6\n",
		"12\n",
		">>> 13\n",
		"3\n",
		"Error: unknown command :nope",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
	if strings.Contains(got, "1001") {
		t.Error("expected :quit to stop the REPL")
	}
}
