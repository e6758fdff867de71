package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "vela.yaml", `
stack_max: 512
trace_execution: true
print_code: true
log:
  verbosity: 2
  file: vela.log
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.StackMax != 512 {
		t.Errorf("stack_max = %d, want 512", s.StackMax)
	}
	if !s.TraceExecution || !s.PrintCode {
		t.Errorf("expected trace_execution and print_code to be set, got %+v", s)
	}
	if s.Log.Verbosity != 2 || s.Log.File != "vela.log" {
		t.Errorf("log settings = %+v", s.Log)
	}
	if s.Path != path {
		t.Errorf("Path = %q, want %q", s.Path, path)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "vela.toml", `
stack_max = 64
print_code = true

[log]
verbosity = 1
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.StackMax != 64 {
		t.Errorf("stack_max = %d, want 64", s.StackMax)
	}
	if !s.PrintCode || s.TraceExecution {
		t.Errorf("unexpected flags: %+v", s)
	}
	if s.Log.Verbosity != 1 {
		t.Errorf("verbosity = %d, want 1", s.Log.Verbosity)
	}
}

func TestParseDefaultsAndValidation(t *testing.T) {
	s, err := Parse([]byte("print_code: true\n"), "vela.yaml")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if s.StackMax != DefaultStackMax {
		t.Errorf("stack_max = %d, want default %d", s.StackMax, DefaultStackMax)
	}

	_, err = Parse([]byte("stack_max: -1\n"), "bad.yaml")
	if err == nil || !strings.Contains(err.Error(), "stack_max") {
		t.Fatalf("expected stack_max validation error, got %v", err)
	}

	_, err = Parse([]byte("stack_max: [\n"), "broken.yaml")
	if err == nil || !strings.Contains(err.Error(), "broken.yaml") {
		t.Fatalf("expected parse error naming the file, got %v", err)
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, "vela.toml", "stack_max = 32\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig failed: %v", err)
	}
	wantAbs, _ := filepath.Abs(want)
	if got != wantAbs {
		t.Errorf("FindConfig = %q, want %q", got, wantAbs)
	}
}

func TestResolveExplicitAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", "stack_max: 16\n")

	t.Setenv(EnvTrace, "1")
	s, err := Resolve(path, dir)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if s.StackMax != 16 {
		t.Errorf("stack_max = %d, want 16", s.StackMax)
	}
	if !s.TraceExecution {
		t.Errorf("VELA_TRACE=1 should force tracing")
	}

	t.Setenv(EnvTrace, "")
	t.Setenv(EnvConfig, path)
	s, err = Resolve("", t.TempDir())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if s.StackMax != 16 {
		t.Errorf("VELA_CONFIG not honoured: stack_max = %d", s.StackMax)
	}
}

func TestTrimSourceExt(t *testing.T) {
	if got := TrimSourceExt("dir/main.vela"); got != "dir/main" {
		t.Errorf("TrimSourceExt = %q", got)
	}
	if got := TrimSourceExt("main.txt"); got != "main.txt" {
		t.Errorf("TrimSourceExt = %q", got)
	}
}
