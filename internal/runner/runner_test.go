package runner_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codvm/internal/runner"
	"codvm/pkg/bytecode"
	"codvm/pkg/vm"
)

const factorial = `GOTO start<<1>>
LABEL fact<<2>>
LOAD 0 n
LIT 2
BOP <
FALSEBRANCH else<<3>>
LIT 1
RETURN fact<<2>>
LABEL else<<3>>
LOAD 0 n
LOAD 0 n
LIT 1
BOP -
ARGS 1
CALL fact<<2>>
BOP *
RETURN fact<<2>>
LABEL start<<1>>
READ
ARGS 1
CALL fact<<2>>
WRITE
HALT
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunSource(t *testing.T) {
	dir := t.TempDir()
	var out strings.Builder

	r := runner.Runner{
		NoColor:    true,
		Quiet:      true,
		SourceFile: writeFile(t, dir, "fact.cod", factorial),
		Input:      strings.NewReader("5\n"),
		Output:     &out,
	}
	if err := r.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "Please enter an integer: 120\n"
	if out.String() != expected {
		t.Errorf("expected %q, got %q", expected, out.String())
	}
}

func TestEmitAndRunImage(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "fact.cbi")

	emit := runner.Runner{
		NoColor:    true,
		CheckOnly:  true,
		SourceFile: writeFile(t, dir, "fact.cod", factorial),
		ImageOut:   image,
		Output:     &strings.Builder{},
	}
	if err := emit.Run(); err != nil {
		t.Fatalf("emit: %v", err)
	}

	var out strings.Builder
	run := runner.Runner{
		NoColor:    true,
		Quiet:      true,
		SourceFile: image,
		Input:      strings.NewReader("4\n"),
		Output:     &out,
	}
	if err := run.Run(); err != nil {
		t.Fatalf("run image: %v", err)
	}
	if !strings.HasSuffix(out.String(), "24\n") {
		t.Errorf("expected 24, got %q", out.String())
	}
}

func TestVerboseListing(t *testing.T) {
	dir := t.TempDir()
	var out strings.Builder

	r := runner.Runner{
		NoColor:    true,
		Verbose:    true,
		CheckOnly:  true,
		SourceFile: writeFile(t, dir, "fact.cod", factorial),
		Output:     &out,
	}
	if err := r.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"=== Resolved Program ===", "0: GOTO start<<1>> -> 17", "22: HALT\n"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("listing is missing %q:\n%s", want, out.String())
		}
	}
	if strings.Contains(out.String(), "Program Output") {
		t.Errorf("check-only run should not execute")
	}
}

func TestSyntaxErrors(t *testing.T) {
	dir := t.TempDir()
	var out strings.Builder

	r := runner.Runner{
		NoColor:    true,
		SourceFile: writeFile(t, dir, "bad.cod", "LIT 1\nJUMP x\n"),
		Output:     &out,
	}
	err := r.Run()
	if !errors.Is(err, bytecode.ErrUnknownOpcode) {
		t.Fatalf("expected ErrUnknownOpcode, got %v", err)
	}
	if !strings.Contains(out.String(), "Line: 2, Column 1") {
		t.Errorf("expected error position in output, got %q", out.String())
	}
}

func TestConfigMaxSteps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "codvm.toml", "max_steps = 50\n")

	r := runner.Runner{
		NoColor:    true,
		SourceFile: writeFile(t, dir, "loop.cod", "LABEL top\nGOTO top\n"),
		Output:     &strings.Builder{},
	}
	if err := r.Run(); !errors.Is(err, vm.ErrMaxStepsExceeded) {
		t.Errorf("expected ErrMaxStepsExceeded, got %v", err)
	}
}

func TestTraceByDefault(t *testing.T) {
	dir := t.TempDir()
	var out strings.Builder

	r := runner.Runner{
		NoColor:    true,
		SourceFile: writeFile(t, dir, "lit.cod", "LIT 7 x\nHALT\n"),
		Output:     &out,
	}
	if err := r.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "LIT 7 x\tint x\n{0}-[7]\n"
	if out.String() != expected {
		t.Errorf("expected %q, got %q", expected, out.String())
	}
}

func TestConfigureFromFile(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "settings.yaml", "trace: false\nverbose: true\nno_color: true\n")
	var out strings.Builder

	r := runner.Runner{
		ConfigFile: config,
		CheckOnly:  true,
		SourceFile: writeFile(t, dir, "lit.cod", "LIT 7 x\nHALT\n"),
		Output:     &out,
	}
	if err := r.Configure(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Quiet || !r.Verbose || !r.NoColor {
		t.Errorf("expected settings from the file, got quiet=%v verbose=%v no_color=%v", r.Quiet, r.Verbose, r.NoColor)
	}

	if err := r.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "=== Resolved Program ===") {
		t.Errorf("expected a verbose listing, got %q", out.String())
	}
}

func TestQuietFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "codvm.toml", "trace = false\n")
	var out strings.Builder

	r := runner.Runner{
		NoColor:    true,
		SourceFile: writeFile(t, dir, "dump.cod", "LIT 1\nDUMP ON\nLIT 2\nHALT\n"),
		Output:     &out,
	}
	if err := r.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "LIT 2\n{0}-[1, 2]\n"
	if out.String() != expected {
		t.Errorf("expected %q, got %q", expected, out.String())
	}
}

func TestMissingFile(t *testing.T) {
	r := runner.Runner{SourceFile: filepath.Join(t.TempDir(), "nope.cod"), Output: &strings.Builder{}}
	if err := r.Run(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}
