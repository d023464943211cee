package compiler

import (
	"strings"
	"testing"
)

// TestCompileEndToEndScenarios exercises a handful of representative
// programs, checking that each compiles to completion and produces a
// plausible-looking function body. We don't have an assembler
// available here, so these check shape, not the actual exit code of a
// produced binary.
func TestCompileEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name string
		prog string
	}{
		{"arithmetic", "int main() { return 10 + 20 - 8; }"},
		{"locals", "int main() { int a; int b; a = 3; b = 5 * 6 - 8; return a + b / 2; }"},
		{"for-loop", "int main() { int i; int s; s = 0; for (i = 0; i < 10; i = i + 1) s = s + i; return s; }"},
		{"if-else", "int main() { int x; int y; x = 3; y = 5; if (x < y) return y; else return x; }"},
		{"call", "int add(int a, int b) { return a + b; } int main() { return add(6, 7); }"},
		{"pointer", "int main() { int x; int y; x = 3; y = &x; return *y; }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New(tt.prog).Compile()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasPrefix(out, ".intel_syntax noprefix\n.globl main\n") {
				t.Fatalf("missing fixed header:\n%s", out)
			}
			if !strings.Contains(out, "main:\n") {
				t.Fatalf("missing main: label:\n%s", out)
			}
		})
	}
}

func TestCompileReportsLexicalError(t *testing.T) {
	_, err := New("int main() { return x; }").Compile()
	if err == nil {
		t.Fatalf("expected an error for an undefined identifier")
	}
}

func TestCompileReportsSyntaxError(t *testing.T) {
	_, err := New("int main() { return 1 + ; }").Compile()
	if err == nil {
		t.Fatalf("expected an error for a malformed expression")
	}
}

func TestCompileReportsNonLvalueAssignment(t *testing.T) {
	_, err := New("int main() { 1 = 2; return 0; }").Compile()
	if err == nil {
		t.Fatalf("expected an error for assignment to a non-lvalue")
	}
}

func TestCompileDebugInsertsTrap(t *testing.T) {
	c := New("int main() { return 0; }")
	c.SetDebug(true)
	out, err := c.Compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "int3") {
		t.Errorf("expected an int3 trap with debug enabled, got:\n%s", out)
	}
}

// TestCompileEmptyProgramIsHeaderOnly checks the restored edge case:
// a source file with no top-level definitions compiles successfully
// to header-only output, rather than erroring.
func TestCompileEmptyProgramIsHeaderOnly(t *testing.T) {
	out, err := New("").Compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != ".intel_syntax noprefix\n.globl main\n" {
		t.Fatalf("expected header-only output, got:\n%s", out)
	}
}
