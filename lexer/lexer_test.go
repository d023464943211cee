package lexer

import (
	"testing"

	"github.com/birchlang/mcc/source"
	"github.com/birchlang/mcc/token"
)

func tokenize(t *testing.T, src string) []*token.List {
	t.Helper()
	ctx := source.New(src)
	return New(ctx, source.Panic).Tokenize()
}

// TestSingleFunction exercises a minimal function, checking the
// emitted token kinds.
func TestSingleFunction(t *testing.T) {
	lists := tokenize(t, "int main() { return 10 + 20 - 8; }")

	if len(lists) != 1 {
		t.Fatalf("expected exactly one function, got %d", len(lists))
	}

	want := []token.Kind{
		token.FunctionDefinition,
		token.LeftParen, token.RightParen,
		token.LeftBrace,
		token.Return,
		token.Number, token.Operation, token.Number, token.Operation, token.Number,
		token.Semicolon,
		token.RightBrace,
	}

	l := lists[0]
	for i, k := range want {
		tok, ok := l.PeekAt(i)
		if !ok {
			t.Fatalf("token %d missing, wanted %s", i, k)
		}
		if tok.Kind != k {
			t.Errorf("token %d: got kind %s, want %s", i, tok.Kind, k)
		}
	}
}

// TestLocalVariableInterning checks that repeated uses of the same
// name map to the same offset, and that local_stack_size equals 8
// times the number of distinct names.
func TestLocalVariableInterning(t *testing.T) {
	lists := tokenize(t, "int main() { int a; int b; a = 3; b = a; return b; }")
	if len(lists) != 1 {
		t.Fatalf("expected one function, got %d", len(lists))
	}
	l := lists[0]

	if l.LocalStackSize != 16 {
		t.Fatalf("expected local stack size 16 for two locals, got %d", l.LocalStackSize)
	}

	var offsets []int
	for {
		tok, ok := l.Advance()
		if !ok {
			break
		}
		if tok.Kind == token.LocalVariable || tok.Kind == token.LocalVariableDefinition {
			offsets = append(offsets, tok.Offset)
		}
	}

	// declare a (8), declare b (16), "a = 3" target a (8), "b = a"
	// target b (16) then rhs a (8), return b (16).
	want := []int{8, 16, 8, 16, 8, 16}
	if len(offsets) != len(want) {
		t.Fatalf("got %d local references, want %d: %v", len(offsets), len(want), offsets)
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Errorf("reference %d: got offset %d, want %d", i, offsets[i], want[i])
		}
	}
}

// TestTwoFunctions checks that the lexer splits output at each
// balanced top-level function body.
func TestTwoFunctions(t *testing.T) {
	lists := tokenize(t, "int add(int a, int b) { return a + b; } int main() { return add(6, 7); }")
	if len(lists) != 2 {
		t.Fatalf("expected two functions, got %d", len(lists))
	}
	if lists[0].LocalStackSize != 16 {
		t.Errorf("add() should have two locals (16 bytes), got %d", lists[0].LocalStackSize)
	}
	if lists[1].LocalStackSize != 0 {
		t.Errorf("main() should have no locals, got %d", lists[1].LocalStackSize)
	}
}

// TestComments checks both comment forms are skipped.
func TestComments(t *testing.T) {
	lists := tokenize(t, "int main() { // a line comment\n /* a block\n comment */ return 1; }")
	if len(lists) != 1 {
		t.Fatalf("expected one function, got %d", len(lists))
	}
}

// TestGtGeEmittedByLexer checks the lexer itself still emits Gt for
// ">"; normalization into Lt/Le happens in the parser, not here.
func TestGtGeEmittedByLexer(t *testing.T) {
	lists := tokenize(t, "int main() { return 1 > 2; }")
	l := lists[0]
	var sawGt bool
	for {
		tok, ok := l.Advance()
		if !ok {
			break
		}
		if tok.Kind == token.Operation && tok.Op == token.Gt {
			sawGt = true
		}
	}
	if !sawGt {
		t.Errorf("expected the lexer to emit a Gt operation token")
	}
}

// TestUndefinedIdentifierPanics checks that referencing an unknown
// name is a lexical error.
func TestUndefinedIdentifierPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for an undefined identifier")
		}
	}()
	tokenize(t, "int main() { return x; }")
}

// TestRedefinitionPanics checks that declaring the same local name
// twice is a lexical error.
func TestRedefinitionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for a redefined local")
		}
	}()
	tokenize(t, "int main() { int a; int a; return a; }")
}

// TestUnterminatedBlockCommentPanics checks that an unterminated /*
// comment is reported.
func TestUnterminatedBlockCommentPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for an unterminated block comment")
		}
	}()
	tokenize(t, "int main() { /* never closed return 1; }")
}
