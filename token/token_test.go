package token

import "testing"

// TestOpString covers the printable form of each operation, used in
// diagnostics and trace output.
func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{Add, "+"},
		{Sub, "-"},
		{Mul, "*"},
		{Div, "/"},
		{Eq, "=="},
		{Ne, "!="},
		{Lt, "<"},
		{Le, "<="},
		{Gt, ">"},
		{Ge, ">="},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

// TestListCursor exercises the peek/advance cursor in isolation.
func TestListCursor(t *testing.T) {
	toks := []Token{
		{Kind: Number, Number: 1, Pos: 0},
		{Kind: Operation, Op: Add, Pos: 2},
		{Kind: Number, Number: 2, Pos: 4},
	}
	l := NewList(toks, 0)

	if l.Empty() {
		t.Fatalf("freshly built list should not be empty")
	}

	first, ok := l.Peek()
	if !ok || first.Number != 1 {
		t.Fatalf("Peek() = %+v, %v", first, ok)
	}

	if !l.ConsumeKind(Number) {
		t.Fatalf("expected to consume a Number token")
	}
	if l.ConsumeKind(Number) {
		t.Fatalf("did not expect a second Number token")
	}
	if !l.ConsumeOp(Add) {
		t.Fatalf("expected to consume the Add operation")
	}

	last, ok := l.Advance()
	if !ok || last.Number != 2 {
		t.Fatalf("Advance() = %+v, %v", last, ok)
	}

	if !l.Empty() {
		t.Errorf("expected list to be empty after consuming every token")
	}
}
