package token

// List is an ordered, indexed sequence of tokens for a single
// top-level function definition, with a peek/advance cursor. Holding
// an indexed slice rather than an intrusive linked list keeps
// ownership simple: "consume if matches" becomes a trivial cursor
// predicate, while every consumed token's position stays addressable
// for diagnostics (it's still sitting in the backing slice).
type List struct {
	tokens []Token
	pos    int

	// LocalStackSize is 8 * the number of distinct local names
	// interned while lexing this function.
	LocalStackSize int
}

// NewList wraps a slice of tokens already produced by the lexer for
// one function body.
func NewList(tokens []Token, localStackSize int) *List {
	return &List{tokens: tokens, LocalStackSize: localStackSize}
}

// Empty reports whether every token has been consumed.
func (l *List) Empty() bool {
	return l.pos >= len(l.tokens)
}

// Peek returns the next unconsumed token and true, or the zero Token
// and false if the list is empty.
func (l *List) Peek() (Token, bool) {
	if l.Empty() {
		return Token{}, false
	}
	return l.tokens[l.pos], true
}

// PeekAt returns the token `ahead` positions past the cursor (0 ==
// Peek), or false if that position doesn't exist.
func (l *List) PeekAt(ahead int) (Token, bool) {
	i := l.pos + ahead
	if i < 0 || i >= len(l.tokens) {
		return Token{}, false
	}
	return l.tokens[i], true
}

// Advance consumes and returns the next token.
func (l *List) Advance() (Token, bool) {
	tok, ok := l.Peek()
	if ok {
		l.pos++
	}
	return tok, ok
}

// ConsumeKind advances past the next token if it has the given kind,
// reporting whether it did.
func (l *List) ConsumeKind(k Kind) bool {
	tok, ok := l.Peek()
	if !ok || tok.Kind != k {
		return false
	}
	l.pos++
	return true
}

// ConsumeOp advances past the next token if it is an Operation token
// carrying op, reporting whether it did.
func (l *List) ConsumeOp(op Op) bool {
	tok, ok := l.Peek()
	if !ok || tok.Kind != Operation || tok.Op != op {
		return false
	}
	l.pos++
	return true
}

// TailPos returns the position of the last token in the list
// (consumed or not), or fallback if the list holds no tokens.
func (l *List) TailPos(fallback int) int {
	if len(l.tokens) == 0 {
		return fallback
	}
	return l.tokens[len(l.tokens)-1].Pos
}
