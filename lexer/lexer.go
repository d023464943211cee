// Package lexer implements a stateful tokenizer: it walks the source
// rune-by-rune, recognizes tokens, skips whitespace and comments,
// interns local-variable identifiers per function, and emits one
// token.List per top-level function definition.
package lexer

import (
	"fmt"

	"github.com/birchlang/mcc/source"
	"github.com/birchlang/mcc/stack"
	"github.com/birchlang/mcc/token"
)

// phase tracks which of the three lexical states the lexer is
// currently in.
type phase int

const (
	phaseGlobal phase = iota
	phaseFunctionDefinition
	phaseLocal
)

var reserved = map[string]token.Kind{
	"return": token.Return,
	"if":     token.If,
	"else":   token.Else,
	"while":  token.While,
	"for":    token.For,
}

// Lexer holds the scanner's object-state: a rune-by-rune cursor over
// the source plus the phase, brace nesting, local interning, and
// per-function token accumulation needed to tokenize whole function
// definitions rather than one flat expression.
type Lexer struct {
	ctx      *source.Context
	reporter source.Reporter

	position     int
	readPosition int
	ch           rune
	characters   []rune

	state  phase
	braces *stack.Stack[int] // positions of currently-open '{'

	locals     map[string]int // name -> byte offset, current function
	localNames int            // count of distinct locals interned so far

	tokens []token.Token // tokens accumulated for the function in progress
	lists  []*token.List // completed per-function token lists
}

// New creates a Lexer over the given source context. reporter is the
// sink every lexical error is funneled through; pass source.Panic to
// get a value Tokenize's caller can recover, or source.PrintAndExit
// for a reporter that terminates the process directly.
func New(ctx *source.Context, reporter source.Reporter) *Lexer {
	l := &Lexer{
		ctx:        ctx,
		reporter:   reporter,
		characters: []rune(ctx.Text()),
		braces:     stack.New[int](),
		locals:     make(map[string]int),
	}
	l.readChar()
	return l
}

// Tokenize runs the lexer to completion, returning one token.List per
// top-level function definition. Lexical errors report through the
// configured Reporter; with source.Panic that means a panic carrying
// *source.CompileError, which callers recover at a single point (as
// compiler.Compile does).
func (l *Lexer) Tokenize() []*token.List {
	for {
		l.skipTrivia()
		if l.ch == 0 {
			break
		}

		switch l.state {
		case phaseGlobal:
			l.lexGlobalHeader()
		case phaseFunctionDefinition, phaseLocal:
			l.lexToken()
		}
	}

	if !l.braces.Empty() {
		l.errorf("function body is missing a closing brace", l.ctx.TailPosition())
	}

	return l.lists
}

// readChar advances the scan position by one rune.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.characters) {
		l.ch = rune(0)
	} else {
		l.ch = l.characters[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

// peekChar returns the rune after the current one, without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.characters) {
		return rune(0)
	}
	return l.characters[l.readPosition]
}

// skipTrivia consumes whitespace and comments.
func (l *Lexer) skipTrivia() {
	for {
		switch {
		case isWhitespace(l.ch):
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			start := l.position
			l.readChar()
			l.readChar()
			closed := false
			for l.ch != 0 {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					closed = true
					break
				}
				l.readChar()
			}
			if !closed {
				l.errorf("unterminated block comment", start)
			}
		default:
			return
		}
	}
}

// significantIndex scans forward from `from` over whitespace and
// comments without mutating scanner state, returning the index of
// the next significant rune (or len(characters) if none remains). It
// backs the lookahead needed to tell an identifier-as-call ("foo(")
// from an identifier-as-value, and to check an "int <name>"
// declaration's required terminator, without consuming input.
func (l *Lexer) significantIndex(from int) int {
	i := from
	for i < len(l.characters) {
		switch {
		case isWhitespace(l.characters[i]):
			i++
		case i+1 < len(l.characters) && l.characters[i] == '/' && l.characters[i+1] == '/':
			for i < len(l.characters) && l.characters[i] != '\n' {
				i++
			}
		case i+1 < len(l.characters) && l.characters[i] == '/' && l.characters[i+1] == '*':
			i += 2
			for i+1 < len(l.characters) && !(l.characters[i] == '*' && l.characters[i+1] == '/') {
				i++
			}
			i += 2
		default:
			return i
		}
	}
	return len(l.characters)
}

// lexGlobalHeader handles the Global state: only "int <identifier>"
// starting a function definition is legal.
func (l *Lexer) lexGlobalHeader() {
	start := l.position
	if !isLetter(l.ch) {
		l.errorf("expected a function definition starting with 'int'", start)
	}
	word := l.readIdentifier()
	if word != "int" {
		l.errorf("expected the keyword 'int' to begin a function definition", start)
	}

	l.skipTrivia()
	nameStart := l.position
	if !isLetter(l.ch) {
		l.errorf("expected a function name after 'int'", nameStart)
	}
	name := l.readIdentifier()
	if _, isReserved := reserved[name]; isReserved || name == "int" {
		l.errorf(fmt.Sprintf("%q is a reserved word and cannot name a function", name), nameStart)
	}

	l.locals = make(map[string]int)
	l.localNames = 0
	l.tokens = nil
	l.emit(token.Token{Kind: token.FunctionDefinition, Pos: start, Name: name})
	l.state = phaseFunctionDefinition
}

// lexToken recognizes one token while in the FunctionDefinition or
// Local state; the same disambiguation rules apply while reading the
// parameter list.
func (l *Lexer) lexToken() {
	pos := l.position

	switch {
	case l.ch == '(':
		l.readChar()
		l.emit(token.Token{Kind: token.LeftParen, Pos: pos})

	case l.ch == ')':
		l.readChar()
		l.emit(token.Token{Kind: token.RightParen, Pos: pos})
		if l.state == phaseFunctionDefinition {
			l.state = phaseLocal
		}

	case l.ch == '{':
		l.readChar()
		l.braces.Push(pos)
		l.emit(token.Token{Kind: token.LeftBrace, Pos: pos})

	case l.ch == '}':
		l.readChar()
		if _, err := l.braces.Pop(); err != nil {
			l.errorf("unmatched closing brace", pos)
		}
		l.emit(token.Token{Kind: token.RightBrace, Pos: pos})
		if l.braces.Empty() {
			l.finishFunction()
		}

	case l.ch == ',':
		l.readChar()
		l.emit(token.Token{Kind: token.Comma, Pos: pos})

	case l.ch == ';':
		l.readChar()
		l.emit(token.Token{Kind: token.Semicolon, Pos: pos})

	case l.ch == '&':
		l.readChar()
		l.emit(token.Token{Kind: token.Reference, Pos: pos})

	case l.ch == '+':
		l.readChar()
		l.emit(token.Token{Kind: token.Operation, Op: token.Add, Pos: pos})

	case l.ch == '-':
		l.readChar()
		l.emit(token.Token{Kind: token.Operation, Op: token.Sub, Pos: pos})

	case l.ch == '*':
		l.readChar()
		l.emit(token.Token{Kind: token.Operation, Op: token.Mul, Pos: pos})

	case l.ch == '/':
		// skipTrivia already consumed "//" and "/*...*/"; a bare '/'
		// here is always the division operator.
		l.readChar()
		l.emit(token.Token{Kind: token.Operation, Op: token.Div, Pos: pos})

	case l.ch == '=':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			l.emit(token.Token{Kind: token.Operation, Op: token.Eq, Pos: pos})
		} else {
			l.emit(token.Token{Kind: token.Assign, Pos: pos})
		}

	case l.ch == '!':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			l.emit(token.Token{Kind: token.Operation, Op: token.Ne, Pos: pos})
		} else {
			l.errorf("unsupported character '!'", pos)
		}

	case l.ch == '<':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			l.emit(token.Token{Kind: token.Operation, Op: token.Le, Pos: pos})
		} else {
			l.emit(token.Token{Kind: token.Operation, Op: token.Lt, Pos: pos})
		}

	case l.ch == '>':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			l.emit(token.Token{Kind: token.Operation, Op: token.Ge, Pos: pos})
		} else {
			l.emit(token.Token{Kind: token.Operation, Op: token.Gt, Pos: pos})
		}

	case isDigit(l.ch):
		l.lexNumber(pos)

	case isLetter(l.ch):
		l.lexIdentifier(pos)

	default:
		l.errorf(fmt.Sprintf("unsupported character %q", l.ch), pos)
	}
}

// lexNumber reads a decimal literal. A letter immediately following
// the digits with no operator or whitespace between is an error.
func (l *Lexer) lexNumber(pos int) {
	var value int32
	for isDigit(l.ch) {
		value = value*10 + int32(l.ch-'0')
		l.readChar()
	}
	if isLetter(l.ch) {
		l.errorf(fmt.Sprintf("malformed number literal near %q", l.ch), l.position)
	}
	l.emit(token.Token{Kind: token.Number, Number: value, Pos: pos})
}

// lexIdentifier reads an identifier and dispatches it to a reserved
// word, an "int" declaration, a function call, or a local-variable
// reference.
func (l *Lexer) lexIdentifier(pos int) {
	name := l.readIdentifier()

	if kind, ok := reserved[name]; ok {
		l.emit(token.Token{Kind: kind, Pos: pos})
		return
	}

	if name == "int" {
		l.lexLocalDefinition(pos)
		return
	}

	if idx := l.significantIndex(l.position); idx < len(l.characters) && l.characters[idx] == '(' {
		l.emit(token.Token{Kind: token.FunctionCall, Pos: pos, Name: name})
		return
	}

	offset, ok := l.locals[name]
	if !ok {
		l.errorf(fmt.Sprintf("use of undefined identifier %q", name), pos)
	}
	l.emit(token.Token{Kind: token.LocalVariable, Pos: pos, Offset: offset})
}

// lexLocalDefinition handles "int <name>" wherever it appears: as a
// function parameter (terminated by ',' or ')') or as a body-level
// declaration (terminated by ';'). Re-definition of an existing name
// is an error.
func (l *Lexer) lexLocalDefinition(declPos int) {
	l.skipTrivia()
	nameStart := l.position
	if !isLetter(l.ch) {
		l.errorf("expected a variable name after 'int'", nameStart)
	}
	name := l.readIdentifier()
	if _, isReserved := reserved[name]; isReserved || name == "int" {
		l.errorf(fmt.Sprintf("%q is a reserved word and cannot name a variable", name), nameStart)
	}
	if _, exists := l.locals[name]; exists {
		l.errorf(fmt.Sprintf("redefinition of local variable %q", name), nameStart)
	}

	idx := l.significantIndex(l.position)
	var next rune
	if idx < len(l.characters) {
		next = l.characters[idx]
	}
	switch l.state {
	case phaseFunctionDefinition:
		if next != ',' && next != ')' {
			l.errorf("expected ',' or ')' after parameter declaration", nameStart)
		}
	case phaseLocal:
		if next != ';' {
			l.errorf("expected ';' after local variable declaration", nameStart)
		}
	}

	l.localNames++
	offset := l.localNames * 8
	l.locals[name] = offset
	l.emit(token.Token{Kind: token.LocalVariableDefinition, Pos: declPos, Offset: offset})
}

// finishFunction closes out the token list for the function whose
// closing brace just balanced the brace-nesting counter back to zero.
func (l *Lexer) finishFunction() {
	l.lists = append(l.lists, token.NewList(l.tokens, l.localNames*8))
	l.tokens = nil
	l.locals = make(map[string]int)
	l.localNames = 0
	l.state = phaseGlobal
}

func (l *Lexer) emit(tok token.Token) {
	l.tokens = append(l.tokens, tok)
}

func (l *Lexer) errorf(message string, pos int) {
	l.reporter.Report(l.ctx, message, pos)
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return string(l.characters[start:l.position])
}

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
