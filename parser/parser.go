// Package parser implements a hand-written recursive-descent parser:
// one invocation per token list, producing one function's syntax tree
// rooted at a compound statement.
package parser

import (
	"fmt"

	"github.com/birchlang/mcc/ast"
	"github.com/birchlang/mcc/frame"
	"github.com/birchlang/mcc/source"
	"github.com/birchlang/mcc/token"
)

// Parser holds the cursor over one function's token list plus the
// shared source context and error reporter.
type Parser struct {
	tokens   *token.List
	ctx      *source.Context
	reporter source.Reporter
}

// New creates a Parser over one function's tokens.
func New(tokens *token.List, ctx *source.Context, reporter source.Reporter) *Parser {
	return &Parser{tokens: tokens, ctx: ctx, reporter: reporter}
}

// ParseFunction consumes the entire token list and returns the
// function it describes. The token list must be empty afterwards;
// leftover tokens are a bug.
func (p *Parser) ParseFunction() *ast.Function {
	fnTok, argsCount := p.parseHeader()
	body := p.parseBlock()

	if !p.tokens.Empty() {
		p.errorf("unexpected tokens after function body", p.tokens.TailPos(p.ctx.TailPosition()))
	}

	return &ast.Function{
		Name:           fnTok.Name,
		ArgsCount:      argsCount,
		LocalStackSize: p.tokens.LocalStackSize,
		Body:           body,
		At:             fnTok.Pos,
	}
}

// parseHeader consumes the FunctionDefinition token, the parameter
// list, and records the argument count -- capped at frame.MaxArgs,
// the same limit enforced again at call sites.
func (p *Parser) parseHeader() (token.Token, int) {
	fnTok := p.expect(token.FunctionDefinition, "expected a function definition")
	p.expect(token.LeftParen, "expected '(' to begin a parameter list")

	argsCount := 0
	if tok, ok := p.tokens.Peek(); ok && tok.Kind != token.RightParen {
		for {
			p.expect(token.LocalVariableDefinition, "expected a parameter declaration")
			argsCount++
			if argsCount > frame.MaxArgs {
				p.errorf(fmt.Sprintf("too many parameters in definition of %q (max %d)", fnTok.Name, frame.MaxArgs), fnTok.Pos)
			}
			if p.tokens.ConsumeKind(token.Comma) {
				continue
			}
			break
		}
	}
	p.expect(token.RightParen, "expected ')' to end a parameter list")

	return fnTok, argsCount
}

// parseBlock parses "{" stmt* "}".
func (p *Parser) parseBlock() *ast.Block {
	open := p.expect(token.LeftBrace, "expected '{' to begin a block")

	var stmts []ast.Node
	for {
		if p.tokens.ConsumeKind(token.RightBrace) {
			break
		}
		if p.tokens.Empty() {
			p.errorf("expected '}' to close a block", p.ctx.TailPosition())
		}
		stmts = append(stmts, p.parseStmt())
	}

	return &ast.Block{Stmts: stmts, At: open.Pos}
}

// parseStmt parses a single statement.
func (p *Parser) parseStmt() ast.Node {
	if tok, ok := p.tokens.Peek(); ok {
		switch tok.Kind {
		case token.Return:
			p.tokens.Advance()
			value := p.parseExpr()
			p.expect(token.Semicolon, "expected ';' after a return statement")
			return &ast.Return{Value: value, At: tok.Pos}

		case token.If:
			p.tokens.Advance()
			p.expect(token.LeftParen, "expected '(' after 'if'")
			cond := p.parseExpr()
			p.expect(token.RightParen, "expected ')' after an if condition")
			then := p.parseStmt()
			if p.tokens.ConsumeKind(token.Else) {
				elseBranch := p.parseStmt()
				return &ast.IfElse{Cond: cond, Then: then, Else: elseBranch, At: tok.Pos}
			}
			return &ast.If{Cond: cond, Then: then, At: tok.Pos}

		case token.While:
			p.tokens.Advance()
			p.expect(token.LeftParen, "expected '(' after 'while'")
			cond := p.parseExpr()
			p.expect(token.RightParen, "expected ')' after a while condition")
			body := p.parseStmt()
			return &ast.While{Cond: cond, Body: body, At: tok.Pos}

		case token.For:
			p.tokens.Advance()
			p.expect(token.LeftParen, "expected '(' after 'for'")

			var init, cond, update ast.Node
			if t, ok := p.tokens.Peek(); !ok || t.Kind != token.Semicolon {
				init = p.parseExpr()
			}
			p.expect(token.Semicolon, "expected ';' after a for-loop initializer")

			if t, ok := p.tokens.Peek(); !ok || t.Kind != token.Semicolon {
				cond = p.parseExpr()
			}
			p.expect(token.Semicolon, "expected ';' after a for-loop condition")

			if t, ok := p.tokens.Peek(); !ok || t.Kind != token.RightParen {
				update = p.parseExpr()
			}
			p.expect(token.RightParen, "expected ')' to end a for-loop header")

			body := p.parseStmt()
			return &ast.For{Init: init, Cond: cond, Update: update, Body: body, At: tok.Pos}

		case token.LeftBrace:
			return p.parseBlock()
		}
	}

	expr := p.parseExpr()
	p.expect(token.Semicolon, "expected ';' after an expression statement")
	return &ast.ExprStmt{Expr: expr, At: expr.Pos()}
}

func (p *Parser) parseExpr() ast.Node {
	return p.parseAssign()
}

// parseAssign implements right-associative assignment via direct
// recursion on itself.
func (p *Parser) parseAssign() ast.Node {
	left := p.parseEquality()

	if tok, ok := p.tokens.Peek(); ok && tok.Kind == token.Assign {
		p.tokens.Advance()
		right := p.parseAssign()
		return &ast.Assign{Left: left, Right: right, At: tok.Pos}
	}
	return left
}

func (p *Parser) parseEquality() ast.Node {
	left := p.parseRelational()
	for {
		tok, ok := p.tokens.Peek()
		if !ok || tok.Kind != token.Operation || (tok.Op != token.Eq && tok.Op != token.Ne) {
			return left
		}
		p.tokens.Advance()
		right := p.parseRelational()
		left = &ast.Binary{Op: tok.Op, Left: left, Right: right, At: tok.Pos}
	}
}

// parseRelational normalizes ">" and ">=" into "<" and "<=" with
// swapped operands, so no Gt/Ge ever reaches the tree.
func (p *Parser) parseRelational() ast.Node {
	left := p.parseAdd()
	for {
		tok, ok := p.tokens.Peek()
		if !ok || tok.Kind != token.Operation {
			return left
		}
		switch tok.Op {
		case token.Lt, token.Le:
			p.tokens.Advance()
			right := p.parseAdd()
			left = &ast.Binary{Op: tok.Op, Left: left, Right: right, At: tok.Pos}
		case token.Gt:
			p.tokens.Advance()
			right := p.parseAdd()
			left = &ast.Binary{Op: token.Lt, Left: right, Right: left, At: tok.Pos}
		case token.Ge:
			p.tokens.Advance()
			right := p.parseAdd()
			left = &ast.Binary{Op: token.Le, Left: right, Right: left, At: tok.Pos}
		default:
			return left
		}
	}
}

func (p *Parser) parseAdd() ast.Node {
	left := p.parseMul()
	for {
		tok, ok := p.tokens.Peek()
		if !ok || tok.Kind != token.Operation || (tok.Op != token.Add && tok.Op != token.Sub) {
			return left
		}
		p.tokens.Advance()
		right := p.parseMul()
		left = &ast.Binary{Op: tok.Op, Left: left, Right: right, At: tok.Pos}
	}
}

func (p *Parser) parseMul() ast.Node {
	left := p.parseUnary()
	for {
		tok, ok := p.tokens.Peek()
		if !ok || tok.Kind != token.Operation || (tok.Op != token.Mul && tok.Op != token.Div) {
			return left
		}
		p.tokens.Advance()
		right := p.parseUnary()
		left = &ast.Binary{Op: tok.Op, Left: left, Right: right, At: tok.Pos}
	}
}

// parseUnary parses a unary prefix operator. Unary minus lowers to
// Sub(0, primary) here, at parse time, rather than being a distinct
// node kind.
func (p *Parser) parseUnary() ast.Node {
	tok, ok := p.tokens.Peek()
	if !ok {
		p.errorf("expected an expression", p.ctx.TailPosition())
	}

	switch {
	case tok.Kind == token.Operation && tok.Op == token.Add:
		p.tokens.Advance()
		return p.parsePrimary()

	case tok.Kind == token.Operation && tok.Op == token.Sub:
		p.tokens.Advance()
		operand := p.parsePrimary()
		return &ast.Binary{
			Op:    token.Sub,
			Left:  &ast.NumberLit{Value: 0, At: tok.Pos},
			Right: operand,
			At:    tok.Pos,
		}

	case tok.Kind == token.Operation && tok.Op == token.Mul:
		p.tokens.Advance()
		return &ast.Deref{Left: p.parseUnary(), At: tok.Pos}

	case tok.Kind == token.Reference:
		p.tokens.Advance()
		return &ast.Ref{Left: p.parseUnary(), At: tok.Pos}

	default:
		return p.parsePrimary()
	}
}

// parsePrimary parses the innermost grammar production, including the
// at-most-six-argument call cap shared with the header pre-pass.
func (p *Parser) parsePrimary() ast.Node {
	tok, ok := p.tokens.Peek()
	if !ok {
		p.errorf("expected an expression", p.ctx.TailPosition())
	}

	switch tok.Kind {
	case token.Number:
		p.tokens.Advance()
		return &ast.NumberLit{Value: tok.Number, At: tok.Pos}

	case token.LocalVariable:
		p.tokens.Advance()
		return &ast.LocalVar{Offset: tok.Offset, At: tok.Pos}

	case token.LocalVariableDefinition:
		p.tokens.Advance()
		return &ast.VarDecl{Offset: tok.Offset, At: tok.Pos}

	case token.FunctionCall:
		p.tokens.Advance()
		p.expect(token.LeftParen, "expected '(' to begin a call's argument list")

		var args []ast.Node
		if t, ok := p.tokens.Peek(); !ok || t.Kind != token.RightParen {
			args = append(args, p.parseExpr())
			for p.tokens.ConsumeKind(token.Comma) {
				args = append(args, p.parseExpr())
			}
		}
		p.expect(token.RightParen, "expected ')' to end a call's argument list")

		if len(args) > frame.MaxArgs {
			p.errorf(fmt.Sprintf("too many arguments in call to %q (max %d)", tok.Name, frame.MaxArgs), tok.Pos)
		}
		return &ast.Call{Name: tok.Name, Args: args, At: tok.Pos}

	case token.LeftParen:
		p.tokens.Advance()
		inner := p.parseExpr()
		p.expect(token.RightParen, "parenthesis is not closed")
		return inner

	default:
		p.errorf("expected an expression", tok.Pos)
		panic("unreachable")
	}
}

// expect consumes the next token if it has the given kind, reporting
// a fatal error positioned at the head of the remaining stream (or at
// end-of-input) otherwise.
func (p *Parser) expect(kind token.Kind, message string) token.Token {
	tok, ok := p.tokens.Peek()
	if !ok {
		p.errorf(message, p.ctx.TailPosition())
	}
	if tok.Kind != kind {
		p.errorf(message, tok.Pos)
	}
	p.tokens.Advance()
	return tok
}

func (p *Parser) errorf(message string, pos int) {
	p.reporter.Report(p.ctx, message, pos)
}
