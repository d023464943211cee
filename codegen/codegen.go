// Package codegen walks a syntax tree and emits Intel-syntax x86-64
// assembly implementing a stack-machine evaluation model: every
// expression leaves its value on the hardware stack via push,
// consumed by the next operator or statement.
package codegen

import (
	"fmt"
	"strings"

	"github.com/birchlang/mcc/ast"
	"github.com/birchlang/mcc/frame"
	"github.com/birchlang/mcc/source"
	"github.com/birchlang/mcc/token"
)

// Generator holds the output buffer, the three monotonic label
// counters (end/else/begin), and the frame of the function currently
// being walked.
type Generator struct {
	ctx      *source.Context
	reporter source.Reporter
	out      strings.Builder

	endCount, elseCount, beginCount int

	frame frame.Descriptor
	debug bool
}

// New creates a Generator. reporter receives the two structural errors
// raised during code generation (assignment to a non-lvalue, and '&'
// applied to a non-variable) as well as internal errors for node kinds
// or operations the generator does not handle.
func New(ctx *source.Context, reporter source.Reporter) *Generator {
	return &Generator{ctx: ctx, reporter: reporter}
}

// SetDebug makes the prologue of every function emit an int3 trap,
// for use under a debugger.
func (g *Generator) SetDebug(val bool) {
	g.debug = val
}

// Generate emits the fixed header followed by one function block per
// top-level definition, in source order.
func (g *Generator) Generate(fns []*ast.Function) string {
	g.out.WriteString(".intel_syntax noprefix\n")
	g.out.WriteString(".globl main\n")

	for _, fn := range fns {
		g.out.WriteString("\n")
		g.genFunction(fn)
	}

	return g.out.String()
}

func (g *Generator) genFunction(fn *ast.Function) {
	g.frame = frame.Descriptor{Name: fn.Name, ArgsCount: fn.ArgsCount, LocalStackSize: fn.LocalStackSize}

	g.out.WriteString(fn.Name + ":\n")
	g.line("push rbp")
	g.line("mov rbp, rsp")

	for i := 1; i <= fn.ArgsCount; i++ {
		g.line("mov [rbp-%d], %s", frame.Offset(i), frame.ArgRegisters[i-1])
	}

	if size := g.frame.AlignedLocalSize(); size > 0 {
		g.line("sub rsp, %d", size)
	}

	if g.debug {
		g.line("int3")
	}

	g.genBlock(fn.Body)

	g.epilogue()
}

// epilogue is unconditionally appended after a function's body. When
// the body already ends in an explicit return, this copy is dead
// code; a body that falls off the end without returning relies on it.
func (g *Generator) epilogue() {
	g.line("pop rax")
	g.line("mov rsp, rbp")
	g.line("pop rbp")
	g.line("ret")
}

// genBlock walks a compound statement: every statement but the last
// is followed by a discarding pop, so the compound as a whole leaves
// exactly one value on the stack.
func (g *Generator) genBlock(b *ast.Block) {
	if len(b.Stmts) == 0 {
		// an empty block has no statement to leave a value; push a
		// placeholder so it nets one value like any other statement
		g.line("push 0")
		return
	}
	for i, stmt := range b.Stmts {
		g.genStmt(stmt)
		if i != len(b.Stmts)-1 {
			g.line("pop rax")
		}
	}
}

func (g *Generator) genStmt(n ast.Node) {
	switch v := n.(type) {
	case *ast.Return:
		g.genExpr(v.Value)
		g.line("pop rax")
		g.line("mov rsp, rbp")
		g.line("pop rbp")
		g.line("ret")

	case *ast.If:
		end := g.nextEnd()
		elseLabel := g.nextElse()
		g.genExpr(v.Cond)
		g.line("pop rax")
		g.line("cmp rax, 0")
		g.line("je .Lelse%d", elseLabel)
		g.genStmt(v.Then)
		g.line("jmp .Lend%d", end)
		g.label(".Lelse%d", elseLabel)
		// no else branch: push a placeholder so the false path nets
		// the same stack depth as the true path, matching genBlock's
		// discard rule
		g.line("push 0")
		g.label(".Lend%d", end)

	case *ast.IfElse:
		end := g.nextEnd()
		elseLabel := g.nextElse()
		g.genExpr(v.Cond)
		g.line("pop rax")
		g.line("cmp rax, 0")
		g.line("je .Lelse%d", elseLabel)
		g.genStmt(v.Then)
		g.line("jmp .Lend%d", end)
		g.label(".Lelse%d", elseLabel)
		g.genStmt(v.Else)
		g.label(".Lend%d", end)

	case *ast.While:
		begin := g.nextBegin()
		end := g.nextEnd()
		g.label(".Lbegin%d", begin)
		g.genExpr(v.Cond)
		g.line("pop rax")
		g.line("cmp rax, 0")
		g.line("je .Lend%d", end)
		g.genStmt(v.Body)
		g.line("pop rax") // body's value is unused; discard every iteration
		g.line("jmp .Lbegin%d", begin)
		g.label(".Lend%d", end)
		// the loop itself nets zero; push a placeholder so it leaves
		// one value like every other statement, matching genBlock's
		// discard rule
		g.line("push 0")

	case *ast.For:
		begin := g.nextBegin()
		end := g.nextEnd()

		if v.Init != nil {
			g.genExpr(v.Init)
			g.line("pop rax") // init's value is unused; discard it once, not every iteration
		}
		g.label(".Lbegin%d", begin)
		if v.Cond != nil {
			g.genExpr(v.Cond)
			g.line("pop rax")
			g.line("cmp rax, 0")
			g.line("je .Lend%d", end)
		}
		g.genStmt(v.Body)
		g.line("pop rax") // body's value is unused; discard every iteration
		if v.Update != nil {
			g.genExpr(v.Update)
			g.line("pop rax") // must discard every pass, or the stack grows per iteration
		}
		g.line("jmp .Lbegin%d", begin)
		g.label(".Lend%d", end)
		g.line("push 0") // placeholder value for the loop statement, as for while

	case *ast.Block:
		g.genBlock(v)

	case *ast.ExprStmt:
		g.genExpr(v.Expr)

	default:
		g.errorf("internal error: unhandled statement node", n.Pos())
	}
}

// genExpr is the rvalue emission table, extended with the
// lvalue-producing node kinds (LocalVar, Deref) whose rvalue form is
// "compute the address, then load through it".
func (g *Generator) genExpr(n ast.Node) {
	switch v := n.(type) {
	case *ast.NumberLit:
		g.line("push %d", v.Value)

	case *ast.VarDecl:
		// a bare "int x;" declaration has no value of its own; push a
		// placeholder that the discard rule eliminates unless this
		// declaration is the last statement in its block.
		g.line("push 0")

	case *ast.LocalVar:
		g.genLocalAddress(v)
		g.line("pop rax")
		g.line("mov rax, [rax]")
		g.line("push rax")

	case *ast.Deref:
		g.genExpr(v.Left)
		g.line("pop rax")
		g.line("mov rax, [rax]")
		g.line("push rax")

	case *ast.Ref:
		lv, ok := v.Left.(*ast.LocalVar)
		if !ok {
			g.errorf("'&' requires a variable operand", v.At)
			return
		}
		g.genLocalAddress(lv)

	case *ast.Assign:
		g.genLvalue(v.Left, v.At)
		g.genExpr(v.Right)
		g.line("pop rdi")
		g.line("pop rax")
		g.line("mov [rax], rdi")
		g.line("push rdi")

	case *ast.Binary:
		g.genExpr(v.Left)
		g.genExpr(v.Right)
		g.line("pop rdi")
		g.line("pop rax")
		g.genOp(v.Op)
		g.line("push rax")

	case *ast.Call:
		for _, arg := range v.Args {
			g.genExpr(arg)
		}
		for i := len(v.Args) - 1; i >= 0; i-- {
			g.line("pop %s", frame.ArgRegisters[i])
		}
		g.line("call %s", v.Name)
		g.line("push rax")

	default:
		g.errorf("internal error: unhandled expression node", n.Pos())
	}
}

// genLocalAddress emits a LocalVariable's address: frame base minus
// the variable's offset.
func (g *Generator) genLocalAddress(v *ast.LocalVar) {
	g.line("mov rax, rbp")
	g.line("sub rax, %d", v.Offset)
	g.line("push rax")
}

// genLvalue emits the address of an assignment target. errPos is the
// position of the '=' token, used for the non-lvalue diagnostic.
func (g *Generator) genLvalue(n ast.Node, errPos int) {
	switch v := n.(type) {
	case *ast.LocalVar:
		g.genLocalAddress(v)
	case *ast.Deref:
		g.genExpr(v.Left)
	default:
		g.errorf("assignment to a non-variable, non-dereference expression", errPos)
	}
}

// genOp implements the operation table. Gt/Ge never reach here: the
// parser normalizes them away before the tree is built.
func (g *Generator) genOp(op token.Op) {
	switch op {
	case token.Add:
		g.line("add rax, rdi")
	case token.Sub:
		g.line("sub rax, rdi")
	case token.Mul:
		g.line("imul rax, rdi")
	case token.Div:
		g.line("cqo")
		g.line("idiv rdi")
	case token.Eq:
		g.line("cmp rax, rdi")
		g.line("sete al")
		g.line("movzx rax, al")
	case token.Ne:
		g.line("cmp rax, rdi")
		g.line("setne al")
		g.line("movzx rax, al")
	case token.Lt:
		g.line("cmp rax, rdi")
		g.line("setl al")
		g.line("movzx rax, al")
	case token.Le:
		g.line("cmp rax, rdi")
		g.line("setle al")
		g.line("movzx rax, al")
	default:
		g.errorf(fmt.Sprintf("internal error: unhandled operation %s", op), 0)
	}
}

func (g *Generator) nextEnd() int {
	n := g.endCount
	g.endCount++
	return n
}

func (g *Generator) nextElse() int {
	n := g.elseCount
	g.elseCount++
	return n
}

func (g *Generator) nextBegin() int {
	n := g.beginCount
	g.beginCount++
	return n
}

func (g *Generator) line(format string, args ...any) {
	fmt.Fprintf(&g.out, "    "+format+"\n", args...)
}

func (g *Generator) label(format string, args ...any) {
	fmt.Fprintf(&g.out, format+":\n", args...)
}

func (g *Generator) errorf(message string, pos int) {
	g.reporter.Report(g.ctx, message, pos)
}
