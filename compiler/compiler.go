// Package compiler wires the pipeline's phases together.
//
// In brief we go through a three-step process:
//
//  1. Lex the whole source into one token list per function.
//
//  2. Parse each token list into a syntax tree.
//
//  3. Walk each tree, generating assembly for it.
//
// The three phases each report fatal errors by panicking with a
// *source.CompileError (via source.Panic); Compile is the single
// place that recovers one and turns it back into a returned error,
// so callers never see the panic.
package compiler

import (
	"github.com/birchlang/mcc/ast"
	"github.com/birchlang/mcc/codegen"
	"github.com/birchlang/mcc/lexer"
	"github.com/birchlang/mcc/parser"
	"github.com/birchlang/mcc/source"
)

// Compiler holds our object-state.
type Compiler struct {
	// debug holds a flag to decide if debugging "stuff" is generated
	// in the output assembly.
	debug bool

	// program holds the source text we're compiling.
	program string
}

// New creates a new compiler, given the program text in the constructor.
func New(input string) *Compiler {
	return &Compiler{program: input}
}

// SetDebug changes the debug-flag for our output.
func (c *Compiler) SetDebug(val bool) {
	c.debug = val
}

// Compile converts the input program into a string of AMD64 assembly
// language, or returns the first fatal error encountered.
func (c *Compiler) Compile() (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*source.CompileError)
			if !ok {
				panic(r)
			}
			err = ce
		}
	}()

	ctx := source.New(c.program)

	lists := lexer.New(ctx, source.Panic).Tokenize()

	// A source file with no top-level definitions is accepted: it
	// compiles to header-only output rather than erroring.
	fns := make([]*ast.Function, 0, len(lists))
	for _, l := range lists {
		fns = append(fns, parser.New(l, ctx, source.Panic).ParseFunction())
	}

	gen := codegen.New(ctx, source.Panic)
	gen.SetDebug(c.debug)

	return gen.Generate(fns), nil
}
