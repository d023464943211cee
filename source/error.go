package source

import (
	"fmt"
	"os"
)

// CompileError is a positioned, user-facing compile failure. It
// implements error so callers that only care about "did this fail"
// can treat it like any other Go error, while the CLI can still pull
// out Message/Pos to render the caret diagnostic.
type CompileError struct {
	Message string
	Pos     int
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s (at position %d)", e.Message, e.Pos)
}

// Reporter is the single pluggable sink for fatal compiler errors.
// The default behavior always terminates the process, but it is an
// injected dependency, so the compiler itself stays testable without
// subprocess ceremony. Report must not return.
type Reporter interface {
	Report(ctx *Context, message string, pos int) error
}

// panicReporter is the Reporter implementation used internally by the
// lexer/parser/codegen: it never lets a caller observe control flow
// continuing past a fatal error, by panicking with a *CompileError.
// compiler.Compile recovers exactly that type at its single recovery
// point and turns it back into a normal Go error.
type panicReporter struct{}

// Panic is the shared internal Reporter used by every phase of the
// pipeline. Errors are reported by panicking with *CompileError; the
// top-level driver recovers it.
var Panic Reporter = panicReporter{}

func (panicReporter) Report(ctx *Context, message string, pos int) error {
	panic(&CompileError{Message: message, Pos: pos})
}

// terminatingReporter renders the same two-line caret diagnostic as
// Render, writes it to stdout, and exits the process with a nonzero
// status. The compiler package never uses it, and cmd/mcc does not
// either: the CLI renders a returned *CompileError with Render and
// exits itself.
type terminatingReporter struct{}

// PrintAndExit is the process-terminating Reporter.
var PrintAndExit Reporter = terminatingReporter{}

func (terminatingReporter) Report(ctx *Context, message string, pos int) error {
	fmt.Fprint(os.Stdout, Render(ctx, message, pos))
	os.Exit(1)
	panic("unreachable")
}

// Render formats the two-line caret diagnostic: "line<N>: <source
// line>" followed by a caret aligned under the offending column and
// the message. Padding is the length of the "line<N>: " prefix plus
// the column.
func Render(ctx *Context, message string, pos int) string {
	line, lineNumber, column := ctx.Locate(pos)
	prefix := fmt.Sprintf("line%d: ", lineNumber)
	pad := make([]byte, len(prefix)+column)
	for i := range pad {
		pad[i] = ' '
	}
	return fmt.Sprintf("%s%s\n%s^%s\n", prefix, line, pad, message)
}

// InvalidToken reports at the position of the given token if one is
// supplied, or at the end of the source otherwise.
func InvalidToken(r Reporter, ctx *Context, message string, pos int, hasToken bool) error {
	if !hasToken {
		pos = ctx.TailPosition()
	}
	return r.Report(ctx, message, pos)
}
