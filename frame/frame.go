// Package frame describes the per-function stack frame: a function's
// name, its argument count, and its local stack size in bytes (8
// times the number of named locals, parameters included). Codegen
// builds a Descriptor from each ast.Function it walks; the parser uses
// only MaxArgs from this package.
package frame

// MaxArgs is the System V integer-argument-register cap: at most six
// arguments, in both definitions and calls.
const MaxArgs = 6

// ArgRegisters lists the six System V AMD64 integer argument
// registers in calling-convention order.
var ArgRegisters = [MaxArgs]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// Descriptor is one function's frame shape.
type Descriptor struct {
	Name           string
	ArgsCount      int
	LocalStackSize int
}

// AlignedLocalSize rounds LocalStackSize up to the next multiple of
// 16, the prologue's stack-alignment rule. It is sufficient only
// because the language has no variadic calls.
func (d Descriptor) AlignedLocalSize() int {
	if d.LocalStackSize <= 0 {
		return 0
	}
	return (d.LocalStackSize + 15) &^ 15
}

// Offset returns the frame-relative byte offset for the i'th
// parameter (1-based, matching the lexer's interning order).
func Offset(i int) int {
	return i * 8
}
