// Package source owns the original program text and answers the
// position queries the rest of the compiler needs to produce
// caret-highlighted diagnostics.
package source

import "strings"

// Context is an immutable view of the program text, indexed by rune
// position. It is created once per compilation and handed to the
// lexer, parser and code generator instead of relying on process-wide
// state.
type Context struct {
	text  string
	runes []rune
}

// New builds a Context from raw program text. A trailing newline is
// appended if missing, so that Locate never has to special-case a
// final line with no terminator.
func New(text string) *Context {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return &Context{text: text, runes: []rune(text)}
}

// Text returns the full, newline-normalized source text.
func (c *Context) Text() string {
	return c.text
}

// TailPosition returns the index of the last character in the source,
// used to anchor diagnostics for errors discovered at end-of-input.
func (c *Context) TailPosition() int {
	if len(c.runes) == 0 {
		return 0
	}
	return len(c.runes) - 1
}

// Len returns the number of runes in the source text.
func (c *Context) Len() int {
	return len(c.runes)
}

// At returns the rune at pos, or 0 if pos is out of range.
func (c *Context) At(pos int) rune {
	if pos < 0 || pos >= len(c.runes) {
		return 0
	}
	return c.runes[pos]
}

// Locate maps a rune position to the text of its containing line, the
// 1-based line number, and the 0-based column within that line.
func (c *Context) Locate(pos int) (line string, lineNumber, column int) {
	if pos < 0 {
		pos = 0
	}
	if pos > c.TailPosition() {
		pos = c.TailPosition()
	}

	lineNumber = 1
	lineStart := 0
	for i := 0; i < pos; i++ {
		if c.runes[i] == '\n' {
			lineNumber++
			lineStart = i + 1
		}
	}

	lineEnd := lineStart
	for lineEnd < len(c.runes) && c.runes[lineEnd] != '\n' {
		lineEnd++
	}

	line = string(c.runes[lineStart:lineEnd])
	column = pos - lineStart
	return line, lineNumber, column
}
