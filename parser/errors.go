// Package parser implements the ZKIR two-pass assembler (spec.md §4.3):
// a line-directed lexer, label/symbol collection, and instruction encoding
// via package encoder.
package parser

import "fmt"

// Position locates a token in the source text.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// AssemblyError is the taxonomy entry from spec.md §7: every assembly
// failure carries a line number and a message. Assembly stops at the
// first one.
type AssemblyError struct {
	Pos     Position
	Message string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// NewAssemblyError builds an AssemblyError at line/col with a formatted message.
func NewAssemblyError(pos Position, format string, args ...any) *AssemblyError {
	return &AssemblyError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// DuplicateLabelError reports a label defined more than once.
type DuplicateLabelError struct {
	Name  string
	First Position
	Pos   Position
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("%s: label %q already defined at %s", e.Pos, e.Name, e.First)
}

// UndefinedLabelError reports a label reference pass 2 could not resolve.
type UndefinedLabelError struct {
	Name string
	Pos  Position
}

func (e *UndefinedLabelError) Error() string {
	return fmt.Sprintf("%s: undefined label %q", e.Pos, e.Name)
}
