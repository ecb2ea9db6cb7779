package asm

import (
    "fmt"
)

/* an assembly error at a position in the source. line and column are 1 based,
 * a column of 0 means the whole line.
 */
type Error struct {
    Line int
    Column int
    Message string
}

func (err *Error) Error() string {
    if err.Column == 0 {
        return fmt.Sprintf("line %v: %v", err.Line, err.Message)
    }
    return fmt.Sprintf("line %v, column %v: %v", err.Line, err.Column, err.Message)
}

func errorAt(line int, column int, format string, args ...any) *Error {
    return &Error{Line: line, Column: column, Message: fmt.Sprintf(format, args...)}
}
