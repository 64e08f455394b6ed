package tap

import (
	"fmt"
	"runtime"
)

// Location is the source position of an assertion.
type Location struct {
	File string
	Line int
}

// Caller returns the location skip frames above the function calling
// Caller. Caller(0) is the line that called Caller.
func Caller(skip int) Location {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Location{}
	}
	return Location{File: file, Line: line}
}

// IsZero reports whether l carries no position.
func (l Location) IsZero() bool {
	return l.File == "" && l.Line == 0
}

func (l Location) String() string {
	if l.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s line %d", l.File, l.Line)
}
