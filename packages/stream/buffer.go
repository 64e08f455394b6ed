package stream

import "strings"

// Buffer is an in-memory Stream.
type Buffer struct {
	b       strings.Builder
	flushes int
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) WriteString(s string) (int, error) {
	return b.b.WriteString(s)
}

func (b *Buffer) Flush() error {
	b.flushes++
	return nil
}

// String returns everything written so far.
func (b *Buffer) String() string {
	return b.b.String()
}

// Lines returns the written text split into lines, without the final
// line break.
func (b *Buffer) Lines() []string {
	s := strings.TrimSuffix(b.b.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Flushes reports how many times Flush was called.
func (b *Buffer) Flushes() int {
	return b.flushes
}

// Reset discards the contents.
func (b *Buffer) Reset() {
	b.b.Reset()
	b.flushes = 0
}
