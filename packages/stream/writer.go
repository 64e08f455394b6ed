package stream

import (
	"errors"
	"io"
	"os"
	"syscall"
)

// Writer adapts an io.Writer to a Stream. It is the host-side stand-in for
// a board's serial port.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Stdout returns a Stream over os.Stdout.
func Stdout() *Writer {
	return NewWriter(os.Stdout)
}

// Stderr returns a Stream over os.Stderr.
func Stderr() *Writer {
	return NewWriter(os.Stderr)
}

func (w *Writer) WriteString(s string) (int, error) {
	return io.WriteString(w.w, s)
}

// Flush flushes the wrapped writer when it buffers (Flush) or is a file
// (Sync). Terminals and pipes cannot be synced; that is not an error.
func (w *Writer) Flush() error {
	return flushWriter(w.w)
}

// Unwrap returns the wrapped writer.
func (w *Writer) Unwrap() io.Writer {
	return w.w
}

func flushWriter(w io.Writer) error {
	switch f := w.(type) {
	case interface{ Flush() error }:
		return f.Flush()
	case interface{ Sync() error }:
		err := f.Sync()
		if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTSUP) {
			return nil
		}
		return err
	}
	return nil
}
