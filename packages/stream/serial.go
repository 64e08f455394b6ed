package stream

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// TxBufferSize is the transmit buffer of an AVR hardware serial port. The
// emulated line never accepts more than this many bytes at once.
const TxBufferSize = 64

// Serial emulates a UART on the host. Writes are paced to what the line
// can carry at the configured baud rate with 8N1 framing (ten bits on the
// wire per byte).
type Serial struct {
	ctx     context.Context
	w       io.Writer
	baud    int
	limiter *rate.Limiter
}

// NewSerial returns a Serial writing to w at baud. A baud of zero or less
// disables pacing. Cancelling ctx aborts a write that is waiting for the
// line.
func NewSerial(ctx context.Context, w io.Writer, baud int) *Serial {
	s := &Serial{ctx: ctx, w: w, baud: baud}
	if baud > 0 {
		bytesPerSecond := float64(baud) / 10
		s.limiter = rate.NewLimiter(rate.Limit(bytesPerSecond), TxBufferSize)
	}
	return s
}

// Baud returns the configured baud rate.
func (s *Serial) Baud() int {
	return s.baud
}

func (s *Serial) WriteString(str string) (int, error) {
	if s.limiter == nil {
		return io.WriteString(s.w, str)
	}

	written := 0
	for written < len(str) {
		end := written + TxBufferSize
		if end > len(str) {
			end = len(str)
		}
		chunk := str[written:end]
		if err := s.limiter.WaitN(s.ctx, len(chunk)); err != nil {
			return written, err
		}
		n, err := io.WriteString(s.w, chunk)
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func (s *Serial) Flush() error {
	return flushWriter(s.w)
}
