package stream

import (
	"strings"

	"github.com/fatih/color"
)

// colorStream colours complete TAP lines before passing them on. Partial
// lines are held until their line break arrives or Flush is called.
type colorStream struct {
	next    Stream
	pending strings.Builder
	pass    *color.Color
	fail    *color.Color
	comment *color.Color
	bail    *color.Color
}

// Colorize wraps next so that ok lines print green, not ok lines red,
// comments yellow and Bail out! in bold red. Colour follows color.NoColor.
func Colorize(next Stream) Stream {
	return &colorStream{
		next:    next,
		pass:    color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		comment: color.New(color.FgYellow),
		bail:    color.New(color.FgRed, color.Bold),
	}
}

func (c *colorStream) WriteString(s string) (int, error) {
	c.pending.WriteString(s)
	buffered := c.pending.String()
	idx := strings.LastIndexByte(buffered, '\n')
	if idx < 0 {
		return len(s), nil
	}

	complete, rest := buffered[:idx+1], buffered[idx+1:]
	c.pending.Reset()
	c.pending.WriteString(rest)

	var out strings.Builder
	for _, line := range strings.SplitAfter(complete, "\n") {
		if line == "" {
			continue
		}
		out.WriteString(c.paint(strings.TrimSuffix(line, "\n")))
		out.WriteByte('\n')
	}
	if _, err := c.next.WriteString(out.String()); err != nil {
		return 0, err
	}
	return len(s), nil
}

func (c *colorStream) paint(line string) string {
	switch {
	case strings.HasPrefix(line, "not ok"):
		return c.fail.Sprint(line)
	case strings.HasPrefix(line, "ok"):
		return c.pass.Sprint(line)
	case strings.HasPrefix(line, "Bail out!"):
		return c.bail.Sprint(line)
	case strings.HasPrefix(line, "#"):
		return c.comment.Sprint(line)
	}
	return line
}

func (c *colorStream) Flush() error {
	if c.pending.Len() > 0 {
		rest := c.pending.String()
		c.pending.Reset()
		if _, err := c.next.WriteString(c.paint(rest)); err != nil {
			return err
		}
	}
	return c.next.Flush()
}
