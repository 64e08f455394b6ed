package output

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/arduinotap/packages/harness"
	"github.com/abdul-hamid-achik/arduinotap/packages/stream"
	"github.com/abdul-hamid-achik/arduinotap/packages/tap"
	"gopkg.in/yaml.v3"
)

// TAPFormatter re-emits a parsed run as normalized TAP 13: a leading
// version line and plan, sequential numbers, canonical directives, and
// failure detail as comments plus a YAML block.
type TAPFormatter struct {
	writer  io.Writer
	summary *harness.Summary
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) FormatSummary(s *harness.Summary) {
	f.summary = s
}

func (f *TAPFormatter) FormatError(err error) {
	// Errors are reported through the exit code
}

func (f *TAPFormatter) FormatHeader(version string) {
	// Header is written in Flush
}

// Flush writes the accumulated TAP output
func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	s := f.summary
	if s == nil {
		return nil
	}

	out := stream.NewWriter(f.writer)
	r := tap.New(
		tap.WithOutput(out),
		tap.WithFailureOutput(stream.NewWriter(io.Discard)),
		tap.WithTodoOutput(stream.NewWriter(io.Discard)),
		tap.WithVersionHeader(true),
	)

	if s.SkipAll {
		r.SkipAll(s.SkipAllReason)
		return r.Err()
	}
	if s.Planned >= 0 {
		r.Plan(s.Planned)
	}

	for _, res := range s.Results {
		switch res.Directive {
		case harness.TodoSkip:
			r.TodoSkip(res.Reason)
			continue
		case harness.Todo:
			r.Todo(res.Reason, 1)
		case harness.Skip:
			r.SkipNext(res.Reason, 1)
		}
		r.OkAt(res.OK, tap.Location{}, res.Description)

		// Only comments and YAML from the source stream are re-emitted, so a
		// normalized stream normalizes to itself.
		if !res.OK {
			for _, d := range res.Diagnostics {
				r.Diag(d)
			}
			if err := writeYAMLBlock(out, res.YAML); err != nil {
				return err
			}
		}
	}

	if s.Bailed {
		r.BailOut(s.BailReason)
	}
	return r.Err()
}

func writeYAMLBlock(out stream.Stream, doc map[string]any) error {
	if len(doc) == 0 {
		return nil
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("  ---\n")
	for _, line := range strings.Split(strings.TrimSuffix(string(data), "\n"), "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("  ...\n")
	_, err = out.WriteString(b.String())
	return err
}
