package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/arduinotap/packages/harness"
)

// Formatter interface for all output formatters
type Formatter interface {
	FormatSummary(summary *harness.Summary)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// Options shared by every formatter constructed through New.
type Options struct {
	Writer  io.Writer
	Verbose bool
	NoColor bool
	Strict  bool   // json: judge "passing" strictly
	Name    string // junit: suite name

	FailTodoPass bool // json: a TODO test that passed fails "passing"
}

// New returns the formatter for a format name.
func New(format string, opts Options) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "console":
		consoleOpts := []ConsoleOption{WithVerbose(opts.Verbose), WithNoColor(opts.NoColor)}
		if opts.Writer != nil {
			consoleOpts = append(consoleOpts, WithWriter(opts.Writer))
		}
		return NewConsoleFormatter(consoleOpts...), nil
	case "json":
		jsonOpts := []JSONOption{JSONWithStrict(opts.Strict), JSONWithFailTodoPass(opts.FailTodoPass)}
		if opts.Writer != nil {
			jsonOpts = append(jsonOpts, JSONWithWriter(opts.Writer))
		}
		return NewJSONFormatter(jsonOpts...), nil
	case "junit":
		var junitOpts []JUnitOption
		if opts.Name != "" {
			junitOpts = append(junitOpts, JUnitWithSuiteName(opts.Name))
		}
		if opts.Writer != nil {
			junitOpts = append(junitOpts, JUnitWithWriter(opts.Writer))
		}
		return NewJUnitFormatter(junitOpts...), nil
	case "tap":
		var tapOpts []TAPOption
		if opts.Writer != nil {
			tapOpts = append(tapOpts, TAPWithWriter(opts.Writer))
		}
		return NewTAPFormatter(tapOpts...), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want console, json, junit or tap)", format)
}

// failureText collects what is known about a failed result: its comment
// lines and, when present, the YAML got/expected pair.
func failureText(r harness.Result) string {
	var b strings.Builder
	for _, d := range r.Diagnostics {
		b.WriteString(strings.TrimSpace(d))
		b.WriteByte('\n')
	}
	if r.YAML != nil {
		if got, ok := r.YAML["got"]; ok {
			fmt.Fprintf(&b, "got: %v\n", got)
		}
		if exp, ok := r.YAML["expected"]; ok {
			fmt.Fprintf(&b, "expected: %v\n", exp)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
