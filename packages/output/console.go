package output

import (
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/arduinotap/packages/harness"
	"github.com/fatih/color"
)

// formatValue formats a value for display, truncating long values
func formatValue(v any, maxLen int) string {
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatSummary(s *harness.Summary) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n")

	if s.SkipAll {
		reason := s.SkipAllReason
		if reason == "" {
			reason = "no reason given"
		}
		fmt.Fprintf(f.writer, "  %s all tests skipped (%s)\n", yellow("-"), reason)
	}

	for _, r := range s.Results {
		switch r.Directive {
		case harness.Skip, harness.TodoSkip:
			fmt.Fprintf(f.writer, "  %s %s", yellow("-"), r.Name())
			if r.Reason != "" {
				fmt.Fprintf(f.writer, " (%s)", r.Reason)
			}
			fmt.Fprintf(f.writer, "\n")
			continue
		case harness.Todo:
			state := "not ok"
			if r.OK {
				state = "unexpectedly ok"
			}
			fmt.Fprintf(f.writer, "  %s %s %s\n", cyan("~"), r.Name(), cyan(fmt.Sprintf("(TODO, %s)", state)))
			continue
		}

		if r.OK {
			fmt.Fprintf(f.writer, "  %s %s\n", green("✓"), r.Name())
			continue
		}

		fmt.Fprintf(f.writer, "  %s %s\n", red("✗"), r.Name())
		if got, ok := r.YAML["got"]; ok {
			fmt.Fprintf(f.writer, "      Expected: %s\n", formatValue(r.YAML["expected"], 100))
			fmt.Fprintf(f.writer, "      Actual:   %s\n", formatValue(got, 100))
		}
		if f.verbose || r.YAML == nil {
			for _, d := range r.Diagnostics {
				fmt.Fprintf(f.writer, "    %s %s\n", red("→"), d)
			}
		}
	}

	if s.Bailed {
		reason := s.BailReason
		if reason == "" {
			reason = "no reason given"
		}
		fmt.Fprintf(f.writer, "\n%s %s\n", red(bold("Bail out!")), reason)
	}

	if len(s.Problems) > 0 {
		fmt.Fprintf(f.writer, "\n%s\n", yellow("Protocol problems:"))
		for _, p := range s.Problems {
			fmt.Fprintf(f.writer, "  %s %s\n", yellow("!"), p)
		}
	}

	if f.verbose {
		for _, d := range s.Diagnostics {
			fmt.Fprintf(f.writer, "  %s\n", cyan("# "+d))
		}
		for _, u := range s.Unknown {
			fmt.Fprintf(f.writer, "  %s\n", formatValue(u, 100))
		}
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Tests: ")
	if s.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", s.Passed)))
	}
	if s.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", s.Failed)))
	}
	if s.Todo > 0 {
		fmt.Fprintf(f.writer, "%s, ", cyan(fmt.Sprintf("%d todo", s.Todo)))
	}
	if s.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", s.Skipped)))
	}
	fmt.Fprintf(f.writer, "%d total\n", s.Total())

	switch {
	case s.MissingPlan || s.Planned < 0:
		fmt.Fprintf(f.writer, "Plan:  %s\n", yellow("none declared"))
	case s.PlanMismatch:
		fmt.Fprintf(f.writer, "Plan:  %s\n", red(fmt.Sprintf("%d planned, %d ran", s.Planned, s.Total())))
	default:
		fmt.Fprintf(f.writer, "Plan:  %d\n", s.Planned)
	}

	if f.verbose && s.Timing != nil && s.Timing.Count() > 0 {
		fmt.Fprintf(f.writer, "Gaps:  p50 %s, p95 %s, max %s\n", s.Timing.P50(), s.Timing.P95(), s.Timing.Max())
	}
	fmt.Fprintf(f.writer, "\n")
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("arduinotap"), version)
}
