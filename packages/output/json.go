package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/arduinotap/packages/harness"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	RunID    string      `json:"runId"`
	Summary  JSONSummary `json:"summary"`
	Plan     JSONPlan    `json:"plan"`
	Tests    []JSONTest  `json:"tests"`
	Timing   *JSONTiming `json:"timing,omitempty"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

// JSONSummary represents the test summary
type JSONSummary struct {
	Total      int      `json:"total"`
	Passed     int      `json:"passed"`
	Failed     int      `json:"failed"`
	Todo       int      `json:"todo"`
	TodoPassed int      `json:"todoPassed"`
	Skipped    int      `json:"skipped"`
	Passing    bool     `json:"passing"`
	Bailed     bool     `json:"bailed"`
	BailReason string   `json:"bailReason,omitempty"`
	Problems   []string `json:"problems,omitempty"`
}

// JSONPlan represents the plan bookkeeping
type JSONPlan struct {
	Planned       int    `json:"planned"`
	Missing       bool   `json:"missing"`
	Mismatch      bool   `json:"mismatch"`
	SkipAll       bool   `json:"skipAll,omitempty"`
	SkipAllReason string `json:"skipAllReason,omitempty"`
}

// JSONTest represents a single test result
type JSONTest struct {
	Number      int            `json:"number"`
	Name        string         `json:"name"`
	Passed      bool           `json:"passed"`
	Directive   string         `json:"directive,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	Diagnostics []string       `json:"diagnostics,omitempty"`
	YAML        map[string]any `json:"yaml,omitempty"`
	Line        int            `json:"line"`
}

// JSONTiming represents the gaps between results in milliseconds
type JSONTiming struct {
	Count int64   `json:"count"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Max   float64 `json:"max"`
}

// JSONFormatter formats test results as JSON
type JSONFormatter struct {
	writer       io.Writer
	strict       bool
	failTodoPass bool
	summary      *harness.Summary
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

// JSONWithFailTodoPass makes a TODO test that passed fail "passing"
func JSONWithFailTodoPass(fail bool) JSONOption {
	return func(f *JSONFormatter) {
		f.failTodoPass = fail
	}
}

// JSONWithStrict judges "passing" in strict mode
func JSONWithStrict(strict bool) JSONOption {
	return func(f *JSONFormatter) {
		f.strict = strict
	}
}

func (f *JSONFormatter) FormatSummary(s *harness.Summary) {
	f.summary = s
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are reported through the exit code
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	s := f.summary
	if s == nil {
		s = harness.NewParser().Summary()
	}

	output := JSONOutput{
		RunID: s.RunID,
		Summary: JSONSummary{
			Total:      s.Total(),
			Passed:     s.Passed,
			Failed:     s.Failed,
			Todo:       s.Todo,
			TodoPassed: s.TodoPassed,
			Skipped:    s.Skipped,
			Passing:    s.Judge(f.strict, !f.failTodoPass),
			Bailed:     s.Bailed,
			BailReason: s.BailReason,
			Problems:   s.Problems,
		},
		Plan: JSONPlan{
			Planned:       s.Planned,
			Missing:       s.MissingPlan,
			Mismatch:      s.PlanMismatch,
			SkipAll:       s.SkipAll,
			SkipAllReason: s.SkipAllReason,
		},
		Tests:    make([]JSONTest, 0, len(s.Results)),
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	for _, r := range s.Results {
		output.Tests = append(output.Tests, JSONTest{
			Number:      r.Number,
			Name:        r.Name(),
			Passed:      !r.Failed(),
			Directive:   r.Directive.String(),
			Reason:      r.Reason,
			Diagnostics: r.Diagnostics,
			YAML:        r.YAML,
			Line:        r.Line,
		})
	}

	if s.Timing != nil && s.Timing.Count() > 0 {
		output.Timing = &JSONTiming{
			Count: s.Timing.Count(),
			P50:   millis(s.Timing.P50()),
			P95:   millis(s.Timing.P95()),
			P99:   millis(s.Timing.P99()),
			Max:   millis(s.Timing.Max()),
		}
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
