package harness

import (
	"strconv"
	"strings"
)

// Directive is the annotation after the # on a result line.
type Directive int

const (
	NoDirective Directive = iota
	Todo
	Skip
	TodoSkip
)

func (d Directive) String() string {
	switch d {
	case Todo:
		return "TODO"
	case Skip:
		return "SKIP"
	case TodoSkip:
		return "TODO & SKIP"
	}
	return ""
}

// Result is one ok / not ok line.
type Result struct {
	Number      int
	OK          bool
	Description string
	Directive   Directive
	Reason      string
	Diagnostics []string       // comment lines that followed a failing result
	YAML        map[string]any // TAP 13 YAML block, if any
	Line        int            // line number in the stream
}

// Failed reports whether the result counts against the run. TODO and
// skipped results never do.
func (r Result) Failed() bool {
	return !r.OK && r.Directive == NoDirective
}

// Summary is everything learned from one TAP stream.
type Summary struct {
	RunID         string
	Version       int
	Planned       int // -1 when no plan line was seen
	SkipAll       bool
	SkipAllReason string
	Results       []Result

	Passed     int
	Failed     int
	Todo       int
	TodoPassed int
	Skipped    int

	Bailed     bool
	BailReason string

	PlanMismatch bool
	MissingPlan  bool
	Problems     []string // protocol violations such as a second plan
	Diagnostics  []string // comment lines not attached to a result
	Unknown      []string // lines that are not TAP

	Timing *Timing
}

// Total is the number of results seen.
func (s *Summary) Total() int {
	return len(s.Results)
}

// Passing reports whether the run succeeded: nothing failed outside TODO
// and it did not bail out. Strict mode also requires a plan that matches
// the results and no protocol problems.
func (s *Summary) Passing(strict bool) bool {
	return s.Judge(strict, true)
}

// Judge is Passing with a say over TODO tests that passed. Such a test
// means the TODO marker is stale; unless allowTodoPass is set it fails
// the run.
func (s *Summary) Judge(strict, allowTodoPass bool) bool {
	if s.Bailed || s.Failed > 0 {
		return false
	}
	if !allowTodoPass && s.TodoPassed > 0 {
		return false
	}
	if strict {
		return !s.PlanMismatch && !s.MissingPlan && len(s.Problems) == 0
	}
	return true
}

// FailedResults returns the results that count against the run.
func (s *Summary) FailedResults() []Result {
	var failed []Result
	for _, r := range s.Results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Name returns the description, or "test N" when there is none.
func (r Result) Name() string {
	if d := strings.TrimSpace(r.Description); d != "" {
		return d
	}
	return "test " + strconv.Itoa(r.Number)
}
