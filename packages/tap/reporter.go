package tap

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/arduinotap/packages/stream"
)

// Reporter is the context of one TAP run.
type Reporter struct {
	out     stream.Stream
	failOut stream.Stream
	todoOut stream.Stream // nil follows out

	versionHeader   bool
	yamlDiagnostics bool
	headerWritten   bool

	planned     int
	noPlan      bool
	executed    int
	failed      int
	todoPending int
	todoReason  string
	skipPending int
	skipReason  string
	bailed      bool
	finished    bool
	doneCalled  bool
	ended       bool
	anomalies   int

	err error
}

// New returns a Reporter with no plan. Both sinks default to standard
// output.
func New(opts ...Option) *Reporter {
	r := &Reporter{
		out:     stream.Stdout(),
		failOut: stream.Stdout(),
		planned: Unplanned,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reset discards the run state and starts over on the same sinks.
func (r *Reporter) Reset() {
	*r = Reporter{
		out:             r.out,
		failOut:         r.failOut,
		todoOut:         r.todoOut,
		versionHeader:   r.versionHeader,
		yamlDiagnostics: r.yamlDiagnostics,
		planned:         Unplanned,
	}
}

// Plan declares that n assertions will run and writes the plan line.
// Planning twice, or after assertions ran, bails out.
func (r *Reporter) Plan(n int) {
	if r.bailed {
		return
	}
	switch {
	case n < 0:
		r.BailOut("plan count must not be negative")
	case r.planned != Unplanned || r.noPlan:
		r.BailOut("You tried to plan twice")
	case r.executed > 0:
		r.BailOut("plan() called after tests have run")
	default:
		r.planned = n
		r.writeLine(fmt.Sprintf("1..%d", n))
	}
}

// Planned returns the declared count, or Unplanned.
func (r *Reporter) Planned() int {
	return r.planned
}

// NoPlan declares an open-ended run. The plan line is written at the end
// by DoneTesting or End.
func (r *Reporter) NoPlan() {
	if r.bailed {
		return
	}
	switch {
	case r.planned != Unplanned || r.noPlan:
		r.BailOut("You tried to plan twice")
	case r.executed > 0:
		r.BailOut("no_plan() called after tests have run")
	default:
		r.noPlan = true
	}
}

// SkipAll declares that the whole run is skipped and finishes it.
func (r *Reporter) SkipAll(reason string) {
	if r.bailed {
		return
	}
	if r.planned != Unplanned || r.noPlan || r.executed > 0 {
		r.BailOut("You tried to plan twice")
		return
	}
	r.planned = 0
	r.finished = true
	r.writeLine("1..0" + directive("SKIP", reason))
	r.flush()
}

// DoneTesting finishes the run using the observed count. It writes the
// plan line when none was declared and reports false when a declared plan
// does not match what ran.
func (r *Reporter) DoneTesting() bool {
	return r.done(r.executed, false)
}

// DoneTestingN is DoneTesting with the expected count given explicitly.
func (r *Reporter) DoneTestingN(n int) bool {
	return r.done(n, true)
}

func (r *Reporter) done(n int, explicit bool) bool {
	if r.bailed {
		return false
	}
	if r.doneCalled {
		r.anomaly("done_testing() was already called")
		return false
	}
	r.doneCalled = true
	r.finished = true

	ok := true
	if r.planned == Unplanned {
		r.planned = n
		r.writeLine(fmt.Sprintf("1..%d", n))
		if n != r.executed {
			r.anomaly(fmt.Sprintf("Looks like you planned %d %s but ran %d.", n, tests(n), r.executed))
			ok = false
		}
	} else {
		if explicit && n != r.planned {
			r.anomaly(fmt.Sprintf("Looks like you planned %d %s but done_testing() expects %d.", r.planned, tests(r.planned), n))
			ok = false
		}
		if r.planned != r.executed {
			r.anomaly(fmt.Sprintf("Looks like you planned %d %s but ran %d.", r.planned, tests(r.planned), r.executed))
			ok = false
		}
	}
	r.flush()
	return ok
}

// BailOut aborts the run. The Reporter ignores everything after it; the
// caller is expected to stop testing.
func (r *Reporter) BailOut(reason string) {
	if r.bailed {
		return
	}
	line := "Bail out!"
	if reason != "" {
		line += " " + reason
	}
	r.bailed = true
	r.writeLine(line)
	r.flush()
}

// OkAt records one assertion at loc and returns test. An empty name
// leaves the description off the line.
func (r *Reporter) OkAt(test bool, loc Location, name string) bool {
	n, started := r.begin()
	if !started {
		return false
	}

	var line strings.Builder
	if !test {
		line.WriteString("not ")
	}
	fmt.Fprintf(&line, "ok %d", n)
	if name != "" {
		line.WriteString(" - ")
		line.WriteString(escapeName(name))
	}

	switch {
	case r.todoPending > 0:
		r.todoPending--
		line.WriteString(directive("TODO", r.todoReason))
		r.writeLine(line.String())
		if !test {
			r.failureDetail(r.TodoOutput(), true, name, loc)
		}
	case r.skipPending > 0:
		r.skipPending--
		line.WriteString(directive("skip", r.skipReason))
		r.writeLine(line.String())
	default:
		r.writeLine(line.String())
		if !test {
			r.failed++
			r.failureDetail(r.failOut, false, name, loc)
		}
	}
	return test
}

// begin counts a new assertion and returns its number. It reports false
// once the run bailed out.
func (r *Reporter) begin() (int, bool) {
	if r.bailed {
		r.writeTo(r.failOut, "# assertion ignored after Bail out!\n")
		return 0, false
	}
	r.executed++
	if r.finished {
		r.anomaly(fmt.Sprintf("test %d ran after the run was finished", r.executed))
	} else if r.planned != Unplanned && r.executed > r.planned {
		r.anomaly(fmt.Sprintf("test %d is beyond the plan of %d", r.executed, r.planned))
	}
	return r.executed, true
}

// Todo marks the next count assertions as TODO: they are reported but
// their failures do not fail the run. A count below one adds nothing.
func (r *Reporter) Todo(reason string, count int) {
	if count < 1 {
		return
	}
	r.todoPending += count
	r.todoReason = reason
}

// SkipNext makes the next count assertions report as skipped. They are
// still evaluated and the line shows their real outcome, but a failure
// is not counted. Pending TODOs take precedence. A count below one adds
// nothing.
func (r *Reporter) SkipNext(reason string, count int) {
	if count < 1 {
		return
	}
	r.skipPending += count
	r.skipReason = reason
}

// Skip writes exactly count skipped assertions without evaluating
// anything.
func (r *Reporter) Skip(reason string, count int) {
	for i := 0; i < count; i++ {
		n, started := r.begin()
		if !started {
			return
		}
		r.writeLine(fmt.Sprintf("ok %d", n) + directive("skip", reason))
	}
}

// TodoSkip writes one assertion that is both TODO and skipped.
func (r *Reporter) TodoSkip(reason string) {
	n, started := r.begin()
	if !started {
		return
	}
	r.writeLine(fmt.Sprintf("not ok %d", n) + directive("TODO & SKIP", reason))
}

// SkipRest skips every planned assertion that has not run yet and
// finishes the run. It needs a declared plan.
func (r *Reporter) SkipRest(reason string) {
	if r.bailed {
		return
	}
	if r.planned == Unplanned {
		r.anomaly("skip_rest() called without a plan")
		return
	}
	if remaining := r.planned - r.executed; remaining > 0 {
		r.Skip(reason, remaining)
	}
	r.finished = true
	r.flush()
}

// Diag writes msg as TAP comment lines on the primary sink.
func (r *Reporter) Diag(msg string) {
	r.writeTo(r.out, commentLines(msg))
}

// Output returns the primary sink.
func (r *Reporter) Output() stream.Stream {
	return r.out
}

// SetOutput replaces the primary sink. nil restores standard output.
func (r *Reporter) SetOutput(s stream.Stream) {
	if s == nil {
		s = stream.Stdout()
	}
	r.out = s
}

// TodoOutput returns the sink for the detail of failed TODO assertions.
// Unless set it is the primary sink.
func (r *Reporter) TodoOutput() stream.Stream {
	if r.todoOut == nil {
		return r.out
	}
	return r.todoOut
}

// SetTodoOutput replaces the TODO sink. nil makes it follow the primary
// sink again.
func (r *Reporter) SetTodoOutput(s stream.Stream) {
	r.todoOut = s
}

// FailureOutput returns the failure sink.
func (r *Reporter) FailureOutput() stream.Stream {
	return r.failOut
}

// SetFailureOutput replaces the failure sink. nil restores standard
// output.
func (r *Reporter) SetFailureOutput(s stream.Stream) {
	if s == nil {
		s = stream.Stdout()
	}
	r.failOut = s
}

// IsPassing reports whether nothing has failed and the run has not bailed
// out so far.
func (r *Reporter) IsPassing() bool {
	return r.failed == 0 && !r.bailed
}

// End closes the run the way a test program's exit would. It writes the
// deferred plan of a NoPlan run, complains about runs that never declared
// or finished their plan, and summarises failures. It reports whether the
// run passed and was well formed. Calling End again only repeats the
// answer.
func (r *Reporter) End() bool {
	if r.ended {
		return r.IsPassing() && r.anomalies == 0
	}
	r.ended = true
	if r.bailed {
		r.flush()
		return false
	}

	if !r.finished {
		switch {
		case r.noPlan:
			r.finished = true
			r.planned = r.executed
			r.writeLine(fmt.Sprintf("1..%d", r.executed))
		case r.planned == Unplanned && r.executed == 0:
			r.anomaly("No tests run!")
		case r.planned == Unplanned:
			r.anomaly("Tests were run but no plan was declared and done_testing() was not seen.")
		case r.planned != r.executed:
			r.anomaly(fmt.Sprintf("Looks like you planned %d %s but ran %d.", r.planned, tests(r.planned), r.executed))
		}
	}

	if r.failed > 0 {
		r.writeTo(r.failOut, fmt.Sprintf("# Looks like you failed %d %s of %d.\n", r.failed, tests(r.failed), r.executed))
	}
	r.flush()
	return r.IsPassing() && r.anomalies == 0
}

// State returns a copy of the run's bookkeeping.
func (r *Reporter) State() State {
	return State{
		Planned:     r.planned,
		HasPlan:     r.planned != Unplanned,
		NoPlan:      r.noPlan,
		Executed:    r.executed,
		Failed:      r.failed,
		TodoPending: r.todoPending,
		SkipPending: r.skipPending,
		Bailed:      r.bailed,
		Finished:    r.finished,
		Phase:       r.Phase(),
	}
}

// Phase returns where the run is in its lifecycle.
func (r *Reporter) Phase() Phase {
	switch {
	case r.bailed:
		return Bailed
	case r.finished:
		return Finished
	case r.planned != Unplanned || r.noPlan || r.executed > 0:
		return Running
	}
	return NotStarted
}

// Err returns the first error a sink returned, if any.
func (r *Reporter) Err() error {
	return r.err
}

func (r *Reporter) anomaly(msg string) {
	r.anomalies++
	r.writeTo(r.failOut, "# "+msg+"\n")
}

func (r *Reporter) failureDetail(s stream.Stream, todo bool, name string, loc Location) {
	kind := "Failed test"
	if todo {
		kind = "Failed (TODO) test"
	}

	var b strings.Builder
	switch {
	case name != "" && !loc.IsZero():
		fmt.Fprintf(&b, "#   %s '%s'\n#   at %s.\n", kind, name, loc)
	case name != "":
		fmt.Fprintf(&b, "#   %s '%s'\n", kind, name)
	case !loc.IsZero():
		fmt.Fprintf(&b, "#   %s at %s.\n", kind, loc)
	default:
		fmt.Fprintf(&b, "#   %s\n", kind)
	}
	r.writeTo(s, b.String())
}

// writeLine writes one TAP line to the primary sink, preceded by the
// version header when that is enabled and not yet written.
func (r *Reporter) writeLine(line string) {
	if r.versionHeader && !r.headerWritten {
		r.headerWritten = true
		r.writeTo(r.out, "TAP version 13\n")
	}
	r.writeTo(r.out, line+"\n")
}

func (r *Reporter) writeTo(s stream.Stream, text string) {
	if _, err := s.WriteString(text); err != nil && r.err == nil {
		r.err = err
	}
}

func (r *Reporter) flush() {
	if err := r.out.Flush(); err != nil && r.err == nil {
		r.err = err
	}
	if err := r.failOut.Flush(); err != nil && r.err == nil {
		r.err = err
	}
	if r.todoOut != nil {
		if err := r.todoOut.Flush(); err != nil && r.err == nil {
			r.err = err
		}
	}
}

func directive(kind, reason string) string {
	if reason == "" {
		return " # " + kind
	}
	return " # " + kind + " " + reason
}

// escapeName keeps a description from being read as a directive or from
// breaking the line.
func escapeName(name string) string {
	name = strings.ReplaceAll(name, "#", `\#`)
	return strings.ReplaceAll(name, "\n", "\n# ")
}

func commentLines(msg string) string {
	msg = strings.TrimSuffix(msg, "\n")
	var b strings.Builder
	for _, line := range strings.Split(msg, "\n") {
		if line == "" {
			b.WriteString("#\n")
			continue
		}
		b.WriteString("# ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func tests(n int) string {
	if n == 1 {
		return "test"
	}
	return "tests"
}
