package tap

import (
	"fmt"

	"github.com/abdul-hamid-achik/arduinotap/packages/stream"
	"github.com/stretchr/testify/assert"
)

// The helpers below record the line that called them. The optional
// msgAndArgs names the assertion: a single value is used as is, a format
// string with arguments goes through fmt.Sprintf.

// Ok records test.
func (r *Reporter) Ok(test bool, msgAndArgs ...any) bool {
	return r.OkAt(test, Caller(1), messageFromMsgAndArgs(msgAndArgs...))
}

// Nok records the negation of test.
func (r *Reporter) Nok(test bool, msgAndArgs ...any) bool {
	return r.OkAt(!test, Caller(1), messageFromMsgAndArgs(msgAndArgs...))
}

// Pass records a passing assertion.
func (r *Reporter) Pass(msgAndArgs ...any) bool {
	return r.OkAt(true, Caller(1), messageFromMsgAndArgs(msgAndArgs...))
}

// Fail records a failing assertion.
func (r *Reporter) Fail(msgAndArgs ...any) bool {
	return r.OkAt(false, Caller(1), messageFromMsgAndArgs(msgAndArgs...))
}

// Is passes when got equals expected. Values of different types are
// never equal. On failure both values are written to the failure sink.
func (r *Reporter) Is(got, expected any, msgAndArgs ...any) bool {
	loc := Caller(1)
	name := messageFromMsgAndArgs(msgAndArgs...)
	equal := assert.ObjectsAreEqual(expected, got)
	if !r.record(equal, loc, name) {
		return equal
	}
	if !equal {
		r.writeTo(r.failOut, fmt.Sprintf("#         got: %s\n#    expected: %s\n", stream.Format(got), stream.Format(expected)))
		if r.yamlDiagnostics {
			r.yamlBlock(name, loc, yamlValue(got), yamlValue(expected))
		}
	}
	return equal
}

// Isnt passes when got differs from expected.
func (r *Reporter) Isnt(got, expected any, msgAndArgs ...any) bool {
	loc := Caller(1)
	name := messageFromMsgAndArgs(msgAndArgs...)
	differ := !assert.ObjectsAreEqual(expected, got)
	if !r.record(differ, loc, name) {
		return differ
	}
	if !differ {
		r.writeTo(r.failOut, fmt.Sprintf("#         got: %s\n#    expected: anything else\n", stream.Format(got)))
		if r.yamlDiagnostics {
			r.yamlBlock(name, loc, yamlValue(got), "anything else")
		}
	}
	return differ
}

// record runs OkAt and reports whether the assertion was taken at all.
func (r *Reporter) record(test bool, loc Location, name string) bool {
	taken := !r.bailed
	r.OkAt(test, loc, name)
	return taken
}

func messageFromMsgAndArgs(msgAndArgs ...any) string {
	if len(msgAndArgs) == 0 {
		return ""
	}
	if len(msgAndArgs) == 1 {
		if msg, ok := msgAndArgs[0].(string); ok {
			return msg
		}
		return fmt.Sprintf("%+v", msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprintf("%+v", msgAndArgs)
}
