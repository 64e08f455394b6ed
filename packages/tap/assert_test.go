package tap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestIs(t *testing.T) {
	r, out, failOut := newTestReporter()

	assert.True(t, r.Is(5, 5))
	assert.False(t, r.Is(5, 6, "calibration"))

	assert.Equal(t, []string{"ok 1", "not ok 2 - calibration"}, out.Lines())
	lines := failOut.Lines()
	require.Len(t, lines, 4)
	assert.Equal(t, "#   Failed test 'calibration'", lines[0])
	assert.Equal(t, "#         got: 5", lines[2])
	assert.Equal(t, "#    expected: 6", lines[3])
	assert.Equal(t, 1, r.State().Failed)
}

func TestIsComparesByValueAndType(t *testing.T) {
	tests := []struct {
		name     string
		got      any
		expected any
		pass     bool
	}{
		{"equal strings", "ready", "ready", true},
		{"different strings", "ready", "busy", false},
		{"equal doubles", 2.5, 2.5, true},
		{"int against int64", 5, int64(5), false},
		{"equal byte slices", []byte{1, 2}, []byte{1, 2}, true},
		{"equal structs", struct{ X int }{1}, struct{ X int }{1}, true},
		{"nil against nil", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestReporter()
			assert.Equal(t, tt.pass, r.Is(tt.got, tt.expected))
			assert.Equal(t, !tt.pass, r.Isnt(tt.got, tt.expected))
		})
	}
}

func TestIsFormatsKinds(t *testing.T) {
	r, _, failOut := newTestReporter()

	r.Is(3.3, 3.30001)
	r.Is("on", "off")

	text := failOut.String()
	assert.Contains(t, text, "#         got: 3.3\n#    expected: 3.30001\n")
	assert.Contains(t, text, "#         got: on\n#    expected: off\n")
}

func TestIsnt(t *testing.T) {
	r, out, failOut := newTestReporter()

	assert.True(t, r.Isnt(1, 2, "state changed"))
	assert.False(t, r.Isnt(7, 7))

	assert.Equal(t, []string{"ok 1 - state changed", "not ok 2"}, out.Lines())
	lines := failOut.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "#         got: 7", lines[1])
	assert.Equal(t, "#    expected: anything else", lines[2])
}

func TestIsUnderTodo(t *testing.T) {
	r, out, _ := newTestReporter()
	r.Todo("known drift", 1)

	r.Is(1, 2)

	assert.Equal(t, "not ok 1 # TODO known drift", out.Lines()[0])
	assert.True(t, r.IsPassing())
}

func TestIsAfterBailOut(t *testing.T) {
	r, _, failOut := newTestReporter()
	r.BailOut("")

	assert.False(t, r.Is(1, 2))
	assert.Equal(t, []string{"# assertion ignored after Bail out!"}, failOut.Lines())
}

func TestYAMLDiagnostics(t *testing.T) {
	r, out, _ := newTestReporter(WithYAMLDiagnostics(true))

	r.Is(5, 6, "calibration")
	r.Isnt("x", "x")

	text := out.String()
	blocks := strings.Split(text, "  ---\n")
	require.Len(t, blocks, 3)
	assert.Equal(t, "not ok 1 - calibration\n", blocks[0])

	first := strings.TrimSuffix(blocks[1], "  ...\nnot ok 2\n")
	var diag map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(first), &diag))
	assert.Equal(t, "calibration", diag["message"])
	assert.Equal(t, "fail", diag["severity"])
	assert.Equal(t, 5, diag["got"])
	assert.Equal(t, 6, diag["expected"])
	assert.Contains(t, diag["at"], "assert_test.go:")

	second := strings.TrimSuffix(blocks[2], "  ...\n")
	diag = nil
	require.NoError(t, yaml.Unmarshal([]byte(second), &diag))
	assert.Equal(t, "x", diag["got"])
	assert.Equal(t, "anything else", diag["expected"])
	assert.NotContains(t, diag, "message")
}

func TestMessageFromMsgAndArgs(t *testing.T) {
	assert.Equal(t, "", messageFromMsgAndArgs())
	assert.Equal(t, "plain", messageFromMsgAndArgs("plain"))
	assert.Equal(t, "pin 4", messageFromMsgAndArgs("pin %d", 4))
	assert.Equal(t, "42", messageFromMsgAndArgs(42))
	assert.Equal(t, "[1 2]", messageFromMsgAndArgs(1, 2))
}

func TestCaller(t *testing.T) {
	loc := Caller(0)
	assert.True(t, strings.HasSuffix(loc.File, "assert_test.go"))
	assert.Positive(t, loc.Line)
	assert.Contains(t, loc.String(), "assert_test.go line ")

	assert.True(t, Location{}.IsZero())
	assert.Equal(t, "", Location{}.String())
	assert.True(t, Caller(100).IsZero())
}

func TestAssertionNameFormatting(t *testing.T) {
	r, out, _ := newTestReporter()

	r.Is(1, 1, "pin %d", 13)
	r.Isnt(1, 2, "channel %s on %d", "A", 2)
	r.Pass(7)

	assert.Equal(t, []string{
		"ok 1 - pin 13",
		"ok 2 - channel A on 2",
		"ok 3 - 7",
	}, out.Lines())
}
