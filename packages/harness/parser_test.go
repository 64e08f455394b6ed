package harness

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/arduinotap/packages/stream"
	"github.com/abdul-hamid-achik/arduinotap/packages/tap"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, text string) *Summary {
	t.Helper()
	s, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	return s
}

func TestParseBasicRun(t *testing.T) {
	s := parseString(t, `TAP version 13
1..3
ok 1 - boot
not ok 2 - sensor reads
#   Failed test 'sensor reads'
#   at sensor_test.ino line 12.
ok 3
`)

	assert.Equal(t, 13, s.Version)
	assert.Equal(t, 3, s.Planned)
	assert.Equal(t, 3, s.Total())
	assert.Equal(t, 2, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.False(t, s.PlanMismatch)
	assert.False(t, s.Passing(false))

	failed := s.FailedResults()
	require.Len(t, failed, 1)
	assert.Equal(t, "sensor reads", failed[0].Description)
	assert.Equal(t, 2, failed[0].Number)
	assert.Equal(t, 4, failed[0].Line)
	assert.Equal(t, []string{"  Failed test 'sensor reads'", "  at sensor_test.ino line 12."}, failed[0].Diagnostics)
	assert.Empty(t, s.Diagnostics)
	_, err := uuid.Parse(s.RunID)
	assert.NoError(t, err)
}

func TestParseDirectives(t *testing.T) {
	s := parseString(t, `1..6
not ok 1 - pwm # TODO driver unfinished
ok 2 # TODO
ok 3 # skip no servo
not ok 4 # SKIP bus offline
not ok 5 # TODO & SKIP rev B only
ok 6 - voltage \# 1 # note
`)

	require.Len(t, s.Results, 6)
	assert.Equal(t, Todo, s.Results[0].Directive)
	assert.Equal(t, "driver unfinished", s.Results[0].Reason)
	assert.Equal(t, "pwm", s.Results[0].Description)
	assert.Equal(t, Todo, s.Results[1].Directive)
	assert.Empty(t, s.Results[1].Reason)
	assert.Equal(t, Skip, s.Results[2].Directive)
	assert.Equal(t, "no servo", s.Results[2].Reason)
	assert.Equal(t, Skip, s.Results[3].Directive)
	assert.Equal(t, TodoSkip, s.Results[4].Directive)
	assert.Equal(t, "rev B only", s.Results[4].Reason)
	assert.Equal(t, NoDirective, s.Results[5].Directive)
	assert.Equal(t, "voltage # 1 # note", s.Results[5].Description)

	assert.Equal(t, 2, s.Todo)
	assert.Equal(t, 1, s.TodoPassed)
	assert.Equal(t, 3, s.Skipped)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 0, s.Failed)
	assert.True(t, s.Passing(true))
}

func TestParseSkipAll(t *testing.T) {
	s := parseString(t, "1..0 # SKIP no display attached\n")

	assert.True(t, s.SkipAll)
	assert.Equal(t, "no display attached", s.SkipAllReason)
	assert.Equal(t, 0, s.Planned)
	assert.True(t, s.Passing(true))
}

func TestParseBailOut(t *testing.T) {
	s := parseString(t, "1..3\nok 1\nBail out! device unresponsive\nok 2\n")

	assert.True(t, s.Bailed)
	assert.Equal(t, "device unresponsive", s.BailReason)
	assert.False(t, s.PlanMismatch)
	assert.False(t, s.Passing(false))
	assert.Equal(t, []string{"result on line 4 after Bail out!"}, s.Problems)
}

func TestParsePlanProblems(t *testing.T) {
	t.Run("mismatch", func(t *testing.T) {
		s := parseString(t, "1..3\nok 1\n")
		assert.True(t, s.PlanMismatch)
		assert.True(t, s.Passing(false))
		assert.False(t, s.Passing(true))
	})

	t.Run("missing plan", func(t *testing.T) {
		s := parseString(t, "ok 1\nok 2\n")
		assert.True(t, s.MissingPlan)
		assert.Equal(t, -1, s.Planned)
		assert.False(t, s.Passing(true))
	})

	t.Run("trailing plan", func(t *testing.T) {
		s := parseString(t, "ok 1\nok 2\n1..2\n")
		assert.False(t, s.MissingPlan)
		assert.False(t, s.PlanMismatch)
		assert.True(t, s.Passing(true))
	})

	t.Run("second plan", func(t *testing.T) {
		s := parseString(t, "1..1\nok 1\n1..1\n")
		assert.Equal(t, []string{"plan declared again on line 3"}, s.Problems)
		assert.False(t, s.Passing(true))
	})

	t.Run("out of sequence", func(t *testing.T) {
		s := parseString(t, "1..2\nok 1\nok 3\n")
		assert.Equal(t, []string{"test 3 out of sequence, expected 2"}, s.Problems)
		assert.Equal(t, 3, s.Results[1].Number)
	})

	t.Run("late version line", func(t *testing.T) {
		s := parseString(t, "1..0\nTAP version 13\n")
		assert.Equal(t, []string{"version line is not the first line"}, s.Problems)
	})
}

func TestParseNumberlessResults(t *testing.T) {
	s := parseString(t, "ok - first\nnot ok\nok\n")

	require.Len(t, s.Results, 3)
	assert.Equal(t, 1, s.Results[0].Number)
	assert.Equal(t, "first", s.Results[0].Description)
	assert.Equal(t, 2, s.Results[1].Number)
	assert.Equal(t, "test 2", s.Results[1].Name())
	assert.Equal(t, 3, s.Results[2].Number)
	assert.Empty(t, s.Problems)
}

func TestParseCommentsAndUnknown(t *testing.T) {
	s := parseString(t, "# firmware 1.4.2\n1..1\nok 1\n# after pass\nrandom boot noise\n\n")

	assert.Equal(t, []string{"firmware 1.4.2", "after pass"}, s.Diagnostics)
	assert.Equal(t, []string{"random boot noise"}, s.Unknown)
	assert.Empty(t, s.Results[0].Diagnostics)
}

func TestParseYAMLBlock(t *testing.T) {
	s := parseString(t, `1..2
not ok 1 - calibration
  ---
  message: calibration
  severity: fail
  got: 5
  expected: 6
  ...
ok 2
`)

	require.Len(t, s.Results, 2)
	yml := s.Results[0].YAML
	require.NotNil(t, yml)
	assert.Equal(t, "fail", yml["severity"])
	assert.Equal(t, 5, yml["got"])
	assert.Equal(t, 6, yml["expected"])
	assert.Nil(t, s.Results[1].YAML)
	assert.Empty(t, s.Problems)
}

func TestParseYAMLBlockNonStringKeys(t *testing.T) {
	s := parseString(t, `1..1
not ok 1 - lookup
  ---
  data:
    1: one
    pins:
      - {13: led}
  ...
`)

	data, ok := s.Results[0].YAML["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "one", data["1"])
	pins, ok := data["pins"].([]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"13": "led"}, pins[0])
}

func TestParseBrokenYAMLBlocks(t *testing.T) {
	t.Run("invalid", func(t *testing.T) {
		s := parseString(t, "not ok 1\n  ---\n  got: [1, 2\n  ...\n")
		require.Len(t, s.Problems, 1)
		assert.Contains(t, s.Problems[0], "invalid YAML block")
	})

	t.Run("unterminated", func(t *testing.T) {
		s := parseString(t, "not ok 1\n  ---\n  got: 1\n")
		assert.Equal(t, []string{"unterminated YAML block"}, s.Problems)
		assert.Equal(t, 1, s.Results[0].YAML["got"])
	})
}

func TestParseCRLF(t *testing.T) {
	s := parseString(t, "1..1\r\nok 1 - serial\r\n")
	assert.Equal(t, "serial", s.Results[0].Description)
	assert.False(t, s.PlanMismatch)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("port closed") }

func TestParseReadError(t *testing.T) {
	s, err := Parse(errReader{})
	assert.ErrorContains(t, err, "port closed")
	assert.NotNil(t, s)
}

func TestFeedTiming(t *testing.T) {
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }
	p := NewParser(WithClock(clock))

	p.Feed("1..3")
	now = now.Add(10 * time.Millisecond)
	p.Feed("ok 1")
	now = now.Add(20 * time.Millisecond)
	p.Feed("ok 2")
	now = now.Add(30 * time.Millisecond)
	p.Feed("ok 3\n")

	s := p.Summary()
	assert.Same(t, s, p.Summary())
	assert.Equal(t, int64(3), s.Timing.Count())
	assert.InDelta(t, float64(30*time.Millisecond), float64(s.Timing.Max()), float64(100*time.Microsecond))
	assert.InDelta(t, float64(20*time.Millisecond), float64(s.Timing.P50()), float64(100*time.Microsecond))
	assert.InDelta(t, float64(20*time.Millisecond), float64(s.Timing.Mean()), float64(100*time.Microsecond))
	assert.GreaterOrEqual(t, s.Timing.P99(), s.Timing.P95())
}

// The reporter's own output must read back as the same run.
func TestParseReporterOutput(t *testing.T) {
	out := stream.NewBuffer()
	r := tap.New(tap.WithOutput(out), tap.WithFailureOutput(out), tap.WithVersionHeader(true), tap.WithYAMLDiagnostics(true))

	r.Plan(7)
	r.Ok(true, "boot")
	r.Is(5, 6, "calibration")
	r.Todo("rounding", 1)
	r.Ok(false, "adc")
	r.SkipNext("bus offline", 1)
	r.Ok(false, "i2c")
	r.Skip("no servo", 1)
	r.TodoSkip("rev B")
	r.Diag("heap ok")
	r.Pass()
	r.DoneTesting()

	s := parseString(t, out.String())

	assert.Equal(t, 13, s.Version)
	assert.Equal(t, 7, s.Planned)
	assert.Equal(t, 7, s.Total())
	assert.Equal(t, 2, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Todo)
	assert.Equal(t, 3, s.Skipped)
	assert.False(t, s.PlanMismatch)
	assert.Empty(t, s.Problems)
	assert.Empty(t, s.Unknown)

	calibration := s.Results[1]
	assert.Equal(t, "calibration", calibration.Description)
	assert.Contains(t, calibration.Diagnostics, "        got: 5")
	assert.Equal(t, 6, calibration.YAML["expected"])
	assert.Equal(t, r.IsPassing(), s.Passing(false))
}

func TestJudgeTodoPass(t *testing.T) {
	s := parseString(t, "1..2\nok 1\nok 2 # TODO fixed already\n")

	assert.Equal(t, 1, s.TodoPassed)
	assert.True(t, s.Passing(true))
	assert.True(t, s.Judge(true, true))
	assert.False(t, s.Judge(false, false))

	s = parseString(t, "1..2\nok 1\nnot ok 2 # TODO still broken\n")
	assert.True(t, s.Judge(true, false))
}
