package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/arduinotap/packages/core/config"
	"github.com/abdul-hamid-achik/arduinotap/packages/harness"
	"github.com/abdul-hamid-achik/arduinotap/packages/stream"
	"github.com/abdul-hamid-achik/arduinotap/packages/tap"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func jsonConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Output = "json"
	cfg.NoColor = config.BoolPtr(true)
	return cfg
}

func TestCheckStream(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		strict   bool
		wantCode int
		passing  bool
	}{
		{
			name:     "all pass",
			input:    "TAP version 13\n1..2\nok 1 - boots\nok 2 - blinks\n",
			wantCode: ExitSuccess,
			passing:  true,
		},
		{
			name:     "one failure",
			input:    "1..2\nok 1\nnot ok 2 - ADC reads\n# got: 0\n",
			wantCode: ExitTestFailure,
		},
		{
			name:     "failing todo still passes",
			input:    "1..1\nnot ok 1 - PWM # TODO calibrate\n",
			wantCode: ExitSuccess,
			passing:  true,
		},
		{
			name:     "bail out",
			input:    "1..3\nok 1\nBail out! watchdog reset\n",
			wantCode: ExitTestFailure,
		},
		{
			name:     "short run is lenient by default",
			input:    "1..3\nok 1\nok 2\n",
			wantCode: ExitSuccess,
			passing:  true,
		},
		{
			name:     "short run fails in strict mode",
			input:    "1..3\nok 1\nok 2\n",
			strict:   true,
			wantCode: ExitTestFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := jsonConfig()
			cfg.Strict = config.BoolPtr(tt.strict)

			var out bytes.Buffer
			code, err := checkStream(strings.NewReader(tt.input), &out, "capture", cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.passing, gjson.Get(out.String(), "summary.passing").Bool())
		})
	}
}

func TestCheckStreamTodoPass(t *testing.T) {
	input := "1..2\nok 1\nok 2 - PWM # TODO calibrate\n"

	for _, allow := range []bool{true, false} {
		cfg := jsonConfig()
		cfg.AllowTodoPass = config.BoolPtr(allow)

		var out bytes.Buffer
		code, err := checkStream(strings.NewReader(input), &out, "capture", cfg)
		require.NoError(t, err)
		assert.Equal(t, allow, code == ExitSuccess)
		assert.Equal(t, allow, gjson.Get(out.String(), "summary.passing").Bool())
	}
}

func TestCheckStreamUnknownFormat(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output = "html"

	code, err := checkStream(strings.NewReader("1..0\n"), &bytes.Buffer{}, "capture", cfg)
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, code)
}

func TestCheckStreamJUnitUsesSourceName(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output = "junit"

	var out bytes.Buffer
	code, err := checkStream(strings.NewReader("1..1\nok 1 - boots\n"), &out, "uno-blink", cfg)
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out.String(), `name="uno-blink"`)
}

func TestCheckSourceReadsFileAndWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	capture := filepath.Join(dir, "blink.tap")
	report := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(capture, []byte("1..1\nnot ok 1 - LED on\n"), 0644))

	cfg := jsonConfig()
	cfg.OutputFile = report

	code, err := checkSource(checkCmd, capture, cfg)
	require.NoError(t, err)
	assert.Equal(t, ExitTestFailure, code)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gjson.GetBytes(data, "summary.failed").Int())
	assert.Equal(t, "LED on", gjson.GetBytes(data, "tests.0.name").String())
}

func TestCheckSourceMissingFile(t *testing.T) {
	code, err := checkSource(checkCmd, filepath.Join(t.TempDir(), "missing.tap"), jsonConfig())
	require.Error(t, err)
	assert.Equal(t, ExitParseError, code)
}

func TestRunDemoSuite(t *testing.T) {
	buf := stream.NewBuffer()
	r := tap.New(tap.WithOutput(buf), tap.WithFailureOutput(buf))

	assert.True(t, runDemoSuite(r, demoOptions{}))

	out := buf.String()
	assert.Equal(t, "1..10", buf.Lines()[0])
	assert.Contains(t, out, "# firmware blink-1.4.2\n")
	assert.Contains(t, out, "ok 1 - board boots\n")
	assert.Contains(t, out, "ok 6 - A2 left floating\n")
	assert.Contains(t, out, "not ok 7 - PWM duty cycle # TODO PWM driver not calibrated\n")
	assert.Contains(t, out, "not ok 8 - I2C display acks # skip no I2C display attached\n")
	assert.Contains(t, out, "ok 9 # skip no servo attached\n")
	assert.Contains(t, out, "not ok 10 # TODO & SKIP needs rev B board\n")
	assert.NotContains(t, out, "Looks like")

	summary, err := harness.Parse(strings.NewReader(out))
	require.NoError(t, err)
	assert.True(t, summary.Passing(true))
	assert.Equal(t, 10, summary.Total())
	assert.Equal(t, 1, summary.Todo)
}

func TestRunDemoSuiteFailure(t *testing.T) {
	buf := stream.NewBuffer()
	r := tap.New(tap.WithOutput(buf), tap.WithFailureOutput(buf))

	assert.False(t, runDemoSuite(r, demoOptions{fail: true}))

	out := buf.String()
	assert.Contains(t, out, "not ok 6 - A2 is pulled high\n")
	assert.Contains(t, out, "#         got: 0\n#    expected: 1023\n")
	assert.Contains(t, out, "# Looks like you failed 1 test of 10.\n")
}

func TestRunDemoSuiteBail(t *testing.T) {
	buf := stream.NewBuffer()
	r := tap.New(tap.WithOutput(buf), tap.WithFailureOutput(buf))

	assert.False(t, runDemoSuite(r, demoOptions{bail: true}))

	out := buf.String()
	assert.Contains(t, out, "Bail out! watchdog reset\n")
	assert.NotContains(t, out, "ok 9")
	assert.Equal(t, tap.Bailed, r.Phase())
}

func TestWriteDefaultConfig(t *testing.T) {
	dir := t.TempDir()

	path, err := writeDefaultConfig(dir, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "arduinotap.yaml"), path)

	cfg, err := config.FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.True(t, cfg.IsDefault())

	_, err = writeDefaultConfig(dir, false)
	assert.ErrorContains(t, err, "already exists")

	_, err = writeDefaultConfig(dir, true)
	assert.NoError(t, err)
}

func TestExitError(t *testing.T) {
	assert.Nil(t, exitCode(ExitSuccess))

	err := exitCode(ExitTestFailure)
	require.Error(t, err)
	assert.Equal(t, "exit status 1", err.Error())

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitTestFailure, exitErr.Code)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCaptureRechecksOnWrite(t *testing.T) {
	dir := t.TempDir()
	capture := filepath.Join(dir, "blink.tap")
	require.NoError(t, os.WriteFile(capture, []byte("1..1\nok 1 - boot\n"), 0644))

	out := &syncBuffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)

	cfg := jsonConfig()
	cfg.WatchDebounce = 20

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- watchCapture(ctx, cmd, capture, cfg)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"boot"`)
	}, 5*time.Second, 10*time.Millisecond)
	assert.NotContains(t, out.String(), `"LED on"`)

	require.NoError(t, os.WriteFile(capture, []byte("1..1\nnot ok 1 - LED on\n"), 0644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"LED on"`)
	}, 5*time.Second, 10*time.Millisecond)

	// Writes to other files in the directory are ignored.
	checks := strings.Count(out.String(), `"runId"`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.tap"), []byte("ok 1\n"), 0644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, checks, strings.Count(out.String(), `"runId"`))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)

	versionShortFlag = true
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, version+"\n", out.String())

	out.Reset()
	versionShortFlag = false
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "arduinotap "+version+" (built "+buildTime)
	assert.Contains(t, out.String(), "TAP version 13")
}
