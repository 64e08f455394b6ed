package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/arduinotap/packages/core/config"
	"github.com/abdul-hamid-achik/arduinotap/packages/harness"
	"github.com/abdul-hamid-achik/arduinotap/packages/output"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var (
	checkOutputFlag     string
	checkOutputFileFlag string
	checkConfigFlag     string
	checkStrictFlag     bool
	checkFailTodoPass   bool
	checkNoColorFlag    bool
	checkVerboseFlag    bool
	checkWatchFlag      bool
)

var checkCmd = &cobra.Command{
	Use:   "check [file|-]",
	Short: "Judge a captured TAP stream",
	Long: `Parse a TAP stream captured from a board and report the result.

The stream is read from the named file, or from stdin when the file is
omitted or "-". The exit code is 0 when the run passed, 1 when a test
failed or the run bailed out, and 2 when the stream could not be read.

Examples:
  arduinotap check capture.tap
  pio device monitor | arduinotap check -
  arduinotap check capture.tap -o junit --output-file report.xml
  arduinotap check capture.tap --strict
  arduinotap check capture.tap --watch

Environment variables:
  ARDUINOTAP_OUTPUT          Output format (console, json, junit, tap)
  ARDUINOTAP_OUTPUT_FILE     Write output to file
  ARDUINOTAP_STRICT          Fail on a missing or mismatched plan
  ARDUINOTAP_FAIL_TODO_PASS  Fail when a TODO test passes
  ARDUINOTAP_NO_COLOR        Disable colored output
  NO_COLOR                   Disable colored output (standard)`,
	Args: cobra.MaximumNArgs(1),
	RunE: checkCommand,
}

func init() {
	checkCmd.Flags().StringVarP(&checkOutputFlag, "output", "o", getEnvString("ARDUINOTAP_OUTPUT", "console"), "Output format (console, json, junit, tap)")
	checkCmd.Flags().StringVar(&checkOutputFileFlag, "output-file", getEnvString("ARDUINOTAP_OUTPUT_FILE", ""), "Write output to file instead of stdout")
	checkCmd.Flags().StringVar(&checkConfigFlag, "config", "", "Path to config file")
	checkCmd.Flags().BoolVar(&checkStrictFlag, "strict", getEnvBool("ARDUINOTAP_STRICT", false), "Treat a missing or mismatched plan as a failure")
	checkCmd.Flags().BoolVar(&checkFailTodoPass, "fail-todo-pass", getEnvBool("ARDUINOTAP_FAIL_TODO_PASS", false), "Fail the run when a TODO test passes")
	checkCmd.Flags().BoolVar(&checkNoColorFlag, "no-color", getEnvBool("ARDUINOTAP_NO_COLOR", false) || os.Getenv("NO_COLOR") != "", "Disable colored output")
	checkCmd.Flags().BoolVarP(&checkVerboseFlag, "verbose", "v", false, "Show numbering gaps and every diagnostic")
	checkCmd.Flags().BoolVarP(&checkWatchFlag, "watch", "w", false, "Re-check the file whenever it changes")
}

func checkCommand(cmd *cobra.Command, args []string) error {
	cfg, err := checkConfig(cmd)
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}

	source := "-"
	if len(args) == 1 {
		source = args[0]
	}

	if checkWatchFlag {
		if source == "-" {
			return &ExitError{Code: ExitUsageError, Err: fmt.Errorf("--watch needs a file, not stdin")}
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchCapture(ctx, cmd, source, cfg)
	}

	code, err := checkSource(cmd, source, cfg)
	if err != nil {
		return &ExitError{Code: code, Err: err}
	}
	return exitCode(code)
}

// checkConfig loads the config file and lays explicitly set flags over it.
func checkConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(checkConfigFlag)
	if err != nil {
		return nil, err
	}

	flags := &config.Config{}
	if cmd.Flags().Changed("output") || os.Getenv("ARDUINOTAP_OUTPUT") != "" {
		flags.Output = checkOutputFlag
	}
	if checkOutputFileFlag != "" {
		flags.OutputFile = checkOutputFileFlag
	}
	if checkStrictFlag {
		flags.Strict = config.BoolPtr(true)
	}
	if checkFailTodoPass {
		flags.AllowTodoPass = config.BoolPtr(false)
	}
	if checkNoColorFlag {
		flags.NoColor = config.BoolPtr(true)
	}
	return cfg.Merge(flags), nil
}

// checkSource opens a capture file (or stdin for "-") and checks it.
func checkSource(cmd *cobra.Command, source string, cfg *config.Config) (int, error) {
	in := cmd.InOrStdin()
	name := "stdin"
	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			return ExitParseError, fmt.Errorf("failed to open %s: %w", source, err)
		}
		defer f.Close()
		in = f
		name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}

	out := cmd.OutOrStdout()
	if cfg.OutputFile != "" {
		f, err := os.Create(cfg.OutputFile)
		if err != nil {
			return ExitConfigError, fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return checkStream(in, out, name, cfg)
}

// checkStream parses one TAP stream, hands the summary to the configured
// formatter and returns the exit code the run deserves.
func checkStream(in io.Reader, out io.Writer, name string, cfg *config.Config) (int, error) {
	start := time.Now()

	formatter, err := output.New(cfg.Output, output.Options{
		Writer:  out,
		Verbose: checkVerboseFlag,
		NoColor: cfg.GetNoColor(),
		Strict:  cfg.GetStrict(),
		Name:    name,

		FailTodoPass: !cfg.GetAllowTodoPass(),
	})
	if err != nil {
		return ExitConfigError, err
	}

	summary, err := harness.Parse(in)
	if err != nil {
		formatter.FormatError(err)
		return ExitParseError, err
	}

	formatter.FormatHeader(version)
	formatter.FormatSummary(summary)
	if f, ok := formatter.(output.Flushable); ok {
		if err := f.Flush(time.Since(start)); err != nil {
			return ExitTestFailure, fmt.Errorf("failed to write output: %w", err)
		}
	}

	if !summary.Judge(cfg.GetStrict(), cfg.GetAllowTodoPass()) {
		return ExitTestFailure, nil
	}
	return ExitSuccess, nil
}

// watchCapture checks path once, then again every time it is written.
// Serial monitors append line by line, so events are debounced. Checks
// run one at a time on the calling goroutine.
func watchCapture(ctx context.Context, cmd *cobra.Command, path string, cfg *config.Config) error {
	logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return &ExitError{Code: ExitUsageError, Err: err}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors and loggers often replace the file.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	recheck := func() {
		if _, err := checkSource(cmd, path, cfg); err != nil {
			logger.Printf("warning: %v", err)
		}
	}
	recheck()
	logger.Printf("Watching %s for changes (Ctrl+C to stop)", path)

	debounce := time.Duration(cfg.WatchDebounce) * time.Millisecond
	changed := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			logger.Printf("%s changed, re-checking", path)
			recheck()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != absPath || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Printf("watcher error: %v", err)
		}
	}
}
