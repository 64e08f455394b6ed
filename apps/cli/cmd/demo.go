package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/abdul-hamid-achik/arduinotap/packages/core/config"
	"github.com/abdul-hamid-achik/arduinotap/packages/stream"
	"github.com/abdul-hamid-achik/arduinotap/packages/tap"
	"github.com/spf13/cobra"
)

var (
	demoBaudFlag    int
	demoFailFlag    bool
	demoBailFlag    bool
	demoYAMLFlag    bool
	demoNoColorFlag bool
	demoConfigFlag  string
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a sample firmware suite on the host",
	Long: `Run a small suite against a simulated board and print its TAP.

The output is what the same suite would print over a serial port. With
--baud the output is throttled to that line rate, 64 bytes at a time,
the way a UART transmit buffer drains.

Examples:
  arduinotap demo
  arduinotap demo --baud 9600
  arduinotap demo --fail --yaml
  arduinotap demo | arduinotap check -`,
	Args: cobra.NoArgs,
	RunE: demoCommand,
}

func init() {
	demoCmd.Flags().IntVar(&demoBaudFlag, "baud", getEnvInt("ARDUINOTAP_BAUD", 0), "Throttle output to a serial line rate (0 = unthrottled)")
	demoCmd.Flags().BoolVar(&demoFailFlag, "fail", false, "Include a failing assertion")
	demoCmd.Flags().BoolVar(&demoBailFlag, "bail", false, "Bail out before the suite finishes")
	demoCmd.Flags().BoolVar(&demoYAMLFlag, "yaml", false, "Attach YAML diagnostics to failures")
	demoCmd.Flags().BoolVar(&demoNoColorFlag, "no-color", getEnvBool("ARDUINOTAP_NO_COLOR", false) || os.Getenv("NO_COLOR") != "", "Disable colored output")
	demoCmd.Flags().StringVar(&demoConfigFlag, "config", "", "Path to config file")
}

func demoCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(demoConfigFlag)
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}
	flags := &config.Config{Baud: demoBaudFlag}
	if demoYAMLFlag {
		flags.YAMLDiagnostics = config.BoolPtr(true)
	}
	if demoNoColorFlag {
		flags.NoColor = config.BoolPtr(true)
	}
	cfg = cfg.Merge(flags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink stream.Stream = stream.NewWriter(cmd.OutOrStdout())
	if cfg.Baud > 0 {
		sink = stream.NewSerial(ctx, cmd.OutOrStdout(), cfg.Baud)
	}
	if !cfg.GetNoColor() {
		sink = stream.Colorize(sink)
	}

	r := tap.New(
		tap.WithOutput(sink),
		tap.WithFailureOutput(sink),
		tap.WithVersionHeader(cfg.GetTAPVersion()),
		tap.WithYAMLDiagnostics(cfg.GetYAMLDiagnostics()),
	)
	passing := runDemoSuite(r, demoOptions{fail: demoFailFlag, bail: demoBailFlag})
	if err := r.Err(); err != nil {
		return &ExitError{Code: ExitTestFailure, Err: err}
	}
	if !passing {
		return exitCode(ExitTestFailure)
	}
	return nil
}
