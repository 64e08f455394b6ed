package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/arduinotap/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default arduinotap.yaml",
	Long: `Write a default configuration file in the current directory.

This creates:
  - arduinotap.yaml   - Output format, strictness and serial settings

Examples:
  arduinotap init
  arduinotap init --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile, err := writeDefaultConfig(cwd, forceInit)
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)
	fmt.Fprintf(cmd.OutOrStdout(), "\narduinotap initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'arduinotap demo | arduinotap check -' to see a sample run.\n")
	return nil
}

func writeDefaultConfig(dir string, force bool) (string, error) {
	configFile := filepath.Join(dir, "arduinotap.yaml")
	if !force {
		if _, err := os.Stat(configFile); err == nil {
			return "", fmt.Errorf("file already exists: %s (use --force to overwrite)", configFile)
		}
	}
	if err := config.DefaultConfig().SaveConfig(configFile); err != nil {
		return "", fmt.Errorf("failed to create config file: %w", err)
	}
	return configFile, nil
}
