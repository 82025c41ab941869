// Package main provides the CLI entrypoint for complaintstat.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/complaintstat/internal/config"
	"github.com/verte-zerg/complaintstat/internal/logging"
	"github.com/verte-zerg/complaintstat/internal/model"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
	defaultTop       = 0
	defaultLimit     = 20
)

var (
	configPath string
	logLevel   string
	logFormat  string

	fileCfg config.FileConfig
	logger  = slog.Default()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "complaintstat",
		Short:             "Summarize consumer complaints by product and year",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", defaultLogFormat, "log format (text, json)")

	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// setup loads the config file and builds the logger before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	fileCfg = config.FileConfig{}
	if cmd.Name() != "config" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		fileCfg = loaded
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)

	l, err := logging.New(cmd.ErrOrStderr(), model.LogConfig{Level: logLevel, Format: logFormat})
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# complaintstat configuration
# Uncomment a value to enable it. CLI flags override config values.

[columns]
# date = %q       # Header holding the received date (YYYY-MM-DD)
# product = %q          # Header holding the product name
# company = %q          # Header holding the company name

[report]
# format = "csv"                # Output format: csv or xlsx (default: from extension)
# save = false                  # Save every report run to the history database
# top = %d                       # Limit "show" to the N products with most complaints

[log]
# level = %q                # debug, info, warn, error
# format = %q               # text or json

[store]
# path = %q
`,
		model.DefaultDateColumn,
		model.DefaultProductColumn,
		model.DefaultCompanyColumn,
		defaultTop,
		defaultLogLevel,
		defaultLogFormat,
		config.DefaultDBPath(),
	)
}
