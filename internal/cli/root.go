// Package cli implements the splunk-search command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/usestring/splunk-mcp/internal/config"
	"github.com/usestring/splunk-mcp/internal/logging"
	"github.com/usestring/splunk-mcp/internal/mcp/tools"
	"github.com/usestring/splunk-mcp/pkg/search"
)

var version = "dev"

// app carries the settings resolved by the root command.
type app struct {
	cfg    *config.Config
	output string
}

// deps builds the tool dependencies for one command run.
func (a *app) deps() (*tools.Deps, error) {
	if a.cfg.SplunkUsername == "" {
		return nil, errors.New("a username is required: set SPLUNK_USERNAME or --username")
	}
	return tools.NewDeps(a.cfg), nil
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == outputJSON || output == outputJSONL {
			errObj := map[string]any{"error": err.Error()}
			var coded *tools.CodedError
			if errors.As(err, &coded) {
				errObj["code"] = coded.Code
				errObj["message"] = coded.Message
			}
			_ = printJSON(os.Stdout, errObj, false)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return exitCode(err)
	}
	return 0
}

// exitCode maps stage failures to distinct codes for scripts.
func exitCode(err error) int {
	switch {
	case errors.Is(err, search.ErrAuthentication):
		return 3
	case errors.Is(err, search.ErrPollTimeout):
		return 4
	case errors.Is(err, search.ErrCancelled):
		return 130
	default:
		return 1
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	var (
		uri      string
		username string
		insecure bool
		timeout  string
		logLevel string
	)

	rootCmd := &cobra.Command{
		Use:           "splunk-search",
		Short:         "Run Splunk searches from the command line",
		Long:          "Runs a Splunk search to completion and prints its records as JSON. Connection settings come from SPLUNK_* environment variables unless overridden by flags.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(a.output); err != nil {
				return err
			}

			// Precedence: flag > env > default
			a.cfg = config.Load()
			if cmd.Flags().Changed("uri") {
				a.cfg.SplunkURI = uri
			}
			if cmd.Flags().Changed("username") {
				a.cfg.SplunkUsername = username
			}
			if cmd.Flags().Changed("insecure") {
				a.cfg.SSLVerify = !insecure
			}
			if cmd.Flags().Changed("timeout") {
				d, err := search.ParseDuration(timeout)
				if err != nil {
					return fmt.Errorf("--timeout: %w", err)
				}
				a.cfg.QueryTimeout = d
			}
			if cmd.Flags().Changed("log-level") {
				a.cfg.LogLevel = logLevel
			}

			slog.SetDefault(slog.New(logging.NewHandler(cmd.ErrOrStderr(), logging.Config{
				Level:  a.cfg.LogLevel,
				Format: a.cfg.LogFormat,
			})))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&uri, "uri", "", "Splunk management URI (default $SPLUNK_URI or https://localhost:8089)")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "Splunk user (default $SPLUNK_USERNAME); the password is read from $SPLUNK_PASSWORD")
	rootCmd.PersistentFlags().BoolVarP(&insecure, "insecure", "k", false, "Skip TLS certificate verification")
	rootCmd.PersistentFlags().StringVar(&timeout, "timeout", "", "Query timeout as DD:HH:MM:SS (default $SPLUNK_QUERY_TIMEOUT or 00:30:00)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default $LOG_LEVEL or info)")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", outputJSON, "Output format (json, jsonl)")

	rootCmd.AddCommand(
		newQueryCmd(a),
		newRelativeCmd(a),
		newDescribeCmd(a),
		newDurationCmd(),
	)

	return rootCmd
}

// writer returns the command's stdout.
func writer(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
