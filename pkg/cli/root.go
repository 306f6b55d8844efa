// Package cli is the command tree behind cmd/underwrite.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"deal_underwriting/pkg/core/config"
	"deal_underwriting/pkg/core/logging"
	core "deal_underwriting/pkg/core/underwriting"

	"github.com/spf13/cobra"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Workers      int
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       config.Config
	Logger       logging.Logger
	Evaluator    *core.Evaluator
	OutputFormat string
	Workers      int
}

type cliContextKey struct{}

// NewRootCommand creates the root command with global flags and every subcommand.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "underwrite",
		Short: "Underwrite commercial real estate deals",
		Long: "underwrite projects a property's rent, expenses and NOI over the hold, applies\n" +
			"fixed-rate debt service, capitalizes the exit and reports deal returns.\n" +
			"Deal files may be JSON, HJSON or YAML.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "policy file (default: $UNDERWRITING_CONFIG or "+config.DefaultPath+")")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json)")
	pf.IntVar(&opts.Workers, "workers", -1, "concurrent evaluations for compare/sensitivity (-1: use config)")

	cmd.AddCommand(
		NewCheckCmd(),
		NewEvaluateCmd(),
		NewCompareCmd(),
		NewSensitivityCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	path := opts.ConfigPath
	if path == "" {
		path = os.Getenv("UNDERWRITING_CONFIG")
	}
	if path == "" {
		path = config.DefaultPath
	}
	cfg, found, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	// An explicitly named file has to exist.
	if !found && opts.ConfigPath != "" {
		return fmt.Errorf("config file %s not found", opts.ConfigPath)
	}

	// Results go to stdout, so the CLI always logs to stderr.
	logCfg := cfg.Log
	logCfg.Format = "console"
	logCfg.Output = "stderr"
	if opts.LogLevel != "" {
		logCfg.Level = opts.LogLevel
	}
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	logger.Debug("config loaded", logging.String("path", path), logging.Any("found", found))

	evaluator, err := core.NewEvaluator(cfg.Waterfall)
	if err != nil {
		return err
	}

	workers := cfg.Compare.Workers
	if opts.Workers >= 0 {
		workers = opts.Workers
	}

	switch opts.OutputFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q", opts.OutputFormat)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Evaluator:    evaluator,
		OutputFormat: opts.OutputFormat,
		Workers:      workers,
	}))
	return nil
}

// GetCLIContext extracts CLIContext from a command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Execute runs the command tree against os.Args.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
