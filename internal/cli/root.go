package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/econreport/internal/config"
	"github.com/rshade/econreport/internal/logging"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	lookupEnv func(string) (string, bool)
	cfg       *config.Config
	logger    zerolog.Logger
	logResult *logging.LogPathResult
}

// NewRootCmd creates the root Cobra command for the econreport CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit env lookup for testability.
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	return newRootCmd(&app{lookupEnv: lookupEnv, logger: zerolog.Nop()}, ver)
}

func newRootCmd(a *app, ver string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "econreport",
		Short:         "Weekly economic report generator",
		Long:          "econreport fetches economic indicators from FRED, charts them, and emails an HTML report.",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadConfig(cmd); err != nil {
				return err
			}
			a.setupLogging(cmd)
			return nil
		},
	}

	cmd.PersistentFlags().String("config", "", "path to the YAML config file (default ./econreport.yaml)")
	cmd.PersistentFlags().String("env-file", config.DefaultDotEnvFile, "path to a .env file with credentials")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("cache-dir", "", "cache directory (overrides config file and env var)")
	cmd.PersistentFlags().String("cache-ttl", "", "cache freshness as hours or a duration, e.g. 24 or 36h")

	cmd.AddCommand(
		newRunCmd(a),
		newFetchCmd(a),
		newPreviewCmd(a),
		newCacheCmd(a),
	)
	a.closeLogAfter(cmd)
	return cmd
}

const rootCmdExample = `  # Fetch, render and email the weekly report
  econreport run

  # Scheduled runs should always hit the network
  econreport run --no-cache

  # Print the indicator data as JSON
  econreport fetch

  # Render the report to a file for a browser preview
  econreport preview --out report.html

  # Inspect or clear the cache
  econreport cache list
  econreport cache clear all_charts`

// loadConfig reads .env, the config file and the environment, then applies
// flag overrides.
func (a *app) loadConfig(cmd *cobra.Command) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		cmd.PrintErrf("Warning: %v\n", err)
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, a.lookupEnv)
	if err != nil {
		return err
	}

	if dir, _ := cmd.Flags().GetString("cache-dir"); dir != "" {
		cfg.Cache.Directory = dir
	}
	if ttl, _ := cmd.Flags().GetString("cache-ttl"); ttl != "" {
		cfg.Cache.TTL = ttl
	}
	if err = cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	return nil
}

// closeLogAfter wraps every RunE below cmd so the log file is closed whether
// the command succeeds or fails. Cobra skips post-run hooks on error.
func (a *app) closeLogAfter(cmd *cobra.Command) {
	for _, sub := range cmd.Commands() {
		a.closeLogAfter(sub)
	}
	if cmd.RunE == nil {
		return
	}
	runE := cmd.RunE
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		defer a.closeLog()
		return runE(cmd, args)
	}
}

func (a *app) closeLog() {
	if a.logResult == nil {
		return
	}
	if err := a.logResult.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: closing log file: %v\n", err)
	}
	a.logResult = nil
}
