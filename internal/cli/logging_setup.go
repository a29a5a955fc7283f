package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/econreport/internal/logging"
)

// setupLogging configures logging from config, environment, and CLI flags,
// and stores the logger and a run ID in the command context.
func (a *app) setupLogging(cmd *cobra.Command) {
	cfg := logging.Config{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
		Output: cmd.ErrOrStderr(),
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Level = "debug"
		cfg.Format = logging.FormatConsole
		cfg.File = ""
	}

	result := logging.NewLoggerWithPath(cfg)
	a.logResult = &result
	if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	runID := logging.GetOrGenerateRunID(ctx)
	ctx = logging.ContextWithRunID(ctx, runID)

	a.logger = result.Logger.With().Str("run_id", runID).Logger()
	ctx = a.logger.WithContext(ctx)
	cmd.SetContext(ctx)

	log := logging.ComponentLogger(a.logger, "cli")
	log.Debug().Str("command", cmd.Name()).Msg("command started")
}
