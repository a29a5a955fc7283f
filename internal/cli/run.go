package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/econreport/internal/logging"
)

func newRunCmd(a *app) *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch indicators, render charts and email the report",
		Long: `Fetch the latest economic indicators from FRED, render the charts, build
the HTML report and send it over SMTP.

Indicator data and charts are read from the cache when a fresh entry exists
and written back after a successful fetch. Pass --no-cache for scheduled runs
that must always see current data.`,
		Example: `  econreport run
  econreport run --no-cache
  econreport run --cache-ttl 6`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runReport(cmd, !noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the cache and always fetch from FRED")
	return cmd
}

func (a *app) runReport(cmd *cobra.Command, useCache bool) error {
	if err := a.cfg.ValidateSend(); err != nil {
		return err
	}

	p, err := a.newPipeline(useCache)
	if err != nil {
		return err
	}
	sender, err := a.newMailer()
	if err != nil {
		return err
	}

	if err = a.newEngine(p, sender).Run(cmd.Context()); err != nil {
		return err
	}

	log := logging.ComponentLogger(*logging.FromContext(cmd.Context()), "cli")
	log.Info().
		Strs("to", a.cfg.Recipients()).
		Msg("report sent")
	cmd.Printf("Report sent to %d recipient(s)\n", len(a.cfg.Recipients()))
	return nil
}
