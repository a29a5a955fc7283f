package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newFetchCmd(a *app) *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch indicator summaries and print them as JSON",
		Long: `Fetch the current value and change of every tracked indicator and print
the result as JSON. Uses the same cache entry as the run command.`,
		Example: `  econreport fetch
  econreport fetch --no-cache | jq '.economic.UNRATE'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runFetch(cmd, !noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the cache and always fetch from FRED")
	return cmd
}

func (a *app) runFetch(cmd *cobra.Command, useCache bool) error {
	if err := a.cfg.ValidateFetch(); err != nil {
		return err
	}

	p, err := a.newPipeline(useCache)
	if err != nil {
		return err
	}

	data, err := p.fetcher.FetchAll(cmd.Context())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
