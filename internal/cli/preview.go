package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const stdoutPath = "-"

func newPreviewCmd(a *app) *cobra.Command {
	var (
		noCache bool
		out     string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the report to an HTML file without sending it",
		Long: `Render the report with charts embedded as data URIs so it can be opened
directly in a browser. Nothing is emailed.`,
		Example: `  econreport preview
  econreport preview --out /tmp/report.html
  econreport preview --out - > report.html`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPreview(cmd, out, !noCache)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "report.html", `output file, or "-" for stdout`)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the cache and always fetch from FRED")
	return cmd
}

func (a *app) runPreview(cmd *cobra.Command, out string, useCache bool) error {
	if err := a.cfg.ValidateFetch(); err != nil {
		return err
	}

	p, err := a.newPipeline(useCache)
	if err != nil {
		return err
	}
	eng := a.newEngine(p, nil)

	if out == stdoutPath {
		return eng.Preview(cmd.Context(), cmd.OutOrStdout())
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err = eng.Preview(cmd.Context(), f); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	cmd.Printf("Report written to %s\n", out)
	return nil
}
