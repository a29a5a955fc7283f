package cli

import (
	"github.com/rshade/econreport/internal/charts"
	"github.com/rshade/econreport/internal/engine"
	"github.com/rshade/econreport/internal/engine/cache"
	"github.com/rshade/econreport/internal/fred"
	"github.com/rshade/econreport/internal/indicators"
	"github.com/rshade/econreport/internal/logging"
	"github.com/rshade/econreport/internal/mailer"
)

// openStore opens the configured cache directory.
func (a *app) openStore() (*cache.Store, error) {
	freshness, err := a.cfg.CacheFreshness()
	if err != nil {
		return nil, err
	}
	return cache.New(a.cfg.Cache.Directory, freshness,
		cache.WithLogger(a.logger))
}

// pipeline holds the fetch and chart stages sharing one FRED client and cache.
type pipeline struct {
	fetcher   *indicators.Fetcher
	generator *charts.Generator
}

// newPipeline builds the fetch and chart stages. useCache=false, or a
// disabled cache in config, makes every stage hit the network.
func (a *app) newPipeline(useCache bool) (*pipeline, error) {
	client, err := fred.NewClient(a.cfg.FRED.APIKey,
		fred.WithBaseURL(a.cfg.FRED.BaseURL),
		fred.WithTimeout(a.cfg.FRED.Timeout))
	if err != nil {
		return nil, err
	}

	fetchOpts := []indicators.Option{
		indicators.WithLogger(logging.ComponentLogger(a.logger, "indicators")),
	}
	chartOpts := []charts.Option{
		charts.WithLogger(logging.ComponentLogger(a.logger, "charts")),
		charts.WithWindowDays(a.cfg.FRED.WindowDays),
		charts.WithConcurrency(a.cfg.FRED.Concurrency),
	}

	if useCache && a.cfg.Cache.Enabled {
		store, storeErr := a.openStore()
		if storeErr != nil {
			return nil, storeErr
		}
		fetchOpts = append(fetchOpts, indicators.WithCache(store))
		chartOpts = append(chartOpts, charts.WithCache(store))
	} else {
		a.logger.Debug().Msg("cache disabled for this run")
	}

	return &pipeline{
		fetcher:   indicators.NewFetcher(client, fetchOpts...),
		generator: charts.NewGenerator(client, chartOpts...),
	}, nil
}

// newEngine wires the pipeline to the report renderer. sender may be nil for
// previews.
func (a *app) newEngine(p *pipeline, sender mailer.Sender) *engine.Engine {
	return engine.New(p.fetcher, p.generator, sender, engine.Options{
		Title:   a.cfg.Report.Title,
		Subject: a.cfg.SMTP.Subject,
		From:    a.cfg.Sender(),
		To:      a.cfg.Recipients(),
	}, logging.ComponentLogger(a.logger, "engine"))
}

// newMailer builds the SMTP sender from config.
func (a *app) newMailer() (*mailer.Mailer, error) {
	return mailer.New(mailer.Config{
		Host:     a.cfg.SMTP.Host,
		Port:     a.cfg.SMTP.Port,
		Username: a.cfg.SMTP.Username,
		Password: a.cfg.SMTP.Password,
	}, logging.ComponentLogger(a.logger, "mailer"))
}
