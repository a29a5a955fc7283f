// Package engine runs the weekly report pipeline: fetch indicators, render
// charts and HTML, and deliver the email.
package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/econreport/internal/indicators"
	"github.com/rshade/econreport/internal/mailer"
	"github.com/rshade/econreport/internal/report"
)

// Pipeline errors.
var (
	ErrNoIndicators = errors.New("no economic data retrieved")
	ErrNoSender     = errors.New("no mail sender configured")
)

// IndicatorFetcher returns the indicator summaries for the report.
type IndicatorFetcher interface {
	FetchAll(ctx context.Context) (indicators.Data, error)
}

// ChartGenerator returns base64 PNG charts keyed by name.
type ChartGenerator interface {
	Generate(ctx context.Context) (map[string]string, error)
}

// Options are the report and envelope settings.
type Options struct {
	Title   string
	Subject string
	From    string
	To      []string
}

// Engine wires the pipeline steps together.
type Engine struct {
	fetcher IndicatorFetcher
	charts  ChartGenerator
	sender  mailer.Sender
	opts    Options
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates an engine. sender may be nil when only Preview is used.
func New(fetcher IndicatorFetcher, charts ChartGenerator, sender mailer.Sender, opts Options, logger zerolog.Logger) *Engine {
	return &Engine{
		fetcher: fetcher,
		charts:  charts,
		sender:  sender,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces time.Now for the report date.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Run fetches, renders and sends the report.
func (e *Engine) Run(ctx context.Context) error {
	if e.sender == nil {
		return ErrNoSender
	}

	var buf bytes.Buffer
	charts, err := e.build(ctx, &buf, report.ContentIDs)
	if err != nil {
		return err
	}

	e.logger.Info().Str("step", "3/3").Msg("sending email report")
	msg := mailer.Message{
		Subject: e.opts.Subject,
		From:    e.opts.From,
		To:      e.opts.To,
		HTML:    buf.String(),
		Inline:  e.inlineImages(charts),
	}
	if err = e.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	e.logger.Info().Msg("weekly report completed successfully")
	return nil
}

// Preview renders the report with embedded data URIs and writes it to w.
func (e *Engine) Preview(ctx context.Context, w io.Writer) error {
	_, err := e.build(ctx, w, report.InlineData)
	return err
}

func (e *Engine) build(ctx context.Context, w io.Writer, mode report.ImageMode) (map[string]string, error) {
	e.logger.Info().Str("step", "1/3").Msg("fetching economic data")
	data, err := e.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching indicators: %w", err)
	}
	if len(data.Economic) == 0 {
		return nil, ErrNoIndicators
	}
	e.logger.Info().Int("indicators", len(data.Economic)).Msg("fetched indicators")

	e.logger.Info().Str("step", "2/3").Msg("generating HTML report")
	charts, err := e.charts.Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("generating charts: %w", err)
	}

	in := report.Input{
		Title:    e.opts.Title,
		Date:     e.now(),
		Economic: data.Economic,
		Charts:   charts,
	}
	if err = report.Render(w, in, mode); err != nil {
		return nil, err
	}
	e.logger.Info().Int("charts", len(charts)).Msg("report generated")
	return charts, nil
}

// inlineImages decodes charts into MIME inline parts, sorted by name.
// Charts that are not valid base64 are logged and skipped.
func (e *Engine) inlineImages(charts map[string]string) []mailer.InlineImage {
	names := make([]string, 0, len(charts))
	for name := range charts {
		names = append(names, name)
	}
	sort.Strings(names)

	images := make([]mailer.InlineImage, 0, len(names))
	for _, name := range names {
		data, err := base64.StdEncoding.DecodeString(charts[name])
		if err != nil {
			e.logger.Warn().Str("chart", name).Err(err).Msg("skipping chart with invalid encoding")
			continue
		}
		images = append(images, mailer.InlineImage{ContentID: report.ContentID(name), Data: data})
	}
	return images
}
