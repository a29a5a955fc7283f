package charts

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/econreport/internal/fred"
	"github.com/rshade/econreport/internal/indicators"
)

// CacheKey is the cache key under which rendered charts are stored.
const CacheKey = "all_charts"

// Generator defaults.
const (
	DefaultWindowDays  = 730
	DefaultConcurrency = 4
	maxErrorLength     = 100
)

// Generator fetches chart series and renders every chart.
type Generator struct {
	source      indicators.SeriesSource
	cache       indicators.Cache
	logger      zerolog.Logger
	windowDays  int
	concurrency int
	now         func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithCache enables caching of the rendered charts under CacheKey.
func WithCache(c indicators.Cache) Option {
	return func(g *Generator) { g.cache = c }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithWindowDays sets how many days of history each chart shows.
func WithWindowDays(days int) Option {
	return func(g *Generator) {
		if days > 0 {
			g.windowDays = days
		}
	}
}

// WithConcurrency bounds concurrent series fetches.
func WithConcurrency(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// WithClock replaces time.Now for the window start.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a generator over source.
func NewGenerator(source indicators.SeriesSource, opts ...Option) *Generator {
	g := &Generator{
		source:      source,
		logger:      zerolog.Nop(),
		windowDays:  DefaultWindowDays,
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns base64 PNGs keyed by chart name. Charts whose series could
// not be fetched or drawn are logged and left out. Only context cancellation
// is returned as an error.
func (g *Generator) Generate(ctx context.Context) (map[string]string, error) {
	if g.cache != nil {
		var cached map[string]string
		if g.cache.Get(CacheKey, &cached) && len(cached) > 0 {
			return cached, nil
		}
	}

	series, err := g.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	charts := make(map[string]string)
	render := func(name, title string, plots []Plot) {
		encoded, renderErr := RenderBase64(title, plots)
		if renderErr != nil {
			g.logger.Error().
				Str("chart", name).
				Str("error", truncate(renderErr.Error(), maxErrorLength)).
				Msg("error generating chart")
			return
		}
		charts[name] = encoded
		g.logger.Info().Str("chart", name).Msg("chart generated")
	}

	for _, group := range Groups() {
		var plots []Plot
		for _, line := range group.Lines {
			if s, ok := series[line.SeriesID]; ok && s.Len() > 0 {
				plots = append(plots, Plot{Label: line.Label, Color: line.Color, Points: s.Observations})
			}
		}
		if len(plots) > 0 {
			render(group.Name, group.Name, plots)
		}
	}

	for _, ind := range Individuals() {
		if s, ok := series[ind.SeriesID]; ok && s.Len() > 0 {
			render(ind.Name, "", []Plot{{Label: ind.Name, Color: ind.Color, Points: s.Observations}})
		}
	}

	mortgage, okM := series[mortgageSeries]
	t30, ok30 := series[treasury30Series]
	t10, ok10 := series[treasury10Series]
	if okM && ok30 && ok10 && mortgage.Len() > 0 && t30.Len() > 0 && t10.Len() > 0 {
		spreads := Spreads(mortgage, t30, t10)
		render(MortgagePremiumName, mortgagePremiumTitle, []Plot{
			{Label: "Premium over 30Y Treasury", Color: "#e91e63", Points: spreads[0]},
			{Label: "Premium over 10Y Treasury", Color: "#9b59b6", Points: spreads[1]},
		})
	}

	if g.cache != nil && len(charts) > 0 {
		g.cache.Set(CacheKey, charts)
	}
	return charts, nil
}

// fetchAll fetches every chart series concurrently. Failed series are logged
// and missing from the result.
func (g *Generator) fetchAll(ctx context.Context) (map[string]fred.Series, error) {
	start := g.now().AddDate(0, 0, -g.windowDays)

	var mu sync.Mutex
	result := make(map[string]fred.Series)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for _, id := range seriesIDs() {
		id := id
		eg.Go(func() error {
			s, err := g.source.Series(egCtx, id, start)
			if err != nil {
				if ctxErr := egCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				g.logger.Error().
					Str("series_id", id).
					Str("error", truncate(err.Error(), maxErrorLength)).
					Msg("error fetching chart series")
				return nil
			}
			mu.Lock()
			result[id] = s
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
