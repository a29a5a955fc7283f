package indicators

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/econreport/internal/fred"
)

// CacheKey is the cache key under which indicator summaries are stored.
const CacheKey = "economic_indicators"

// maxErrorLength truncates upstream error messages in logs.
const maxErrorLength = 100

// SeriesSource returns observations of a series from start on.
type SeriesSource interface {
	Series(ctx context.Context, seriesID string, start time.Time) (fred.Series, error)
}

// Cache is the subset of the cache store the fetcher relies on.
type Cache interface {
	Get(key string, dst any) bool
	Set(key string, payload any)
}

// Summary is the latest reading of an indicator.
type Summary struct {
	Current float64 `json:"current"`
	Change  float64 `json:"change"`
	Date    string  `json:"date"`
	Section string  `json:"section"`
}

// Data is the result of a full fetch.
type Data struct {
	Timestamp string             `json:"timestamp"`
	Economic  map[string]Summary `json:"economic"`
}

// Fetcher summarizes the catalog's indicators, consulting the cache first.
type Fetcher struct {
	source  SeriesSource
	cache   Cache
	catalog []Indicator
	logger  zerolog.Logger
	now     func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithCache enables caching of the summaries under CacheKey.
func WithCache(c Cache) Option {
	return func(f *Fetcher) { f.cache = c }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// WithCatalog replaces the default catalog.
func WithCatalog(catalog []Indicator) Option {
	return func(f *Fetcher) { f.catalog = catalog }
}

// WithClock replaces time.Now for the Data timestamp.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// NewFetcher creates a fetcher over source.
func NewFetcher(source SeriesSource, opts ...Option) *Fetcher {
	f := &Fetcher{
		source:  source,
		catalog: Catalog(),
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchIndicators returns a summary per indicator name. Indicators that fail
// to fetch or have no observations are logged and left out. Only context
// cancellation is returned as an error.
func (f *Fetcher) FetchIndicators(ctx context.Context) (map[string]Summary, error) {
	if f.cache != nil {
		var cached map[string]Summary
		if f.cache.Get(CacheKey, &cached) && len(cached) > 0 {
			return cached, nil
		}
	}

	economic := make(map[string]Summary, len(f.catalog))
	for _, ind := range f.catalog {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		series, err := f.source.Series(ctx, ind.SeriesID, time.Time{})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			f.logger.Error().
				Str("series_id", ind.SeriesID).
				Str("indicator", ind.Name).
				Str("error", truncate(err.Error(), maxErrorLength)).
				Msg("error fetching indicator")
			continue
		}

		summary, ok := Summarize(series, ind.Section)
		if !ok {
			f.logger.Warn().Str("series_id", ind.SeriesID).Msg("indicator has no observations")
			continue
		}
		economic[ind.Name] = summary
		f.logger.Info().Str("indicator", ind.Name).Msg("fetched indicator")
	}

	if f.cache != nil && len(economic) > 0 {
		f.cache.Set(CacheKey, economic)
	}
	return economic, nil
}

// FetchAll fetches the indicators and stamps the result with the current time.
func (f *Fetcher) FetchAll(ctx context.Context) (Data, error) {
	economic, err := f.FetchIndicators(ctx)
	if err != nil {
		return Data{}, err
	}
	return Data{
		Timestamp: f.now().Format("2006-01-02T15:04:05.000000"),
		Economic:  economic,
	}, nil
}

// Summarize reduces a series to its latest value and the change from the
// previous observation, both rounded to two decimals.
func Summarize(series fred.Series, section string) (Summary, bool) {
	last, ok := series.Last()
	if !ok {
		return Summary{}, false
	}
	prev, _ := series.Previous()
	return Summary{
		Current: round2(last.Value),
		Change:  round2(last.Value - prev.Value),
		Date:    last.Date.Format(fred.DateLayout),
		Section: section,
	}, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
