// Package fred is a small client for the FRED economic data API.
package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the layout FRED uses for observation dates.
	DateLayout = "2006-01-02"

	defaultBaseURL = "https://api.stlouisfed.org/fred"
	defaultTimeout = 30 * time.Second
	missingValue   = "."
	maxErrorBody   = 512
)

// ErrEmptyAPIKey is returned by NewClient when no API key is given.
var ErrEmptyAPIKey = errors.New("fred: API key cannot be empty")

// APIError is a non-200 response from FRED.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fred: HTTP %d: %s", e.StatusCode, e.Message)
}

// Observation is one dated value of a series.
type Observation struct {
	Date  time.Time
	Value float64
}

// Series is a time-ordered list of observations.
type Series struct {
	ID           string
	Observations []Observation
}

// Len returns the number of observations.
func (s Series) Len() int {
	return len(s.Observations)
}

// Last returns the most recent observation.
func (s Series) Last() (Observation, bool) {
	if len(s.Observations) == 0 {
		return Observation{}, false
	}
	return s.Observations[len(s.Observations)-1], true
}

// Previous returns the observation before the most recent one, or the most
// recent one when there is only a single observation.
func (s Series) Previous() (Observation, bool) {
	switch len(s.Observations) {
	case 0:
		return Observation{}, false
	case 1:
		return s.Observations[0], true
	default:
		return s.Observations[len(s.Observations)-2], true
	}
}

// Client fetches series observations.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a FRED client.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

type errorResponse struct {
	ErrorMessage string `json:"error_message"`
}

// Series fetches observations of seriesID starting at start. A zero start
// fetches the full history. Missing values are skipped.
func (c *Client) Series(ctx context.Context, seriesID string, start time.Time) (Series, error) {
	if seriesID == "" {
		return Series{}, errors.New("fred: series id cannot be empty")
	}

	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	if !start.IsZero() {
		q.Set("observation_start", start.Format(DateLayout))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/series/observations?"+q.Encode(), nil)
	if err != nil {
		return Series{}, fmt.Errorf("fred: building request for %s: %w", seriesID, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Series{}, fmt.Errorf("fred: fetching %s: %w", seriesID, ctxErr)
		}
		return Series{}, fmt.Errorf("fred: fetching %s: %w", seriesID, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Series{}, newAPIError(resp)
	}

	var body observationsResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Series{}, fmt.Errorf("fred: decoding %s: %w", seriesID, err)
	}

	series := Series{ID: seriesID, Observations: make([]Observation, 0, len(body.Observations))}
	for _, o := range body.Observations {
		if o.Value == missingValue || o.Value == "" {
			continue
		}
		date, dateErr := time.Parse(DateLayout, o.Date)
		if dateErr != nil {
			return Series{}, fmt.Errorf("fred: %s: invalid date %q: %w", seriesID, o.Date, dateErr)
		}
		value, valueErr := strconv.ParseFloat(o.Value, 64)
		if valueErr != nil {
			return Series{}, fmt.Errorf("fred: %s: invalid value %q: %w", seriesID, o.Value, valueErr)
		}
		series.Observations = append(series.Observations, Observation{Date: date, Value: value})
	}

	sort.SliceStable(series.Observations, func(i, j int) bool {
		return series.Observations[i].Date.Before(series.Observations[j].Date)
	})
	return series, nil
}

func newAPIError(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := strings.TrimSpace(string(raw))
	var body errorResponse
	if json.Unmarshal(raw, &body) == nil && body.ErrorMessage != "" {
		msg = body.ErrorMessage
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

// redact strips the API key from transport errors, which embed the URL.
func redact(err error, apiKey string) error {
	msg := err.Error()
	if !strings.Contains(msg, apiKey) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, apiKey, "REDACTED"))
}
