package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/econreport/internal/indicators"
	"github.com/rshade/econreport/internal/mailer"
)

type fakeFetcher struct {
	data indicators.Data
	err  error
}

func (f fakeFetcher) FetchAll(context.Context) (indicators.Data, error) {
	return f.data, f.err
}

type fakeCharts struct {
	charts map[string]string
	err    error
}

func (f fakeCharts) Generate(context.Context) (map[string]string, error) {
	return f.charts, f.err
}

type fakeSender struct {
	sent []mailer.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func testData() indicators.Data {
	return indicators.Data{Economic: map[string]indicators.Summary{
		"Unemployment Rate": {Current: 3.9, Change: 0.2, Date: "2024-02-01", Section: indicators.SectionLabor},
	}}
}

func testCharts() map[string]string {
	return map[string]string{
		"Unemployment Rate": base64.StdEncoding.EncodeToString([]byte("png-1")),
		"CPI (Inflation)":   base64.StdEncoding.EncodeToString([]byte("png-2")),
		"Broken":            "!!!not base64",
	}
}

func testOptions() Options {
	return Options{
		Title:   "Weekly Economic Report",
		Subject: "Weekly Economic Report",
		From:    "me@example.com",
		To:      []string{"me@example.com"},
	}
}

func TestEngine_Run(t *testing.T) {
	sender := &fakeSender{}
	eng := New(fakeFetcher{data: testData()}, fakeCharts{charts: testCharts()}, sender, testOptions(), zerolog.Nop()).
		WithClock(func() time.Time { return time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC) })

	require.NoError(t, eng.Run(context.Background()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "Weekly Economic Report", msg.Subject)
	assert.Equal(t, []string{"me@example.com"}, msg.To)
	assert.Contains(t, msg.HTML, "cid:Unemployment_Rate")
	assert.Contains(t, msg.HTML, "March 04, 2024")
	assert.NotContains(t, msg.HTML, "data:image/png")

	require.Len(t, msg.Inline, 2, "invalid chart skipped")
	assert.Equal(t, "CPI_Inflation", msg.Inline[0].ContentID)
	assert.Equal(t, []byte("png-2"), msg.Inline[0].Data)
	assert.Equal(t, "Unemployment_Rate", msg.Inline[1].ContentID)
}

func TestEngine_RunFailures(t *testing.T) {
	tests := []struct {
		name    string
		fetcher fakeFetcher
		charts  fakeCharts
		sendErr error
		wantErr error
	}{
		{
			name:    "no indicators",
			fetcher: fakeFetcher{data: indicators.Data{}},
			wantErr: ErrNoIndicators,
		},
		{
			name:    "fetch cancelled",
			fetcher: fakeFetcher{err: context.Canceled},
			wantErr: context.Canceled,
		},
		{
			name:    "charts cancelled",
			fetcher: fakeFetcher{data: testData()},
			charts:  fakeCharts{err: context.DeadlineExceeded},
			wantErr: context.DeadlineExceeded,
		},
		{
			name:    "send fails",
			fetcher: fakeFetcher{data: testData()},
			charts:  fakeCharts{charts: testCharts()},
			sendErr: errors.New("535 authentication failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{err: tt.sendErr}
			err := New(tt.fetcher, tt.charts, sender, testOptions(), zerolog.Nop()).Run(context.Background())
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, sender.sent)
			}
		})
	}

	t.Run("no sender", func(t *testing.T) {
		err := New(fakeFetcher{data: testData()}, fakeCharts{}, nil, testOptions(), zerolog.Nop()).Run(context.Background())
		assert.ErrorIs(t, err, ErrNoSender)
	})
}

func TestEngine_Preview(t *testing.T) {
	var buf bytes.Buffer
	eng := New(fakeFetcher{data: testData()}, fakeCharts{charts: testCharts()}, nil, testOptions(), zerolog.Nop())
	require.NoError(t, eng.Preview(context.Background(), &buf))
	assert.Contains(t, buf.String(), "data:image/png;base64,")
	assert.Contains(t, buf.String(), "Unemployment Rate")
}
