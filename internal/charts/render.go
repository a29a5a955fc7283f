package charts

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/rshade/econreport/internal/fred"
)

// Chart geometry and styling.
const (
	chartWidth       = 800
	chartHeight      = 400
	lineWidth        = 2
	titleFontSize    = 14
	tickLabelLayout  = "Jan '06"
	tickMonthStep    = 4
	minPointsPerLine = 2
)

// ErrNotEnoughData is returned when no line has enough points to draw.
var ErrNotEnoughData = errors.New("not enough data to draw a chart")

// Plot is a line with its data.
type Plot struct {
	Label  string
	Color  string
	Points []fred.Observation
}

// RenderPNG draws plots on one transparent chart. Titled charts also get a
// legend. Plots with fewer than two points are skipped.
func RenderPNG(title string, plots []Plot) ([]byte, error) {
	var series []chart.Series
	var first, last time.Time
	for _, p := range plots {
		if len(p.Points) < minPointsPerLine {
			continue
		}
		xs := make([]time.Time, len(p.Points))
		ys := make([]float64, len(p.Points))
		for i, o := range p.Points {
			xs[i] = o.Date
			ys[i] = o.Value
		}
		if first.IsZero() || xs[0].Before(first) {
			first = xs[0]
		}
		if xs[len(xs)-1].After(last) {
			last = xs[len(xs)-1]
		}
		series = append(series, chart.TimeSeries{
			Name:    p.Label,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: parseColor(p.Color),
				StrokeWidth: lineWidth,
			},
		})
	}
	if len(series) == 0 {
		return nil, ErrNotEnoughData
	}

	transparent := chart.Style{FillColor: drawing.ColorTransparent}
	graph := chart.Chart{
		Width:      chartWidth,
		Height:     chartHeight,
		Background: transparent,
		Canvas:     transparent,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat(tickLabelLayout),
			Ticks:          monthTicks(first, last),
		},
		Series: series,
	}
	if title != "" {
		graph.Title = title
		graph.TitleStyle = chart.Style{FontSize: titleFontSize}
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderBase64 is RenderPNG encoded as standard base64.
func RenderBase64(title string, plots []Plot) (string, error) {
	png, err := RenderPNG(title, plots)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// monthTicks places a tick on the first of every fourth month in [first, last].
// Tick values use the same encoding as chart.TimeSeries x values.
func monthTicks(first, last time.Time) []chart.Tick {
	start := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, first.Location())
	if start.Before(first) {
		start = start.AddDate(0, 1, 0)
	}

	var ticks []chart.Tick
	for t := start; !t.After(last); t = t.AddDate(0, tickMonthStep, 0) {
		ticks = append(ticks, chart.Tick{
			Value: chart.TimeToFloat64(t),
			Label: t.Format(tickLabelLayout),
		})
	}
	if len(ticks) < minPointsPerLine {
		// Let the axis choose its own ticks for short ranges.
		return nil
	}
	return ticks
}

func parseColor(hex string) drawing.Color {
	hex = strings.TrimPrefix(hex, "#")
	if hex == "" {
		return drawing.ColorBlack
	}
	return drawing.ColorFromHex(hex)
}
