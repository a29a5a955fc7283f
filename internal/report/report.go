// Package report renders the HTML email report.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/econreport/internal/indicators"
)

// DateLayout is how the report date is shown.
const DateLayout = "January 02, 2006"

//go:embed templates/email.html
var templateFS embed.FS

// printer is the locale-aware message printer for number formatting.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

//nolint:gochecknoglobals // Parsed once; funcs that depend on input are rebound per render.
var emailTemplate = template.Must(
	template.New("email.html").Funcs(baseFuncs(nil, InlineData)).ParseFS(templateFS, "templates/email.html"),
)

// ImageMode selects how charts are referenced from the HTML.
type ImageMode int

const (
	// InlineData embeds charts as data: URIs, for previews in a browser.
	InlineData ImageMode = iota

	// ContentIDs references charts as cid: URIs, for MIME related parts.
	ContentIDs
)

// Input is everything the report shows.
type Input struct {
	Title    string
	Date     time.Time
	Economic map[string]indicators.Summary

	// Charts maps chart names to base64 PNGs.
	Charts map[string]string
}

type view struct {
	Title    string
	Date     string
	Sections []indicators.Section
	Extra    []string
}

// Render writes the report to w.
func Render(w io.Writer, in Input, mode ImageMode) error {
	tmpl, err := emailTemplate.Clone()
	if err != nil {
		return fmt.Errorf("cloning report template: %w", err)
	}
	tmpl.Funcs(baseFuncs(in.Charts, mode))

	sections := indicators.Grouped(in.Economic)
	v := view{
		Title:    in.Title,
		Date:     in.Date.Format(DateLayout),
		Sections: sections,
		Extra:    extraCharts(sections, in.Charts),
	}
	if err = tmpl.Execute(w, v); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

// ContentID derives a MIME Content-ID from a chart name.
func ContentID(name string) string {
	r := strings.NewReplacer(" ", "_", "(", "", ")", "", "-", "_")
	return r.Replace(name)
}

// FormatValue formats v with thousands separators and two decimals.
func FormatValue(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// FormatChange is FormatValue with an explicit sign for positive values.
func FormatChange(v float64) string {
	if v > 0 {
		return "+" + FormatValue(v)
	}
	return FormatValue(v)
}

func changeClass(v float64) string {
	switch {
	case v > 0:
		return "up"
	case v < 0:
		return "down"
	default:
		return "flat"
	}
}

func baseFuncs(charts map[string]string, mode ImageMode) template.FuncMap {
	return template.FuncMap{
		"value":       FormatValue,
		"change":      FormatChange,
		"changeClass": changeClass,
		"hasChart": func(name string) bool {
			_, ok := charts[name]
			return ok
		},
		"chartSrc": func(name string) template.URL {
			if mode == ContentIDs {
				//nolint:gosec // Content-IDs are derived from our own chart names.
				return template.URL("cid:" + ContentID(name))
			}
			//nolint:gosec // Base64 PNG produced by the chart renderer.
			return template.URL("data:image/png;base64," + charts[name])
		},
	}
}

// extraCharts lists charts not attached to any indicator row, sorted.
func extraCharts(sections []indicators.Section, charts map[string]string) []string {
	shown := map[string]bool{}
	for _, s := range sections {
		for _, item := range s.Items {
			shown[item.Name] = true
		}
	}
	var extra []string
	for name := range charts {
		if !shown[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return extra
}
