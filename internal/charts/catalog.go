// Package charts renders the report's line charts as base64 PNGs.
package charts

// Line is one series drawn on a chart.
type Line struct {
	SeriesID string
	Label    string
	Color    string
}

// Group is a chart with several lines, a title and a legend.
type Group struct {
	Name  string
	Lines []Line
}

// Individual is a single-line chart.
type Individual struct {
	SeriesID string
	Name     string
	Color    string
}

// Mortgage premium chart inputs.
const (
	MortgagePremiumName  = "Mortgage Rate Premium"
	mortgagePremiumTitle = "Mortgage Rate Premium over Treasuries"
	mortgageSeries       = "MORTGAGE30US"
	treasury30Series     = "DGS30"
	treasury10Series     = "DGS10"
)

// Groups returns the multi-line charts.
func Groups() []Group {
	return []Group{
		{Name: "Personal Consumption Expenditure", Lines: []Line{
			{SeriesID: "PCEPI", Label: "PCE", Color: "#1aa526"},
			{SeriesID: "PCEPILFE", Label: "CORE PCE", Color: "#60159e"},
		}},
		{Name: "Term Premium", Lines: []Line{
			{SeriesID: treasury10Series, Label: "10-Year Treasury Yield", Color: "#cca22e"},
			{SeriesID: treasury30Series, Label: "30-Year Treasury Yield", Color: "#2927ae"},
		}},
	}
}

// Individuals returns the single-line charts.
func Individuals() []Individual {
	return []Individual{
		{SeriesID: "UNRATE", Name: "Unemployment Rate", Color: "#e74c3c"},
		{SeriesID: "ICSA", Name: "Initial Jobless Claims", Color: "#f39c12"},
		{SeriesID: "CPIAUCSL", Name: "CPI (Inflation)", Color: "#e67e22"},
		{SeriesID: "DFF", Name: "Fed Funds Rate", Color: "#3498db"},
		{SeriesID: mortgageSeries, Name: "30-Year Mortgage Rate", Color: "#e91e63"},
		{SeriesID: "T10Y2Y", Name: "10Y-2Y Treasury Spread", Color: "#8e44ad"},
		{SeriesID: "T10Y3M", Name: "10Y-3M Treasury Spread", Color: "#9b59b6"},
		{SeriesID: "HOUST", Name: "Housing Starts", Color: "#1abc9c"},
		{SeriesID: "EXHOSLUSM495S", Name: "Existing Home Sales", Color: "#16a085"},
		{SeriesID: "UMCSENT", Name: "Consumer Sentiment", Color: "#f39c12"},
		{SeriesID: "PSAVERT", Name: "Personal Savings Rate", Color: "#d35400"},
		{SeriesID: "M2SL", Name: "M2 Money Supply", Color: "#34495e"},
	}
}

// seriesIDs returns every series any chart needs, without duplicates.
func seriesIDs() []string {
	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, g := range Groups() {
		for _, l := range g.Lines {
			add(l.SeriesID)
		}
	}
	for _, ind := range Individuals() {
		add(ind.SeriesID)
	}
	add(mortgageSeries)
	add(treasury30Series)
	add(treasury10Series)
	return ids
}
