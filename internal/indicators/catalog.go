// Package indicators fetches the headline economic indicators shown in the
// report and summarizes each as its latest value and change.
package indicators

// Report sections, in display order.
const (
	SectionLabor     = "Labor Market"
	SectionInflation = "Inflation & Growth"
	SectionRates     = "Interest Rates"
	SectionYield     = "Yield Curve"
	SectionHousing   = "Housing"
	SectionConsumer  = "Consumer & Savings"
	SectionMonetary  = "Monetary"
)

// Indicator is one FRED series shown in the report.
type Indicator struct {
	SeriesID string
	Name     string
	Section  string
}

// Sections returns the section names in display order.
func Sections() []string {
	return []string{
		SectionLabor,
		SectionInflation,
		SectionRates,
		SectionYield,
		SectionHousing,
		SectionConsumer,
		SectionMonetary,
	}
}

// Catalog returns the indicators in display order.
func Catalog() []Indicator {
	return []Indicator{
		{SeriesID: "UNRATE", Name: "Unemployment Rate", Section: SectionLabor},
		{SeriesID: "ICSA", Name: "Initial Jobless Claims", Section: SectionLabor},

		{SeriesID: "CPIAUCSL", Name: "CPI (Inflation)", Section: SectionInflation},
		{SeriesID: "PCEPI", Name: "Personal Consumption Expenditure", Section: SectionInflation},
		{SeriesID: "PCEPILFE", Name: "CORE PCE", Section: SectionInflation},

		{SeriesID: "DFF", Name: "Fed Funds Rate", Section: SectionRates},
		{SeriesID: "DGS10", Name: "Term Premium", Section: SectionRates},
		{SeriesID: "DGS30", Name: "30-Year Treasury Yield", Section: SectionRates},
		{SeriesID: "MORTGAGE30US", Name: "30-Year Mortgage Rate", Section: SectionRates},

		{SeriesID: "T10Y2Y", Name: "10Y-2Y Treasury Spread", Section: SectionYield},
		{SeriesID: "T10Y3M", Name: "10Y-3M Treasury Spread", Section: SectionYield},

		{SeriesID: "HOUST", Name: "Housing Starts", Section: SectionHousing},
		{SeriesID: "EXHOSLUSM495S", Name: "Existing Home Sales", Section: SectionHousing},

		{SeriesID: "UMCSENT", Name: "Consumer Sentiment", Section: SectionConsumer},
		{SeriesID: "PSAVERT", Name: "Personal Savings Rate", Section: SectionConsumer},

		{SeriesID: "M2SL", Name: "M2 Money Supply", Section: SectionMonetary},
	}
}
