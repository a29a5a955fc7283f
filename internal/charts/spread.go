package charts

import (
	"sort"
	"time"

	"github.com/rshade/econreport/internal/fred"
)

// Spreads aligns base and others on the union of their dates, carries each
// series' last value forward over gaps, and returns base minus each other
// series. Dates before either side has a value are dropped.
func Spreads(base fred.Series, others ...fred.Series) [][]fred.Observation {
	all := append([]fred.Series{base}, others...)
	dates := unionDates(all)

	filled := make([][]*float64, len(all))
	for i, s := range all {
		filled[i] = forwardFill(dates, s)
	}

	out := make([][]fred.Observation, len(others))
	for i := range others {
		other := filled[i+1]
		for d, date := range dates {
			if filled[0][d] == nil || other[d] == nil {
				continue
			}
			out[i] = append(out[i], fred.Observation{Date: date, Value: *filled[0][d] - *other[d]})
		}
	}
	return out
}

func unionDates(series []fred.Series) []time.Time {
	seen := map[time.Time]bool{}
	var dates []time.Time
	for _, s := range series {
		for _, o := range s.Observations {
			if !seen[o.Date] {
				seen[o.Date] = true
				dates = append(dates, o.Date)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// forwardFill returns, for each date, the latest value of s on or before it.
func forwardFill(dates []time.Time, s fred.Series) []*float64 {
	out := make([]*float64, len(dates))
	obs := s.Observations
	j := 0
	var current *float64
	for i, date := range dates {
		for j < len(obs) && !obs[j].Date.After(date) {
			v := obs[j].Value
			current = &v
			j++
		}
		out[i] = current
	}
	return out
}
