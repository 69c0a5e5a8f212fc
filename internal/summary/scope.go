package summary

import (
	"time"

	custom_errors "cvescout/internal/errors"
	"cvescout/internal/store"
)

// Level is the granularity of an aggregation scope.
type Level int

const (
	Day Level = iota
	Month
	Year
)

// Scope identifies one aggregation directory: a day, month or year.
type Scope struct {
	Level Level
	Time  time.Time
}

// ParseScope resolves the mutually exclusive --date/--month/--year selectors.
// With none set it defaults to today's date.
func ParseScope(date, month, year string) (Scope, error) {
	set := 0
	for _, v := range []string{date, month, year} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return Scope{}, &custom_errors.ErrInvalidScope{Selector: "scope", Value: "--date, --month and --year are mutually exclusive"}
	}

	switch {
	case date != "":
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			return Scope{}, &custom_errors.ErrInvalidScope{Selector: "date", Value: date}
		}
		return Scope{Level: Day, Time: t}, nil
	case month != "":
		t, err := time.Parse("2006-01", month)
		if err != nil {
			return Scope{}, &custom_errors.ErrInvalidScope{Selector: "month", Value: month}
		}
		return Scope{Level: Month, Time: t}, nil
	case year != "":
		t, err := time.Parse("2006", year)
		if err != nil {
			return Scope{}, &custom_errors.ErrInvalidScope{Selector: "year", Value: year}
		}
		return Scope{Level: Year, Time: t}, nil
	default:
		return Scope{Level: Day, Time: time.Now().UTC()}, nil
	}
}

// Dir returns the scope's directory within the store's data tree.
func (s Scope) Dir(st *store.Store) string {
	switch s.Level {
	case Month:
		return st.MonthDir(s.Time)
	case Year:
		return st.YearDir(s.Time)
	default:
		return st.DayDir(s.Time)
	}
}

// Expand returns the scopes to regenerate. With recursive set, the enclosing
// scopes are included so a freshly collected day also refreshes its month and
// year summaries.
func (s Scope) Expand(recursive bool) []Scope {
	if !recursive {
		return []Scope{s}
	}
	switch s.Level {
	case Day:
		return []Scope{s, {Level: Month, Time: s.Time}, {Level: Year, Time: s.Time}}
	case Month:
		return []Scope{s, {Level: Year, Time: s.Time}}
	default:
		return []Scope{s}
	}
}
