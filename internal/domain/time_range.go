// internal/domain/time_range.go
package domain

import "time"

// TimeRange selects the reporting window relative to "now".
type TimeRange string

const (
	TimeRangeWeek    TimeRange = "7"
	TimeRangeMonth   TimeRange = "30"
	TimeRangeQuarter TimeRange = "90"
	TimeRangeYear    TimeRange = "year"
	TimeRangeAll     TimeRange = "all"

	// DefaultTimeRange applies when the client sends no selector at all.
	DefaultTimeRange = TimeRangeMonth
)

// allTimeEpoch is the lower bound used by TimeRangeAll.
var allTimeEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParseTimeRange resolves a raw selector. An empty selector means DefaultTimeRange;
// anything unrecognized means TimeRangeAll.
func ParseTimeRange(raw string) TimeRange {
	switch r := TimeRange(raw); r {
	case "":
		return DefaultTimeRange
	case TimeRangeWeek, TimeRangeMonth, TimeRangeQuarter, TimeRangeYear, TimeRangeAll:
		return r
	default:
		return TimeRangeAll
	}
}

// Window is the inclusive [From, To] date interval of a report.
type Window struct {
	From Date
	To   Date
}

// Contains reports whether d falls inside w (bounds included).
func (w Window) Contains(d Date) bool {
	return !d.Before(w.From) && !d.After(w.To)
}

// Window computes the concrete interval for r ending at now.
func (r TimeRange) Window(now time.Time) Window {
	var from time.Time
	switch r {
	case TimeRangeWeek:
		from = now.AddDate(0, 0, -7)
	case TimeRangeMonth:
		from = now.AddDate(0, -1, 0)
	case TimeRangeQuarter:
		from = now.AddDate(0, -3, 0)
	case TimeRangeYear:
		from = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		from = allTimeEpoch
	}
	return Window{From: NewDate(from), To: NewDate(now)}
}
