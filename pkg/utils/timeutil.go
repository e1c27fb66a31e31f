// Package utils provides common utility functions shared across the
// momentum backtester: ticker normalization, date arithmetic for the
// rebalance schedule, and Indian-market display formatting.
package utils

import (
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if tz database is not available
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// ParseDateIST parses a YYYY-MM-DD string as midnight IST.
func ParseDateIST(dateStr string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, IST)
}

// FormatDate formats a time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// DateOnly truncates a time to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports whether two times fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// NearestWeekday shifts a date backwards off a weekend: Saturday moves
// to Friday, Sunday moves back two days. Weekdays are returned as-is.
// The NSE does not trade on weekends, so rebalance dates landing there
// are executed on the preceding Friday.
func NearestWeekday(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, -2)
	default:
		return t
	}
}

// PrevMonthEnd returns the last calendar day of the month before t.
func PrevMonthEnd(t time.Time) time.Time {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return firstOfMonth.AddDate(0, 0, -1)
}

// MonthEnds returns the month-end dates in [from, to], each shifted off
// weekends with NearestWeekday, in ascending order. These are the
// rebalance points of a monthly-rebalanced strategy.
func MonthEnds(from, to time.Time) []time.Time {
	if to.Before(from) {
		return nil
	}

	var dates []time.Time
	// First candidate: end of from's month.
	cursor := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location()).AddDate(0, 1, -1)
	for !cursor.After(to) {
		d := NearestWeekday(cursor)
		if !d.Before(from) {
			dates = append(dates, d)
		}
		// End of the next month.
		cursor = time.Date(cursor.Year(), cursor.Month(), 1, 0, 0, 0, 0, cursor.Location()).AddDate(0, 2, -1)
	}
	return dates
}

// LookbackWindow returns the [start, end] of the trailing momentum
// window for an as-of date: end is the last weekday of the month before
// asOf, start is the first day of the month `months` months before end.
// The month containing asOf is excluded, which is the "12-minus-1"
// convention for a 12-month lookback.
func LookbackWindow(asOf time.Time, months int) (start, end time.Time) {
	end = NearestWeekday(PrevMonthEnd(asOf))
	s := end.AddDate(0, -months, 0)
	start = time.Date(s.Year(), s.Month(), 1, 0, 0, 0, 0, s.Location())
	return start, end
}
