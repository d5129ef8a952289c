package utils

import "time"

// DateOnly is the wire format for calendar dates across the API and
// the forecast boundary.
const DateOnly = "2006-01-02"

// DateRange returns days consecutive calendar dates ending at end,
// in ascending order. end is truncated to midnight UTC.
func DateRange(end time.Time, days int) []time.Time {
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, 0, days)
	for i := days - 1; i >= 0; i-- {
		dates = append(dates, end.AddDate(0, 0, -i))
	}
	return dates
}
