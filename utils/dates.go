package utils

import (
	"time"

	"macrolog/apperror"
)

const DateLayout = "2006-01-02"

// Today returns the calendar date in loc as YYYY-MM-DD.
func Today(loc *time.Location) string {
	return time.Now().In(loc).Format(DateLayout)
}

// ParseDate validates a YYYY-MM-DD string.
func ParseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperror.ValidationFailed(field, "invalid "+field+" format. Use YYYY-MM-DD")
	}
	return t, nil
}

// AddDays shifts a YYYY-MM-DD date. The input must already be valid.
func AddDays(date string, days int) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, days).Format(DateLayout)
}
