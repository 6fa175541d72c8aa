package dto

import (
	"fmt"
	"strings"
	"time"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

var clockLayouts = []string{"15:04:05", "15:04"}

// ParseDate accepts RFC3339 timestamps and bare dates. Zone-less values are
// read in UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

// CombineDateTime joins a "2006-01-02" date and a "15:04" or "15:04:05"
// clock time.
func CombineDateTime(date, clock string) (time.Time, error) {
	raw := strings.TrimSpace(date) + " " + strings.TrimSpace(clock)
	for _, layout := range clockLayouts {
		if t, err := time.Parse("2006-01-02 "+layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date/time %q %q", date, clock)
}
