package timex

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// isoLayouts are the ISO-8601 shapes clients send. Values without a zone
// are read as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseISO reads a client timestamp: any of isoLayouts, or an integer
// number of Unix milliseconds. The result is normalized.
func ParseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Normalize(time.UnixMilli(ms)), nil
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Normalize(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
