package analytics

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultDays is used when the caller's day count is absent, non-numeric or below 1.
	DefaultDays = 7

	dateLayout = "2006-01-02"

	// hardMaxDays keeps the day count within int32 when no cap is configured.
	hardMaxDays = math.MaxInt32
)

// NormalizeDays interprets a raw day count. The input must be numeric as a whole;
// the day count is its leading integer, so "2.9" is 2 and "1e2" is 1. maxDays > 0
// clamps larger values.
func NormalizeDays(raw string, maxDays int) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DefaultDays
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return DefaultDays
	}
	if math.IsNaN(f) || f < 1 {
		return DefaultDays
	}

	n, ok := leadingInt(s)
	if !ok || n < 1 {
		return DefaultDays
	}

	limit := int64(hardMaxDays)
	if maxDays > 0 && int64(maxDays) < limit {
		limit = int64(maxDays)
	}
	if n > limit {
		return int(limit)
	}
	return int(n)
}

// leadingInt parses the optionally signed run of digits at the start of s. Runs too
// long for int64 saturate.
func leadingInt(s string) (int64, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return n, true
	}
	return n, err == nil
}

// Window is the half-open UTC date range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow ends at UTC midnight of now (exclusive) and starts days calendar days
// earlier (inclusive).
func NewWindow(now time.Time, days int) Window {
	u := now.UTC()
	end := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return Window{
		Start: end.AddDate(0, 0, -days),
		End:   end,
	}
}

func (w Window) StartDate() string {
	return w.Start.Format(dateLayout)
}

func (w Window) EndDate() string {
	return w.End.Format(dateLayout)
}

// Days returns the number of calendar days covered.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours() / 24)
}

// Weekday returns the English weekday name of an ISO date under UTC, or "" if the
// date cannot be parsed.
func Weekday(date string) string {
	t, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		t, err = time.Parse(time.RFC3339, date)
		if err != nil {
			return ""
		}
	}
	return t.UTC().Weekday().String()
}
