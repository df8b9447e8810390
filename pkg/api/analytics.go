package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnalyticsRequest is accepted both as a JSON body and as query parameters.
type AnalyticsRequest struct {
	Email  string `json:"email" form:"email"`
	APIKey string `json:"api_key" form:"api_key"`
	ZoneID string `json:"zone_id" form:"zone_id"`
	Days   Days   `json:"days" form:"days"`
}

// Days holds the caller's raw day count. JSON numbers and strings are both kept as
// their textual form; interpretation is left to the analytics package.
type Days string

func (d *Days) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*d = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("days: %w", err)
		}
		*d = Days(s)
	default:
		*d = Days(b)
	}
	return nil
}

// AnalyticsResult is the normalized response returned to callers.
type AnalyticsResult struct {
	TotalUniqueVisits int64                 `json:"total_unique_visits"`
	DailyBreakdown    []DailyBreakdownEntry `json:"daily_breakdown"`
}

type DailyBreakdownEntry struct {
	Date         string `json:"date"` // "2006-01-02"
	Day          string `json:"day"`  // full English weekday name
	UniqueVisits int64  `json:"unique_visits"`
}

// ErrorResponse is the single failure shape of the HTTP API.
type ErrorResponse struct {
	Error string `json:"error"`
}
