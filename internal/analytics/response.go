package analytics

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/nulzo/zone-analytics-proxy/pkg/api"
)

// GraphQLResponse mirrors the parts of the provider response that are read. Zones,
// rows and the fields inside them decode leniently: a malformed value becomes its
// zero value instead of failing the whole response.
type GraphQLResponse struct {
	Data   *Data          `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

type GraphQLError struct {
	Message string `json:"message"`
}

type Data struct {
	Viewer *Viewer `json:"viewer"`
}

type Viewer struct {
	Zones []Zone `json:"zones"`
}

type Zone struct {
	Totals []Group `json:"totals"`
	Days   []Group `json:"zones"`
}

// UnmarshalJSON decodes each aggregation on its own so that one malformed list
// leaves the other intact. A zone that is not an object decodes as empty.
func (z *Zone) UnmarshalJSON(b []byte) error {
	*z = Zone{}

	var raw struct {
		Totals json.RawMessage `json:"totals"`
		Days   json.RawMessage `json:"zones"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	z.Totals = decodeGroups(raw.Totals)
	z.Days = decodeGroups(raw.Days)
	return nil
}

func decodeGroups(b json.RawMessage) []Group {
	if len(b) == 0 {
		return nil
	}
	var groups []Group
	if err := json.Unmarshal(b, &groups); err != nil {
		return nil
	}
	return groups
}

// Group is one httpRequests1dGroups row.
type Group struct {
	Dimensions Dimensions `json:"dimensions"`
	Uniq       Uniq       `json:"uniq"`
}

// UnmarshalJSON decodes a row that is not an object as an empty row.
func (g *Group) UnmarshalJSON(b []byte) error {
	type alias Group
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		*g = Group{}
		return nil
	}
	*g = Group(a)
	return nil
}

type Dimensions struct {
	Timeslot string `json:"timeslot"`
}

func (d *Dimensions) UnmarshalJSON(b []byte) error {
	type alias Dimensions
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		*d = Dimensions{}
		return nil
	}
	*d = Dimensions(a)
	return nil
}

type Uniq struct {
	Uniques Count `json:"uniques"`
}

func (u *Uniq) UnmarshalJSON(b []byte) error {
	type alias Uniq
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		*u = Uniq{}
		return nil
	}
	*u = Uniq(a)
	return nil
}

// Count is a non-negative visit count. Anything other than a non-negative JSON number
// decodes to 0.
type Count int64

func (c *Count) UnmarshalJSON(b []byte) error {
	*c = 0

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	n, ok := v.(json.Number)
	if !ok {
		return nil
	}

	if i, err := n.Int64(); err == nil {
		if i > 0 {
			*c = Count(i)
		}
		return nil
	}
	if f, err := n.Float64(); err == nil && f > 0 && f < math.MaxInt64 {
		*c = Count(f)
	}
	return nil
}

// FirstZone returns the first zone of the response, or nil when the provider returned
// none. Only one zone is ever requested.
func (r *GraphQLResponse) FirstZone() *Zone {
	if r == nil || r.Data == nil || r.Data.Viewer == nil || len(r.Data.Viewer.Zones) == 0 {
		return nil
	}
	return &r.Data.Viewer.Zones[0]
}

// Normalize reduces a provider response to an AnalyticsResult. Rows keep the order the
// provider returned them in.
func Normalize(resp *GraphQLResponse) *api.AnalyticsResult {
	result := &api.AnalyticsResult{
		DailyBreakdown: []api.DailyBreakdownEntry{},
	}

	zone := resp.FirstZone()
	if zone == nil {
		return result
	}

	for _, g := range zone.Totals {
		result.TotalUniqueVisits = addCount(result.TotalUniqueVisits, g.Uniq.Uniques)
	}

	result.DailyBreakdown = make([]api.DailyBreakdownEntry, 0, len(zone.Days))
	for _, g := range zone.Days {
		result.DailyBreakdown = append(result.DailyBreakdown, api.DailyBreakdownEntry{
			Date:         g.Dimensions.Timeslot,
			Day:          Weekday(g.Dimensions.Timeslot),
			UniqueVisits: int64(g.Uniq.Uniques),
		})
	}

	return result
}

// addCount adds a non-negative count to total, saturating at math.MaxInt64.
func addCount(total int64, c Count) int64 {
	if int64(c) > math.MaxInt64-total {
		return math.MaxInt64
	}
	return total + int64(c)
}
