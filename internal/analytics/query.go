package analytics

import "fmt"

// MaxRows is the row cap applied to both aggregations.
const MaxRows = 10000

// zoneAnalyticsQuery requests the same date-filtered httpRequests1dGroups twice: once
// without dimensions for the period total, once grouped and ordered by date.
var zoneAnalyticsQuery = fmt.Sprintf(`
query GetZoneAnalytics($zoneTag: String!, $date_geq: String!, $date_lt: String!) {
  viewer {
    zones(filter: { zoneTag: $zoneTag }) {
      totals: httpRequests1dGroups(limit: %[1]d, filter: { date_geq: $date_geq, date_lt: $date_lt }) {
        uniq {
          uniques
        }
      }
      zones: httpRequests1dGroups(orderBy: [date_ASC], limit: %[1]d, filter: { date_geq: $date_geq, date_lt: $date_lt }) {
        dimensions {
          timeslot: date
        }
        uniq {
          uniques
        }
      }
    }
  }
}`, MaxRows)

// Query is the GraphQL request body.
type Query struct {
	Query     string    `json:"query"`
	Variables Variables `json:"variables"`
}

type Variables struct {
	ZoneTag string `json:"zoneTag"`
	DateGeq string `json:"date_geq"`
	DateLt  string `json:"date_lt"`
}

func NewQuery(zoneID string, w Window) Query {
	return Query{
		Query: zoneAnalyticsQuery,
		Variables: Variables{
			ZoneTag: zoneID,
			DateGeq: w.StartDate(),
			DateLt:  w.EndDate(),
		},
	}
}
