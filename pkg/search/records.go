package search

import "github.com/usestring/splunk-mcp/pkg/client"

// Record is one result row keyed by field name.
type Record = map[string]any

// Materialize zips each row with the field names, preserving row order.
// It returns nil for a nil payload and an empty slice for zero rows.
func Materialize(r *client.Results) []Record {
	if r == nil {
		return nil
	}
	records := make([]Record, 0, len(r.Rows))
	for _, row := range r.Rows {
		rec := make(Record, len(r.Fields))
		for i, field := range r.Fields {
			if i < len(row) {
				rec[field] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records
}

// Records returns the results of the last successful query as records.
// ok is false when no payload is held, whether because nothing has been
// queried yet or because the last query failed or was cancelled; use State
// to tell those apart. A successful query without matches yields an empty,
// non-nil slice.
func (s *Session) Records() (records []Record, ok bool) {
	if s.results == nil {
		return nil, false
	}
	return Materialize(s.results), true
}
