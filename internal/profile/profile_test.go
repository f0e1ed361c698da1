package profile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/splunk-mcp/internal/query"
	"github.com/usestring/splunk-mcp/pkg/search"
)

func statFor(t *testing.T, stats []FieldStat, field string) FieldStat {
	t.Helper()
	for _, s := range stats {
		if s.Field == field {
			return s
		}
	}
	require.Failf(t, "field not found", "%s", field)
	return FieldStat{}
}

func proxyRecords(n int) []search.Record {
	records := make([]search.Record, 0, n)
	for i := range n {
		rec := search.Record{
			"src":    fmt.Sprintf("10.0.0.%d", i),
			"status": []string{"200", "404", "500"}[i%3],
			"bytes":  fmt.Sprintf("%d", 100*i),
		}
		if i%2 == 0 {
			rec["user"] = "alice"
		}
		if i == 0 {
			rec["dest"] = []any{"a.example", "b.example"}
		}
		records = append(records, rec)
	}
	return records
}

func TestFields_FrequencyAndRequired(t *testing.T) {
	stats := Fields(proxyRecords(6), Options{})
	assert.Equal(t, []string{"bytes", "dest", "src", "status", "user"}, []string{
		stats[0].Field, stats[1].Field, stats[2].Field, stats[3].Field, stats[4].Field,
	})

	src := statFor(t, stats, "src")
	assert.True(t, src.Required)
	assert.Equal(t, 1.0, src.Frequency)
	assert.Equal(t, 6, src.DistinctCount)
	assert.Len(t, src.Examples, 3)

	user := statFor(t, stats, "user")
	assert.False(t, user.Required)
	assert.Equal(t, 0.5, user.Frequency)
	assert.Equal(t, 1, user.DistinctCount)
}

func TestFields_FormatDetection(t *testing.T) {
	stats := Fields(proxyRecords(6), Options{})

	assert.Equal(t, "ip", statFor(t, stats, "src").Format)
	assert.Equal(t, "numeric", statFor(t, stats, "bytes").Format)

	status := statFor(t, stats, "status")
	assert.Equal(t, "numeric", status.Format)
	assert.Nil(t, status.EnumValues)
}

func TestFields_EnumDetection(t *testing.T) {
	records := make([]search.Record, 0, 6)
	for _, a := range []string{"allow", "deny", "allow", "allow", "deny", "drop"} {
		records = append(records, search.Record{"action": a})
	}

	action := statFor(t, Fields(records, Options{}), "action")
	assert.Equal(t, "enum", action.Format)
	assert.Equal(t, []string{"allow", "deny", "drop"}, action.EnumValues)
	assert.Equal(t, []query.ValueCount{{Value: "allow", Count: 3}, {Value: "deny", Count: 2}, {Value: "drop", Count: 1}}, action.Top)
}

func TestFields_FewSamplesSkipFormat(t *testing.T) {
	stats := Fields(proxyRecords(3), Options{Top: -1})
	src := statFor(t, stats, "src")
	assert.Empty(t, src.Format)
	assert.Nil(t, src.Top)
}

func TestFields_MultivalueAndMixed(t *testing.T) {
	records := []search.Record{
		{"dest": []any{"a", "b"}, "n": "1"},
		{"dest": "c", "n": 2.0},
		{"dest": nil},
	}

	stats := Fields(records, Options{})
	dest := statFor(t, stats, "dest")
	assert.Equal(t, "multivalue|string", dest.Type)
	assert.False(t, dest.Required)
	assert.Equal(t, 1.0, dest.Frequency)
	assert.Equal(t, "number|string", statFor(t, stats, "n").Type)
}

func TestFields_Empty(t *testing.T) {
	assert.Nil(t, Fields(nil, Options{}))
}
