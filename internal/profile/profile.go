// Package profile computes per-field statistics over search records.
package profile

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/usestring/splunk-mcp/internal/query"
	"github.com/usestring/splunk-mcp/pkg/search"
)

// FieldStat describes one field across a record set.
type FieldStat struct {
	Field         string             `json:"field"`
	Type          string             `json:"type"`                  // string, number, multivalue, or a|b when mixed
	Frequency     float64            `json:"frequency"`             // Fraction of records carrying the field (0.0-1.0)
	Required      bool               `json:"required"`              // Present and non-null in every record
	DistinctCount int                `json:"distinct_count"`        // Distinct non-null values
	Examples      []any              `json:"examples"`              // Up to 3 example values
	Format        string             `json:"format,omitempty"`      // Detected format: ip, uuid, iso8601, url, email, numeric, enum
	EnumValues    []string           `json:"enum_values,omitempty"` // All distinct values when format is "enum"
	Top           []query.ValueCount `json:"top,omitempty"`         // Most frequent values
}

const (
	maxExamples           = 3
	minSamplesForFormat   = 5
	maxEnumDistinctValues = 10
	defaultTop            = 5
)

var (
	uuidRegex    = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	iso8601Regex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2})?`)
	urlRegex     = regexp.MustCompile(`^https?://`)
	emailRegex   = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
)

// Options tunes Fields.
type Options struct {
	Top int // Values listed per field; 0 means defaultTop, negative disables
}

// Fields returns one FieldStat per field seen in records, sorted by name.
func Fields(records []search.Record, opts Options) []FieldStat {
	if len(records) == 0 {
		return nil
	}
	top := opts.Top
	if top == 0 {
		top = defaultTop
	}

	idx := query.NewFieldIndex(records)
	names := fieldNames(records)
	stats := make([]FieldStat, 0, len(names))
	for _, name := range names {
		stat := fieldStat(name, records)
		if top > 0 {
			stat.Top = idx.Top(name, top)
		}
		stats = append(stats, stat)
	}
	return stats
}

func fieldNames(records []search.Record) []string {
	seen := make(map[string]bool)
	for _, rec := range records {
		for f := range rec {
			seen[f] = true
		}
	}
	names := make([]string, 0, len(seen))
	for f := range seen {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

func fieldStat(name string, records []search.Record) FieldStat {
	stat := FieldStat{Field: name}

	present, nulls := 0, 0
	distinct := make(map[string]bool)
	types := make(map[string]bool)
	var examples []any
	var strs []string

	for _, rec := range records {
		v, ok := rec[name]
		if !ok {
			continue
		}
		present++
		if v == nil {
			nulls++
			continue
		}

		types[valueType(v)] = true
		key := fmt.Sprint(v)
		if !distinct[key] {
			distinct[key] = true
			if len(examples) < maxExamples {
				examples = append(examples, v)
			}
		}
		if s, ok := v.(string); ok {
			strs = append(strs, s)
		}
	}

	stat.Type = joinTypes(types)
	stat.Frequency = float64(present) / float64(len(records))
	stat.Required = present == len(records) && nulls == 0
	stat.DistinctCount = len(distinct)
	stat.Examples = examples
	if stat.Examples == nil {
		stat.Examples = []any{}
	}

	if stat.Type == "string" && len(strs) >= minSamplesForFormat {
		stat.Format, stat.EnumValues = detectFormat(strs)
	}
	return stat
}

func valueType(v any) string {
	switch v.(type) {
	case []any, []string:
		return "multivalue"
	case float64, int, int64, json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return "string"
	}
}

func joinTypes(types map[string]bool) string {
	if len(types) == 0 {
		return "null"
	}
	names := make([]string, 0, len(types))
	for t := range types {
		names = append(names, t)
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

// detectFormat reports the format shared by every value, checked in order.
// Enum is the fallback for low-cardinality fields.
func detectFormat(values []string) (string, []string) {
	checks := []struct {
		name  string
		match func(string) bool
	}{
		{"ip", isIP},
		{"uuid", uuidRegex.MatchString},
		{"iso8601", iso8601Regex.MatchString},
		{"url", urlRegex.MatchString},
		{"email", emailRegex.MatchString},
		{"numeric", isNumeric},
	}
	for _, c := range checks {
		if all(values, c.match) {
			return c.name, nil
		}
	}

	distinct := make(map[string]bool)
	for _, v := range values {
		distinct[v] = true
	}
	if len(distinct) <= maxEnumDistinctValues {
		enumValues := make([]string, 0, len(distinct))
		for v := range distinct {
			enumValues = append(enumValues, v)
		}
		sort.Strings(enumValues)
		return "enum", enumValues
	}
	return "", nil
}

func all(values []string, match func(string) bool) bool {
	for _, v := range values {
		if !match(v) {
			return false
		}
	}
	return true
}

func isIP(s string) bool {
	_, err := netip.ParseAddr(s)
	return err == nil
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
