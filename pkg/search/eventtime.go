package search

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

// TimeField is the result field carrying the event timestamp.
const TimeField = "_time"

// legacyTimePattern matches Splunk's default _time rendering,
// e.g. 2024-01-01T10:00:00.000+00:00.
var legacyTimePattern = regexp.MustCompile(`^([0-9]{4})-([0-9]{2})-([0-9]{2})T([0-9]{2}):([0-9]{2}):([0-9]{2})\.[0-9]{3}[-+][0-9]{2}:[0-9]{2}$`)

// ResolveLocation loads the named zone, falling back to def (or time.Local
// when def is nil) for an empty or unknown name.
func ResolveLocation(name string, def *time.Location) *time.Location {
	if def == nil {
		def = time.Local
	}
	if name == "" {
		return def
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Error("unknown time zone", slog.String("timezone", name))
		return def
	}
	return loc
}

// ExtractEventTime returns the _time of rec in the zone named by timezone.
//
// Timestamps without zone information are taken to be in that zone; zoned
// timestamps are converted to it. Values the flexible parser rejects are
// matched against the legacy Splunk layout, keeping the wall clock and
// discarding the offset. Numeric values are Unix seconds. A missing or unreadable _time yields the current
// time. ExtractEventTime never fails.
func ExtractEventTime(rec Record, timezone string, def *time.Location) time.Time {
	loc := ResolveLocation(timezone, def)

	raw, ok := rec[TimeField]
	if !ok || raw == nil {
		slog.Warn("splunk event missing _time field", slog.Any("fields", fieldNames(rec)))
		return time.Now().In(loc)
	}
	var value string
	switch v := raw.(type) {
	case string:
		value = v
	case float64:
		return epochTime(v).In(loc)
	case int:
		return time.Unix(int64(v), 0).In(loc)
	case int64:
		return time.Unix(v, 0).In(loc)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return epochTime(f).In(loc)
		}
		value = v.String()
	default:
		value = fmt.Sprint(raw)
	}

	if t, err := dateparse.ParseIn(value, loc); err == nil {
		return t.In(loc)
	}

	t, ok := parseLegacyTime(value, loc)
	if !ok {
		slog.Error("_time field does not match expected format", slog.String("_time", value))
		return time.Now().In(loc)
	}
	return t
}

// epochTime converts fractional Unix seconds, Splunk's numeric _time form.
func epochTime(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9)))
}

// parseLegacyTime reads value in the legacy Splunk layout as a wall clock
// in loc. The offset in value is ignored.
func parseLegacyTime(value string, loc *time.Location) (time.Time, bool) {
	m := legacyTimePattern.FindStringSubmatch(value)
	if m == nil {
		return time.Time{}, false
	}
	parts := make([]int, 6)
	for i := range parts {
		parts[i], _ = strconv.Atoi(m[i+1])
	}
	return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, loc), true
}

func fieldNames(rec Record) []string {
	names := make([]string, 0, len(rec))
	for k := range rec {
		names = append(names, k)
	}
	return names
}
