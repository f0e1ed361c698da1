package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// TimeFormat is the timestamp layout Splunk accepts for earliest/latest.
const TimeFormat = "01/02/2006:15:04:05"

// TimeBasis selects which timestamp a time window constrains.
type TimeBasis int

const (
	// EventTime bounds the nominal event time (earliest/latest).
	EventTime TimeBasis = iota
	// IndexTime bounds the ingestion time (_index_earliest/_index_latest).
	IndexTime
)

func (b TimeBasis) String() string {
	switch b {
	case IndexTime:
		return "index"
	default:
		return "event"
	}
}

// ParseTimeBasis maps "event"/"wallclock" and "index" to a TimeBasis.
// The empty string selects EventTime.
func ParseTimeBasis(s string) (TimeBasis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "event", "wallclock", "wall_clock":
		return EventTime, nil
	case "index", "index_time":
		return IndexTime, nil
	default:
		return EventTime, fmt.Errorf("unknown time basis %q", s)
	}
}

func (b TimeBasis) keys() (earliest, latest string) {
	if b == IndexTime {
		return "_index_earliest", "_index_latest"
	}
	return "earliest", "latest"
}

// ParseDuration parses a "DD:HH:MM:SS" offset. Between one and four
// components are accepted; missing leading components are zero, so "05" is
// five seconds and "10:05" is ten minutes five seconds.
func ParseDuration(value string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) > 4 {
		return 0, fmt.Errorf("duration %q: too many components", value)
	}

	units := []time.Duration{time.Second, time.Minute, time.Hour, 24 * time.Hour}
	var d time.Duration
	for i := range parts {
		part := strings.TrimSpace(parts[len(parts)-1-i])
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("duration %q: invalid component %q", value, part)
		}
		if n < 0 {
			return 0, fmt.Errorf("duration %q: negative component %q", value, part)
		}
		d += time.Duration(n) * units[i]
	}
	return d, nil
}

// FormatDuration renders d in the "DD:HH:MM:SS" form read by ParseDuration.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d:%02d", total/86400, total%86400/3600, total%3600/60, total%60)
}

var leadingSearch = regexp.MustCompile(`(?i)^\s*search`)

// EnsureSearchPrefix prepends "search " unless the trimmed query already
// starts with the search command (case-insensitive).
func EnsureSearchPrefix(query string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimLeftFunc(query, unicode.IsSpace)), "search") {
		return query
	}
	return "search " + query
}

// BuildQuery returns query bounded to [start, end] on the given basis.
//
// The bound clauses are spliced in after the first leading "search" token,
// end first and then start, so the result reads
// "search earliest=<start> latest=<end> ...". A nil bound adds no clause.
func BuildQuery(query string, start, end *time.Time, basis TimeBasis) string {
	query = EnsureSearchPrefix(query)
	earliestKey, latestKey := basis.keys()

	if end != nil {
		query = injectClause(query, latestKey, *end)
	}
	if start != nil {
		query = injectClause(query, earliestKey, *start)
	}
	return query
}

func injectClause(query, key string, t time.Time) string {
	loc := leadingSearch.FindStringIndex(query)
	if loc == nil {
		return query
	}
	return "search " + key + "=" + t.Format(TimeFormat) + query[loc[1]:]
}

// RelativeWindow returns [anchor-before, anchor+after].
func RelativeWindow(anchor time.Time, before, after time.Duration) (start, end time.Time) {
	return anchor.Add(-before), anchor.Add(after)
}
