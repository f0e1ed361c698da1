// Package tools contains MCP tool implementations for Splunk searches.
package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/usestring/splunk-mcp/internal/query"
	"github.com/usestring/splunk-mcp/pkg/search"
)

// EventTimeField is added to each record when time normalization is on.
const EventTimeField = "_event_time"

// JQ application modes.
const (
	JQModeEach = "each" // run against every record
	JQModeAll  = "all"  // run once against the array of records
)

// outputOptions controls how a finished session is turned into tool output.
type outputOptions struct {
	Where         map[string]string
	JQ            string
	JQMode        string
	Deduplicate   bool
	Limit         int
	NormalizeTime bool
	Timezone      string
}

func (o outputOptions) validate(d *Deps) error {
	if o.JQ != "" {
		if err := d.Query.ValidateExpression(o.JQ); err != nil {
			return ErrInvalidInput(err.Error())
		}
	}
	switch o.JQMode {
	case "", JQModeEach, JQModeAll:
	default:
		return ErrInvalidInput(fmt.Sprintf("jq_mode must be %q or %q", JQModeEach, JQModeAll))
	}
	return nil
}

// resolveLimit applies the configured default and ceiling.
func resolveLimit(d *Deps, limit int) int {
	if limit <= 0 {
		limit = d.Config.DefaultRecordLimit
	}
	if d.Config.MaxRecordLimit > 0 && limit > d.Config.MaxRecordLimit {
		limit = d.Config.MaxRecordLimit
	}
	return limit
}

// parseTimeInput reads a tool time argument. Splunk's own
// MM/DD/YYYY:HH:MM:SS layout is tried first, then any layout dateparse
// recognises, read in loc when it carries no zone. Empty means unbounded.
func parseTimeInput(name, value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(search.TimeFormat, value, loc); err == nil {
		return &t, nil
	}
	t, err := dateparse.ParseIn(value, loc)
	if err != nil {
		return nil, ErrInvalidInput(fmt.Sprintf("%s: unrecognised time %q", name, value))
	}
	return &t, nil
}

func formatBound(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(search.TimeFormat)
}

// runSession executes fn on a new session and shapes its records.
func runSession(ctx context.Context, d *Deps, opts outputOptions, fn func(context.Context, *search.Session) error) (SearchOutput, error) {
	s, err := d.NewSession()
	if err != nil {
		return SearchOutput{}, ErrInvalidInput(err.Error())
	}

	if err := fn(ctx, s); err != nil {
		return SearchOutput{}, WrapSearchError(err)
	}

	records, _ := s.Records()
	output := SearchOutput{
		SID:            s.SID(),
		State:          s.State().String(),
		Fields:         make([]string, 0),
		TotalRecords:   len(records),
		PollDurationMs: s.Stats().Duration().Milliseconds(),
	}
	if r := s.Results(); r != nil {
		output.Fields = append(output.Fields, r.Fields...)
		for _, m := range r.Messages {
			output.Messages = append(output.Messages, m.Type+": "+m.Text)
		}
	}

	if opts.NormalizeTime {
		for _, rec := range records {
			rec[EventTimeField] = search.ExtractEventTime(rec, opts.Timezone, d.Location).Format(time.RFC3339)
		}
	}

	if len(opts.Where) > 0 {
		records = query.NewFieldIndex(records).Filter(records, opts.Where)
		output.Matched = len(records)
	}

	limit := resolveLimit(d, opts.Limit)

	if opts.JQ != "" {
		var res queryResult
		// One extra value tells a full page from a truncated one.
		if opts.JQMode == JQModeAll {
			res, err = d.runAll(records, opts.JQ, limit+1)
		} else {
			res, err = d.runEach(records, opts.JQ, opts.Deduplicate, limit+1)
		}
		if err != nil {
			return SearchOutput{}, ErrInvalidInput(err.Error())
		}
		if len(res.values) > limit {
			res.values = res.values[:limit]
			output.Truncated = true
		}
		output.Values = res.values
		output.Errors = res.errors
		output.Returned = len(res.values)
		if len(res.values) == 0 && len(records) > 0 {
			output.Hint = "jq expression produced no values; check field names against fields"
		}
		return output, nil
	}

	output.Records = records
	if len(records) > limit {
		output.Records = records[:limit]
		output.Truncated = true
	}
	output.Returned = len(output.Records)
	switch {
	case len(records) == 0 && len(opts.Where) > 0 && output.TotalRecords > 0:
		output.Hint = fmt.Sprintf("where matched none of %d records; check values against fields", output.TotalRecords)
	case len(records) == 0:
		output.Hint = "search matched no events; widen the time window or relax the query"
	case output.Truncated:
		output.Hint = fmt.Sprintf("showing %d of %d records; raise limit or use jq to project fields", output.Returned, output.TotalRecords)
	}
	return output, nil
}

type queryResult struct {
	values []any
	errors []string
}

func (d *Deps) runEach(records []search.Record, expr string, dedup bool, limit int) (queryResult, error) {
	r, err := d.Query.Run(records, expr, dedup, limit)
	if err != nil {
		return queryResult{}, err
	}
	return queryResult{values: r.Values, errors: r.Errors}, nil
}

func (d *Deps) runAll(records []search.Record, expr string, limit int) (queryResult, error) {
	r, err := d.Query.RunAll(records, expr, limit)
	if err != nil {
		return queryResult{}, err
	}
	return queryResult{values: r.Values, errors: r.Errors}, nil
}
