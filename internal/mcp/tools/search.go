package tools

import (
	"context"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/splunk-mcp/pkg/search"
)

// SearchInput is the input for splunk_search.
type SearchInput struct {
	Query         string            `json:"query" jsonschema:"SPL query; a leading 'search' command is added when missing"`
	Earliest      string            `json:"earliest,omitempty" jsonschema:"Lower time bound (MM/DD/YYYY:HH:MM:SS or any common layout); omitted means unbounded"`
	Latest        string            `json:"latest,omitempty" jsonschema:"Upper time bound (MM/DD/YYYY:HH:MM:SS or any common layout); omitted means unbounded"`
	Basis         string            `json:"basis,omitempty" jsonschema:"Which time the bounds apply to: event (default) or index"`
	Where         map[string]string `json:"where,omitempty" jsonschema:"Exact field=value matches a record must satisfy; applied before jq and limit"`
	JQ            string            `json:"jq,omitempty" jsonschema:"Optional JQ expression applied to the records; values replace records in the output"`
	JQMode        string            `json:"jq_mode,omitempty" jsonschema:"each (default) runs jq per record, all runs it once over the record array"`
	Deduplicate   bool              `json:"deduplicate,omitempty" jsonschema:"Remove duplicate jq values (default: false)"`
	Limit         int               `json:"limit,omitempty" jsonschema:"Max records or values to return (default: 100)"`
	NormalizeTime bool              `json:"normalize_time,omitempty" jsonschema:"Add _event_time, the parsed _time in RFC 3339, to every record"`
	Timezone      string            `json:"timezone,omitempty" jsonschema:"IANA zone for bounds and normalized times (default: server zone)"`
}

// SearchRelativeInput is the input for splunk_search_relative.
type SearchRelativeInput struct {
	Query         string            `json:"query" jsonschema:"SPL query; a leading 'search' command is added when missing"`
	Anchor        string            `json:"anchor,omitempty" jsonschema:"Center of the window (default: now)"`
	Before        string            `json:"before,omitempty" jsonschema:"Span before the anchor as DD:HH:MM:SS, HH:MM:SS, MM:SS or SS (default: server setting)"`
	After         string            `json:"after,omitempty" jsonschema:"Span after the anchor in the same form as before (default: server setting)"`
	Where         map[string]string `json:"where,omitempty" jsonschema:"Exact field=value matches a record must satisfy; applied before jq and limit"`
	JQ            string            `json:"jq,omitempty" jsonschema:"Optional JQ expression applied to the records"`
	JQMode        string            `json:"jq_mode,omitempty" jsonschema:"each (default) or all"`
	Deduplicate   bool              `json:"deduplicate,omitempty" jsonschema:"Remove duplicate jq values (default: false)"`
	Limit         int               `json:"limit,omitempty" jsonschema:"Max records or values to return (default: 100)"`
	NormalizeTime bool              `json:"normalize_time,omitempty" jsonschema:"Add _event_time to every record"`
	Timezone      string            `json:"timezone,omitempty" jsonschema:"IANA zone for the anchor and normalized times (default: server zone)"`
}

// SearchOutput is the output of the search tools.
type SearchOutput struct {
	SID            string          `json:"sid"`
	State          string          `json:"state"`
	Earliest       string          `json:"earliest,omitempty"`
	Latest         string          `json:"latest,omitempty"`
	Fields         []string        `json:"fields,omitzero"`
	Records        []search.Record `json:"records,omitzero"`
	Values         []any           `json:"values,omitzero"`
	Errors         []string        `json:"errors,omitzero"`
	Messages       []string        `json:"messages,omitzero"`
	TotalRecords   int             `json:"total_records"`
	Matched        int             `json:"matched,omitempty"`
	Returned       int             `json:"returned"`
	Truncated      bool            `json:"truncated,omitempty"`
	PollDurationMs int64           `json:"poll_duration_ms"`
	Hint           string          `json:"hint,omitempty"`
}

func (in SearchInput) options() outputOptions {
	return outputOptions{
		Where:         in.Where,
		JQ:            in.JQ,
		JQMode:        in.JQMode,
		Deduplicate:   in.Deduplicate,
		Limit:         in.Limit,
		NormalizeTime: in.NormalizeTime,
		Timezone:      in.Timezone,
	}
}

func (in SearchRelativeInput) options() outputOptions {
	return outputOptions{
		Where:         in.Where,
		JQ:            in.JQ,
		JQMode:        in.JQMode,
		Deduplicate:   in.Deduplicate,
		Limit:         in.Limit,
		NormalizeTime: in.NormalizeTime,
		Timezone:      in.Timezone,
	}
}

// ToolSearch runs a query over an optional absolute time window.
func ToolSearch(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchInput) (*sdkmcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchInput) (*sdkmcp.CallToolResult, SearchOutput, error) {
		output, err := executeSearch(ctx, d, input)
		return nil, output, err
	}
}

func executeSearch(ctx context.Context, d *Deps, input SearchInput) (SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return SearchOutput{}, ErrInvalidInput("query is required")
	}
	opts := input.options()
	if err := opts.validate(d); err != nil {
		return SearchOutput{}, err
	}

	basis := search.EventTime
	if input.Basis != "" {
		b, err := search.ParseTimeBasis(input.Basis)
		if err != nil {
			return SearchOutput{}, ErrInvalidInput(err.Error())
		}
		basis = b
	}

	loc := search.ResolveLocation(input.Timezone, d.Location)
	start, err := parseTimeInput("earliest", input.Earliest, loc)
	if err != nil {
		return SearchOutput{}, err
	}
	end, err := parseTimeInput("latest", input.Latest, loc)
	if err != nil {
		return SearchOutput{}, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return SearchOutput{}, ErrInvalidInput("latest is before earliest")
	}

	output, err := runSession(ctx, d, opts, func(ctx context.Context, s *search.Session) error {
		return s.QueryWindow(ctx, input.Query, start, end, basis)
	})
	if err != nil {
		return SearchOutput{}, err
	}
	output.Earliest, output.Latest = formatBound(start), formatBound(end)
	return output, nil
}

// ToolSearchRelative runs a query over a window around an anchor time.
func ToolSearchRelative(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchRelativeInput) (*sdkmcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchRelativeInput) (*sdkmcp.CallToolResult, SearchOutput, error) {
		if strings.TrimSpace(input.Query) == "" {
			return nil, SearchOutput{}, ErrInvalidInput("query is required")
		}
		opts := input.options()
		if err := opts.validate(d); err != nil {
			return nil, SearchOutput{}, err
		}

		before := input.Before
		if before == "" {
			before = d.Config.RelativeDurationBefore
		}
		after := input.After
		if after == "" {
			after = d.Config.RelativeDurationAfter
		}
		beforeDur, err := search.ParseDuration(before)
		if err != nil {
			return nil, SearchOutput{}, ErrInvalidInput("before: " + err.Error())
		}
		afterDur, err := search.ParseDuration(after)
		if err != nil {
			return nil, SearchOutput{}, ErrInvalidInput("after: " + err.Error())
		}

		loc := search.ResolveLocation(input.Timezone, d.Location)
		anchor := time.Now().In(loc)
		if input.Anchor != "" {
			t, err := parseTimeInput("anchor", input.Anchor, loc)
			if err != nil {
				return nil, SearchOutput{}, err
			}
			anchor = *t
		}

		output, err := runSession(ctx, d, opts, func(ctx context.Context, s *search.Session) error {
			return s.QueryRelative(ctx, input.Query, anchor, before, after)
		})
		if err != nil {
			return nil, SearchOutput{}, err
		}
		start, end := search.RelativeWindow(anchor, beforeDur, afterDur)
		output.Earliest, output.Latest = formatBound(&start), formatBound(&end)
		return nil, output, nil
	}
}
