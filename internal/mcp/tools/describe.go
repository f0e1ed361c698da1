package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/splunk-mcp/internal/profile"
)

// DescribeFieldsInput is the input for splunk_describe_fields.
type DescribeFieldsInput struct {
	Query    string            `json:"query" jsonschema:"SPL query whose records are profiled"`
	Earliest string            `json:"earliest,omitempty" jsonschema:"Lower time bound (MM/DD/YYYY:HH:MM:SS or any common layout)"`
	Latest   string            `json:"latest,omitempty" jsonschema:"Upper time bound (MM/DD/YYYY:HH:MM:SS or any common layout)"`
	Basis    string            `json:"basis,omitempty" jsonschema:"Which time the bounds apply to: event (default) or index"`
	Where    map[string]string `json:"where,omitempty" jsonschema:"Exact field=value matches a record must satisfy"`
	Top      int               `json:"top,omitempty" jsonschema:"Most frequent values listed per field (default: 5)"`
	Timezone string            `json:"timezone,omitempty" jsonschema:"IANA zone for the bounds (default: server zone)"`
}

// DescribeFieldsOutput is the output of splunk_describe_fields.
type DescribeFieldsOutput struct {
	SID          string              `json:"sid"`
	Earliest     string              `json:"earliest,omitempty"`
	Latest       string              `json:"latest,omitempty"`
	TotalRecords int                 `json:"total_records"`
	Profiled     int                 `json:"profiled"`
	Fields       []profile.FieldStat `json:"fields,omitzero"`
	Hint         string              `json:"hint,omitempty"`
}

// ToolDescribeFields runs a search and profiles the fields of its records
// instead of returning them.
func ToolDescribeFields(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input DescribeFieldsInput) (*sdkmcp.CallToolResult, DescribeFieldsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input DescribeFieldsInput) (*sdkmcp.CallToolResult, DescribeFieldsOutput, error) {
		out, err := executeSearch(ctx, d, SearchInput{
			Query:    input.Query,
			Earliest: input.Earliest,
			Latest:   input.Latest,
			Basis:    input.Basis,
			Where:    input.Where,
			Limit:    d.Config.MaxRecordLimit,
			Timezone: input.Timezone,
		})
		if err != nil {
			return nil, DescribeFieldsOutput{}, err
		}

		result := DescribeFieldsOutput{
			SID:          out.SID,
			Earliest:     out.Earliest,
			Latest:       out.Latest,
			TotalRecords: out.TotalRecords,
			Profiled:     len(out.Records),
			Fields:       profile.Fields(out.Records, profile.Options{Top: input.Top}),
		}
		switch {
		case result.Profiled == 0:
			result.Hint = out.Hint
		case out.Truncated:
			result.Hint = "profile covers the first records only; narrow the time window for a complete view"
		}
		return nil, result, nil
	}
}
