package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/splunk-mcp/pkg/search"
)

// ParseDurationInput is the input for splunk_parse_duration.
type ParseDurationInput struct {
	Duration string `json:"duration" jsonschema:"Span as DD:HH:MM:SS, HH:MM:SS, MM:SS or SS"`
}

// ParseDurationOutput is the output of splunk_parse_duration.
type ParseDurationOutput struct {
	Seconds    int64  `json:"seconds"`
	Normalized string `json:"normalized"`
	Human      string `json:"human"`
}

// ToolParseDuration checks a relative span before it is used in a search.
func ToolParseDuration(_ *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ParseDurationInput) (*sdkmcp.CallToolResult, ParseDurationOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ParseDurationInput) (*sdkmcp.CallToolResult, ParseDurationOutput, error) {
		d, err := search.ParseDuration(input.Duration)
		if err != nil {
			return nil, ParseDurationOutput{}, ErrInvalidInput(err.Error())
		}
		return nil, ParseDurationOutput{
			Seconds:    int64(d.Seconds()),
			Normalized: search.FormatDuration(d),
			Human:      d.String(),
		}, nil
	}
}
