package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	// Tool 1: splunk_search
	AddTool(srv, &sdkmcp.Tool{
		Name:        "splunk_search",
		Description: "Run a Splunk search to completion and return its records. Optional earliest/latest bound the search on event time, or on index time with basis=index; an omitted bound leaves that side open. Returns {sid, state, fields, records, total_records, returned, truncated, poll_duration_ms, hint}. Set jq to project or filter records server-side; values then replace records. Use splunk_search_relative to search around a known timestamp.",
	}, ToolSearch(d))

	// Tool 2: splunk_search_relative
	AddTool(srv, &sdkmcp.Tool{
		Name:        "splunk_search_relative",
		Description: "Run a Splunk search over the window [anchor - before, anchor + after] on event time. anchor defaults to now; before/after are DD:HH:MM:SS spans defaulting to the server settings. Returns the same shape as splunk_search, including the earliest/latest actually used.",
	}, ToolSearchRelative(d))

	// Tool 3: splunk_search_batch
	AddTool(srv, &sdkmcp.Tool{
		Name:        "splunk_search_batch",
		Description: "Run up to 20 independent splunk_search requests concurrently. Each search gets its own session; a failure is reported in that item's error_code/error and does not affect the others. Returns {results: [{index, query, ok, error_code, error, result}], succeeded, failed, duration_ms}.",
	}, ToolSearchBatch(d))

	// Tool 4: splunk_parse_duration
	AddTool(srv, &sdkmcp.Tool{
		Name:        "splunk_parse_duration",
		Description: "Validate a DD:HH:MM:SS span as accepted by splunk_search_relative and return it in seconds and normalized form.",
	}, ToolParseDuration(d))

	// Tool 5: splunk_describe_fields
	AddTool(srv, &sdkmcp.Tool{
		Name:        "splunk_describe_fields",
		Description: "Run a Splunk search and profile its fields instead of returning records. Per field: type, frequency, required, distinct_count, examples, detected format (ip, uuid, iso8601, url, email, numeric, enum) and top values. Use it before writing jq or where filters against an unfamiliar sourcetype.",
	}, ToolDescribeFields(d))
}
