package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleInvestigateIndicator walks through pivoting on an indicator seen at
// a point in time.
func HandleInvestigateIndicator(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		args := req.Params.Arguments

		indicator := ""
		eventTime := ""
		index := ""
		if args != nil {
			indicator = args["indicator"]
			eventTime = args["event_time"]
			index = args["index"]
		}

		var sb strings.Builder

		sb.WriteString("# Investigate an Indicator in Splunk\n\n")
		sb.WriteString("You are a security analyst. Establish what happened around an indicator ")
		sb.WriteString("(IP, domain, user, hash) using bounded Splunk searches.\n\n")

		sb.WriteString("## Workflow Steps\n\n")

		scope := "index=*"
		if index != "" {
			scope = "index=" + index
		}
		term := "<indicator>"
		if indicator != "" {
			term = fmt.Sprintf("%q", indicator)
		}

		sb.WriteString("1. **Locate the event**\n")
		if eventTime != "" {
			fmt.Fprintf(&sb, "   - `splunk_search_relative(query: %q, anchor: %q)`\n", scope+" "+term, eventTime)
			fmt.Fprintf(&sb, "   - The default window is %s before and %s after the anchor\n",
				cfg.RelativeDurationBefore, cfg.RelativeDurationAfter)
		} else {
			fmt.Fprintf(&sb, "   - `splunk_search(query: %q)` to see where it appears\n", scope+" "+term+" | stats count by index, sourcetype")
		}
		sb.WriteString("   - Set `normalize_time: true` so timestamps from different sources line up\n\n")

		sb.WriteString("2. **Widen around the hit**\n")
		sb.WriteString("   - Re-run with `before: \"00:15:00\"` and `after: \"00:15:00\"` on the hosts involved\n")
		sb.WriteString("   - If data arrives late, repeat with `basis: \"index\"` on splunk_search\n\n")

		sb.WriteString("3. **Pivot in parallel**\n")
		sb.WriteString("   - Use `splunk_search_batch` for the related hosts, users and destinations you found\n")
		sb.WriteString("   - Use `jq: \"{_event_time, host, user, dest}\"` to keep each result compact\n\n")

		sb.WriteString("4. **Summarize**\n")
		sb.WriteString("   - Timeline of events with `_event_time`, source and what changed\n")
		sb.WriteString("   - Searches that returned nothing, with the windows used\n")

		return &sdkmcp.GetPromptResult{
			Description: "Investigate an indicator around a point in time",
			Messages: []*sdkmcp.PromptMessage{
				{Role: "user", Content: &sdkmcp.TextContent{Text: sb.String()}},
			},
		}, nil
	}
}
