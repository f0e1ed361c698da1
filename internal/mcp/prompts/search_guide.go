package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleSearchGuide serves the tool usage guide.
func HandleSearchGuide(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var sb strings.Builder

		sb.WriteString("# Splunk Search Tool Guide\n\n")

		sb.WriteString("## Choosing a Tool\n\n")
		sb.WriteString("| Goal | Tool | Example |\n")
		sb.WriteString("|------|------|--------|\n")
		sb.WriteString("| Search a fixed time range | `splunk_search` | `earliest: \"03/01/2024:10:00:00\", latest: \"03/01/2024:11:00:00\"` |\n")
		sb.WriteString("| Search around a known timestamp | `splunk_search_relative` | `anchor: \"2024-03-01T10:15:00Z\", before: \"00:05:00\"` |\n")
		sb.WriteString("| Search by ingestion time | `splunk_search` | `basis: \"index\"` |\n")
		sb.WriteString("| Several unrelated lookups at once | `splunk_search_batch` | `searches: [{query: ...}, {query: ...}]` |\n")
		sb.WriteString("| Check a span before using it | `splunk_parse_duration` | `duration: \"01:00:00\"` |\n")
		sb.WriteString("| Learn the fields of a sourcetype | `splunk_describe_fields` | `query: \"index=proxy sourcetype=squid\"` |\n")

		sb.WriteString("\n**Key rules**:\n")
		sb.WriteString("- Queries without a leading `search` command get one; time bounds are inserted right after it\n")
		sb.WriteString("- Leave earliest or latest out to keep that side of the window open\n")
		fmt.Fprintf(&sb, "- Relative windows default to %s before and %s after the anchor (DD:HH:MM:SS)\n",
			cfg.RelativeDurationBefore, cfg.RelativeDurationAfter)
		fmt.Fprintf(&sb, "- At most %d records are returned unless `limit` says otherwise; check `truncated`\n", cfg.DefaultRecordLimit)

		sb.WriteString("\n## Keeping Output Small\n")
		sb.WriteString("- Prefer SPL `| table` or `| fields` to cut columns before they leave Splunk\n")
		sb.WriteString("- Use `where` for exact matches: `where: {status: \"500\"}` keeps matching records before jq and limit\n")
		sb.WriteString("- Use `jq` for post-processing: `jq: \"{host, status}\"` projects each record\n")
		sb.WriteString("- Use `jq_mode: \"all\"` for aggregates: `jq: \"group_by(.host) | map({host: .[0].host, n: length})\"`\n")
		sb.WriteString("- Set `normalize_time: true` with `timezone` to get `_event_time` in one zone\n")

		sb.WriteString("\n## Errors\n")
		sb.WriteString("- `AUTH_FAILED`: credentials rejected; do not retry\n")
		sb.WriteString("- `SEARCH_FAILED`: Splunk rejected or lost the job; the message carries Splunk's reason, fix the SPL\n")
		sb.WriteString("- `TIMEOUT`: the job ran past the query timeout; narrow the window\n")
		sb.WriteString("- `CANCELLED`: the request was cancelled\n")
		if cfg.TokenCacheEnabled {
			sb.WriteString("\nSession keys are reused between calls, so repeated searches skip the login round trip.\n")
		}

		return &sdkmcp.GetPromptResult{
			Description: "How to use the Splunk search tools efficiently",
			Messages: []*sdkmcp.PromptMessage{
				{Role: "user", Content: &sdkmcp.TextContent{Text: sb.String()}},
			},
		}, nil
	}
}
