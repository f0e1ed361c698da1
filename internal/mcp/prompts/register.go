package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	// Prompt 1: Tool usage guide
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "splunk_search_guide",
		Description: "RECOMMENDED: How to pick between the Splunk search tools, bound time windows and keep output small. Start here.",
	}, HandleSearchGuide(cfg))

	// Prompt 2: Indicator investigation
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "investigate_indicator",
		Description: "Workflow for investigating an IP, domain, user or hash around a point in time with relative and batch searches.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "indicator",
				Description: "Value to look for (e.g., '10.1.2.3', 'evil.example')",
				Required:    false,
			},
			{
				Name:        "event_time",
				Description: "When the indicator was observed; used as the search anchor",
				Required:    false,
			},
			{
				Name:        "index",
				Description: "Splunk index to restrict the search to",
				Required:    false,
			},
		},
	}, HandleInvestigateIndicator(cfg))
}
