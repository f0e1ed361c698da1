// Package mcpsrv provides an extensible MCP server for Splunk searches.
//
// This package exposes a high-level API for creating and running an MCP server
// with all builtin Splunk tools, prompts, and resources. Users can extend the
// server with custom tools, prompts, and resources using functional options.
//
// # Basic Usage
//
// Create a server configured from SPLUNK_* environment variables:
//
//	server, err := mcpsrv.NewServer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
// Add custom tools using MCP SDK types directly:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type MyInput struct {
//	    Query string `json:"query"`
//	}
//
//	type MyOutput struct {
//	    Count int `json:"count"`
//	}
//
//	func myHandler(ctx context.Context, req *mcp.CallToolRequest, input MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	    return nil, MyOutput{Count: 42}, nil
//	}
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithTool(&mcp.Tool{Name: "my_tool", Description: "My tool"}, myHandler),
//	)
//
// Tools that run searches should use [WithDepsTool] and [Deps.NewSession].
//
// # Configuration
//
// Override connection and logging settings:
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithSplunkURI("https://splunk.example.com:8089"),
//	    mcpsrv.WithCredentials("svc-mcp", os.Getenv("SPLUNK_PASSWORD")),
//	    mcpsrv.WithTokenCache(10*time.Minute),
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/splunk-mcp.log"),
//	)
package mcpsrv
