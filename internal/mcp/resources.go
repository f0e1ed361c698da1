package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/splunk-mcp/internal/mcp/tools"
	"github.com/usestring/splunk-mcp/pkg/client"
	"github.com/usestring/splunk-mcp/pkg/search"
)

// Resource URI scheme: splunk://
// Supported URIs:
//   splunk://config
//   splunk://job/{sid}

const mimeJSON = "application/json"

// registerResources registers resources and resource templates.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         "splunk://config",
		Name:        "Search Settings",
		Description: "Effective Splunk connection and search settings of this server, without credentials.",
		MIMEType:    mimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.5,
		},
	}, s.handleResourceConfig)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "splunk://job/{sid}",
		Name:        "Search Job",
		Description: "Status and complete results of an existing search job, by the sid a search tool returned. High context cost - search tools already return limited records. Only fetch when you need every row.",
		MIMEType:    mimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.4,
		},
	}, s.handleResourceJob)
}

// configView is the credential-free view of the configuration.
type configView struct {
	URI                    string `json:"uri"`
	Username               string `json:"username"`
	NamespaceUser          string `json:"namespace_user"`
	NamespaceApp           string `json:"namespace_app"`
	MaxResultCount         int    `json:"max_result_count"`
	RelativeDurationBefore string `json:"relative_duration_before"`
	RelativeDurationAfter  string `json:"relative_duration_after"`
	QueryTimeout           string `json:"query_timeout"`
	NetworkTimeoutMs       int64  `json:"network_timeout_ms"`
	SSLVerify              bool   `json:"ssl_verify"`
	Timezone               string `json:"timezone"`
	TokenCacheEnabled      bool   `json:"token_cache_enabled"`
}

// Resource handlers

func (s *Server) handleResourceConfig(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	cfg := s.deps.Config
	view := configView{
		URI:                    cfg.SplunkURI,
		Username:               cfg.SplunkUsername,
		NamespaceUser:          cfg.NamespaceUser,
		NamespaceApp:           cfg.NamespaceApp,
		MaxResultCount:         cfg.MaxResultCount,
		RelativeDurationBefore: cfg.RelativeDurationBefore,
		RelativeDurationAfter:  cfg.RelativeDurationAfter,
		QueryTimeout:           search.FormatDuration(cfg.QueryTimeout),
		NetworkTimeoutMs:       cfg.NetworkTimeout.Milliseconds(),
		SSLVerify:              cfg.SSLVerify,
		Timezone:               s.deps.Location.String(),
		TokenCacheEnabled:      s.deps.Tokens != nil,
	}
	return toResourceResult(req.Params.URI, view)
}

// jobView is the content of a job resource.
type jobView struct {
	SID           string          `json:"sid"`
	IsDone        bool            `json:"is_done"`
	IsFailed      bool            `json:"is_failed"`
	DispatchState string          `json:"dispatch_state,omitempty"`
	DoneProgress  float64         `json:"done_progress"`
	ResultCount   int             `json:"result_count"`
	Fields        []string        `json:"fields,omitempty"`
	Records       []search.Record `json:"records,omitempty"`
}

func (s *Server) handleResourceJob(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	sid := params["sid"]

	cfg := s.deps.Config
	ns := client.Namespace{User: cfg.NamespaceUser, App: cfg.NamespaceApp}

	token, err := s.deps.Client.Login(ctx, cfg.SplunkUsername, cfg.SplunkPassword)
	if err != nil {
		return nil, tools.WrapSearchError(fmt.Errorf("%w: %w", search.ErrAuthentication, err))
	}

	status, err := s.deps.Client.GetJobStatus(ctx, ns, token, sid)
	if err != nil {
		return nil, tools.WrapSearchError(fmt.Errorf("%w: %w", search.ErrPoll, err))
	}

	view := jobView{
		SID:           sid,
		IsDone:        status.IsDone,
		IsFailed:      status.IsFailed,
		DispatchState: status.DispatchState,
		DoneProgress:  status.DoneProgress,
		ResultCount:   status.ResultCount,
	}

	// Results of a running job would be partial.
	if status.IsDone {
		results, err := s.deps.Client.GetResults(ctx, ns, token, sid)
		if err != nil {
			return nil, tools.WrapSearchError(fmt.Errorf("%w: %w", search.ErrDownload, err))
		}
		view.Fields = results.Fields
		view.Records = search.Materialize(results)
	}

	return toResourceResult(req.Params.URI, view)
}

// parseResourceURI parses a splunk:// URI into its parameters.
func parseResourceURI(uri string) (map[string]string, error) {
	rest, ok := strings.CutPrefix(uri, "splunk://")
	if !ok {
		return nil, tools.ErrInvalidInput("URI must start with splunk://")
	}

	parts := strings.Split(strings.Trim(rest, "/"), "/")
	params := make(map[string]string)

	switch parts[0] {
	case "job":
		if len(parts) < 2 || parts[1] == "" {
			return nil, tools.ErrInvalidInput("job URI requires a search ID")
		}
		params["sid"] = parts[1]

	default:
		return nil, tools.ErrInvalidInput(fmt.Sprintf("unknown resource type: %s", parts[0]))
	}

	return params, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: mimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
