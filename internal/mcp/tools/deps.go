package tools

import (
	"time"

	"github.com/usestring/splunk-mcp/internal/cache"
	"github.com/usestring/splunk-mcp/internal/config"
	"github.com/usestring/splunk-mcp/internal/query"
	"github.com/usestring/splunk-mcp/pkg/client"
	"github.com/usestring/splunk-mcp/pkg/search"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Client   *client.Client
	Tokens   *cache.TokenCache // nil disables session key reuse
	Config   *config.Config
	Query    *query.Engine
	Location *time.Location

	// Clock overrides the session clock; nil means wall time.
	Clock search.Clock
}

// NewDeps wires the shared client, token cache and query engine from cfg.
func NewDeps(cfg *config.Config) *Deps {
	d := &Deps{
		Client: client.New(
			client.WithBaseURL(cfg.SplunkURI),
			client.WithHTTPClient(client.NewHTTPClient(cfg.NetworkTimeout, !cfg.SSLVerify)),
		),
		Config:   cfg,
		Query:    query.NewEngine(),
		Location: cfg.Location(),
	}
	if cfg.TokenCacheTTL > 0 {
		d.Tokens = cache.NewTokenCache(cfg.TokenCacheMaxItems, cfg.TokenCacheTTL)
	}
	return d
}

// NewSession returns a fresh search session sharing the client and token
// cache. Each tool call owns its session.
func (d *Deps) NewSession() (*search.Session, error) {
	opts := []search.Option{search.WithClient(d.Client)}
	if d.Tokens != nil {
		opts = append(opts, search.WithTokenCache(d.Tokens))
	}
	if d.Clock != nil {
		opts = append(opts, search.WithClock(d.Clock))
	}
	return search.New(d.Config.SessionConfig(), opts...)
}
