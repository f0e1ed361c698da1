package mcpsrv

import (
	"time"

	"github.com/usestring/splunk-mcp/internal/cache"
	"github.com/usestring/splunk-mcp/internal/config"
	"github.com/usestring/splunk-mcp/internal/query"
	"github.com/usestring/splunk-mcp/pkg/client"
	"github.com/usestring/splunk-mcp/pkg/search"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
type Deps struct {
	Client   *client.Client
	Tokens   *cache.TokenCache // nil when session key reuse is off
	Config   *config.Config
	Query    *query.Engine
	Location *time.Location

	newSession func() (*search.Session, error)
}

// NewSession returns a search session wired like the builtin tools use:
// shared client, shared token cache, configured defaults.
func (d *Deps) NewSession() (*search.Session, error) {
	return d.newSession()
}
