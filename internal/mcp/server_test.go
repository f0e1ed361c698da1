package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/splunk-mcp/internal/config"
	"github.com/usestring/splunk-mcp/internal/mcp/tools"
)

func jobHandler(done string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/services/auth/login":
			_, _ = w.Write([]byte("<response><sessionKey>tok</sessionKey></response>"))
		case strings.HasSuffix(r.URL.Path, "/results"):
			_, _ = w.Write([]byte(`{"fields":["host"],"rows":[["web-1"],["web-2"]]}`))
		case strings.HasSuffix(r.URL.Path, "/search/jobs/sid-9"):
			_, _ = w.Write([]byte(`<entry xmlns:s="http://dev.splunk.com/ns/rest"><content><s:dict>` +
				`<s:key name="dispatchState">DONE</s:key><s:key name="isDone">` + done + `</s:key>` +
				`<s:key name="isFailed">0</s:key><s:key name="doneProgress">1.0</s:key>` +
				`<s:key name="resultCount">2</s:key></s:dict></content></entry>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestServer(t *testing.T, handler http.Handler) *Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		SplunkURI:              srv.URL,
		SplunkUsername:         "admin",
		SplunkPassword:         "changeme",
		MaxResultCount:         1000,
		RelativeDurationBefore: "00:00:15",
		RelativeDurationAfter:  "00:00:05",
		QueryTimeout:           time.Minute,
		NetworkTimeout:         5 * time.Second,
		SSLVerify:              true,
		Timezone:               "UTC",
		DefaultRecordLimit:     100,
	}

	s, err := NewServer(tools.NewDeps(cfg), WithBuiltinTools(), WithBuiltinPrompts())
	require.NoError(t, err)
	return s
}

func readResource(t *testing.T, s *Server, uri string, fn func(context.Context, *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error)) map[string]any {
	t.Helper()
	res, err := fn(context.Background(), &sdkmcp.ReadResourceRequest{Params: &sdkmcp.ReadResourceParams{URI: uri}})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &out))
	return out
}

func TestNewServer_RequiresDeps(t *testing.T) {
	_, err := NewServer(nil)
	require.Error(t, err)
}

func TestResourceConfig_OmitsCredentials(t *testing.T) {
	s := newTestServer(t, jobHandler("1"))

	out := readResource(t, s, "splunk://config", s.handleResourceConfig)
	assert.Equal(t, "admin", out["username"])
	assert.Equal(t, "00:00:01:00", out["query_timeout"])
	assert.Equal(t, "UTC", out["timezone"])
	assert.Equal(t, false, out["token_cache_enabled"])
	assert.NotContains(t, out, "password")
}

func TestResourceJob_Done(t *testing.T) {
	s := newTestServer(t, jobHandler("1"))

	out := readResource(t, s, "splunk://job/sid-9", s.handleResourceJob)
	assert.Equal(t, "sid-9", out["sid"])
	assert.Equal(t, true, out["is_done"])
	assert.Equal(t, []any{"host"}, out["fields"])
	require.Len(t, out["records"], 2)
	assert.Equal(t, "web-2", out["records"].([]any)[1].(map[string]any)["host"])
}

func TestResourceJob_RunningHasNoRecords(t *testing.T) {
	s := newTestServer(t, jobHandler("0"))

	out := readResource(t, s, "splunk://job/sid-9", s.handleResourceJob)
	assert.Equal(t, false, out["is_done"])
	assert.NotContains(t, out, "records")
}

func TestResourceJob_UnknownSID(t *testing.T) {
	s := newTestServer(t, jobHandler("1"))

	_, err := s.handleResourceJob(context.Background(), &sdkmcp.ReadResourceRequest{
		Params: &sdkmcp.ReadResourceParams{URI: "splunk://job/missing"},
	})
	require.Error(t, err)

	var coded *tools.CodedError
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, tools.ErrCodeSearchFailed, coded.Code)
}

func TestParseResourceURI(t *testing.T) {
	params, err := parseResourceURI("splunk://job/1712.42")
	require.NoError(t, err)
	assert.Equal(t, "1712.42", params["sid"])

	_, err = parseResourceURI("splunk://job/")
	assert.Error(t, err)

	_, err = parseResourceURI("https://job/1")
	assert.Error(t, err)

	_, err = parseResourceURI("splunk://index/main")
	assert.Error(t, err)
}
