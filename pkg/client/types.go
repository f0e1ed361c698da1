package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Output modes accepted by the results endpoint.
const (
	OutputModeJSONRows = "json_rows"
)

// Dispatch states reported by a search job.
const (
	DispatchQueued     = "QUEUED"
	DispatchParsing    = "PARSING"
	DispatchRunning    = "RUNNING"
	DispatchFinalizing = "FINALIZING"
	DispatchDone       = "DONE"
	DispatchFailed     = "FAILED"
	DispatchPaused     = "PAUSED"
)

// WildcardNamespace selects any user or app.
const WildcardNamespace = "-"

// ErrMalformedResponse is returned when a successful response body cannot
// be interpreted.
var ErrMalformedResponse = errors.New("malformed response")

// Namespace scopes search jobs to a user/app context.
// Empty fields are treated as the wildcard "-".
type Namespace struct {
	User string
	App  string
}

func (n Namespace) path() string {
	user, app := n.User, n.App
	if user == "" {
		user = WildcardNamespace
	}
	if app == "" {
		app = WildcardNamespace
	}
	return "/servicesNS/" + user + "/" + app
}

// JobStatus is the subset of search job properties used to track progress.
type JobStatus struct {
	SID           string
	IsDone        bool
	IsFailed      bool
	DispatchState string
	DoneProgress  float64
	ResultCount   int
}

// Message is a diagnostic message attached to search results.
type Message struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Results is a tabular result set in json_rows form. Fields are the column
// names; every row is aligned positionally to Fields.
type Results struct {
	Preview    bool      `json:"preview"`
	InitOffset int       `json:"init_offset"`
	Messages   []Message `json:"messages,omitempty"`
	Fields     []string  `json:"fields"`
	Rows       [][]any   `json:"rows" jsonschema:"required"`
}

// APIError represents an error response from the Splunk API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("splunk API error %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is an APIError for a rejected or
// expired session token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
