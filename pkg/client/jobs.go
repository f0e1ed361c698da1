package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/antchfx/xmlquery"
)

// CreateJob submits a search and returns the search ID assigned by the
// server. maxCount caps the number of results the job retains.
func (c *Client) CreateJob(ctx context.Context, ns Namespace, token, search string, maxCount int) (string, error) {
	body, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   ns.path() + "/search/jobs",
		form: url.Values{
			"search":    {search},
			"max_count": {strconv.Itoa(maxCount)},
		},
		token:  token,
		expect: http.StatusCreated,
	})
	if err != nil {
		return "", fmt.Errorf("creating search job: %w", err)
	}

	sid, err := xmlText(body, "//sid")
	if err != nil {
		return "", fmt.Errorf("creating search job: %w", err)
	}
	return sid, nil
}

// GetJobStatus retrieves the progress of a search job.
// A body without a readable isDone flag is reported as ErrMalformedResponse.
func (c *Client) GetJobStatus(ctx context.Context, ns Namespace, token, sid string) (*JobStatus, error) {
	body, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   ns.path() + "/search/jobs/" + url.PathEscape(sid),
		token:  token,
		expect: http.StatusOK,
	})
	if err != nil {
		return nil, fmt.Errorf("getting status of search job %q: %w", sid, err)
	}

	status, err := parseJobStatus(body)
	if err != nil {
		return nil, fmt.Errorf("getting status of search job %q: %w", sid, err)
	}
	status.SID = sid
	return status, nil
}

func parseJobStatus(body []byte) (*JobStatus, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing XML: %v", ErrMalformedResponse, err)
	}

	done, err := nodeText(doc, dictKey("isDone"))
	if err != nil {
		return nil, err
	}
	status := &JobStatus{}
	switch done {
	case "1":
		status.IsDone = true
	case "0":
	default:
		return nil, fmt.Errorf("%w: isDone value %q", ErrMalformedResponse, done)
	}

	// The remaining properties are informational only.
	if v, err := nodeText(doc, dictKey("isFailed")); err == nil {
		status.IsFailed = v == "1"
	}
	if v, err := nodeText(doc, dictKey("dispatchState")); err == nil {
		status.DispatchState = v
	}
	if v, err := nodeText(doc, dictKey("doneProgress")); err == nil {
		status.DoneProgress, _ = strconv.ParseFloat(v, 64)
	}
	if v, err := nodeText(doc, dictKey("resultCount")); err == nil {
		status.ResultCount, _ = strconv.Atoi(v)
	}
	return status, nil
}

// GetResults downloads every result row of a finished search job.
func (c *Client) GetResults(ctx context.Context, ns Namespace, token, sid string) (*Results, error) {
	body, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   ns.path() + "/search/jobs/" + url.PathEscape(sid) + "/results",
		query: url.Values{
			"count":       {"0"},
			"output_mode": {OutputModeJSONRows},
		},
		token:  token,
		expect: http.StatusOK,
	})
	if err != nil {
		return nil, fmt.Errorf("downloading results of search job %q: %w", sid, err)
	}

	results, err := DecodeResults(body)
	if err != nil {
		return nil, fmt.Errorf("downloading results of search job %q: %w", sid, err)
	}
	return results, nil
}
