package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"
)

// Batch size ceiling.
const maxBatchSearches = 20

// SearchBatchInput is the input for splunk_search_batch.
type SearchBatchInput struct {
	Searches    []SearchInput `json:"searches" jsonschema:"Searches to run, each with the same fields as splunk_search"`
	MaxParallel int           `json:"max_parallel,omitempty" jsonschema:"Searches in flight at once (default: server setting)"`
}

// BatchItem is the outcome of one search in a batch.
type BatchItem struct {
	Index     int           `json:"index"`
	Query     string        `json:"query"`
	OK        bool          `json:"ok"`
	ErrorCode string        `json:"error_code,omitempty"`
	Error     string        `json:"error,omitempty"`
	Result    *SearchOutput `json:"result,omitempty"`
}

// SearchBatchOutput is the output of splunk_search_batch.
type SearchBatchOutput struct {
	Results    []BatchItem `json:"results,omitzero"`
	Succeeded  int         `json:"succeeded"`
	Failed     int         `json:"failed"`
	DurationMs int64       `json:"duration_ms"`
}

// ToolSearchBatch runs independent searches concurrently, one session per
// search. A failing search does not stop the others.
func ToolSearchBatch(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchBatchInput) (*sdkmcp.CallToolResult, SearchBatchOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchBatchInput) (*sdkmcp.CallToolResult, SearchBatchOutput, error) {
		if len(input.Searches) == 0 {
			return nil, SearchBatchOutput{}, ErrInvalidInput("searches is required")
		}
		if len(input.Searches) > maxBatchSearches {
			return nil, SearchBatchOutput{}, ErrInvalidInput(fmt.Sprintf("at most %d searches per batch", maxBatchSearches))
		}

		parallel := input.MaxParallel
		if parallel <= 0 {
			parallel = d.Config.BatchMaxParallel
		}
		parallel = max(1, min(parallel, len(input.Searches)))

		start := time.Now()
		items := make([]BatchItem, len(input.Searches))

		var g errgroup.Group
		g.SetLimit(parallel)
		for i, in := range input.Searches {
			g.Go(func() error {
				items[i] = runBatchItem(ctx, d, i, in)
				return nil
			})
		}
		_ = g.Wait()

		output := SearchBatchOutput{
			Results:    items,
			DurationMs: time.Since(start).Milliseconds(),
		}
		for _, it := range items {
			if it.OK {
				output.Succeeded++
			} else {
				output.Failed++
			}
		}

		slog.Debug("splunk batch finished",
			slog.Int("searches", len(items)),
			slog.Int("failed", output.Failed),
			slog.Int64("duration_ms", output.DurationMs),
		)
		return nil, output, nil
	}
}

func runBatchItem(ctx context.Context, d *Deps, index int, in SearchInput) BatchItem {
	item := BatchItem{Index: index, Query: in.Query}

	result, err := executeSearch(ctx, d, in)
	if err != nil {
		item.Error = err.Error()
		var coded *CodedError
		if errors.As(err, &coded) {
			item.ErrorCode = coded.Code
			item.Error = coded.Message
		}
		return item
	}

	item.OK = true
	item.Result = &result
	return item
}
