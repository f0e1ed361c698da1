// Package query provides JQ-based filtering and projection of search records.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/usestring/splunk-mcp/pkg/search"
)

// Engine executes JQ expressions against search records.
type Engine struct{}

// NewEngine creates a new query engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Result contains the output of a JQ expression over a record set.
type Result struct {
	Values         []any    `json:"values"`                    // Extracted values
	Errors         []string `json:"errors,omitempty"`          // Per-record errors (e.g., type mismatch)
	RawCount       int      `json:"raw_count"`                 // Count before deduplication
	MatchedIndices []int    `json:"matched_indices,omitempty"` // Indices of records that produced values
}

// Run applies expression to each record in turn and collects every value it
// emits. Null outputs are skipped. Runtime errors are reported per record,
// labelled record[i], and do not stop the run.
func (e *Engine) Run(records []search.Record, expression string, deduplicate bool, maxResults int) (*Result, error) {
	code, err := compile(expression)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Values: make([]any, 0),
		Errors: make([]string, 0),
	}

	seen := make(map[string]bool)
	seenErrors := make(map[string]bool)

	for i, rec := range records {
		if maxResults > 0 && len(result.Values) >= maxResults {
			break
		}

		label := fmt.Sprintf("record[%d]", i)
		matched := false
		iter := code.Run(map[string]any(rec))

		for {
			if maxResults > 0 && len(result.Values) >= maxResults {
				break
			}

			v, ok := iter.Next()
			if !ok {
				break
			}

			if err, isErr := v.(error); isErr {
				errMsg := formatJQError(label, err)
				if !seenErrors[errMsg] {
					result.Errors = append(result.Errors, errMsg)
					seenErrors[errMsg] = true
				}
				continue
			}

			if v == nil {
				continue
			}

			result.RawCount++
			if !matched {
				matched = true
				result.MatchedIndices = append(result.MatchedIndices, i)
			}

			if deduplicate {
				key := valueKey(v)
				if seen[key] {
					continue
				}
				seen[key] = true
			}

			result.Values = append(result.Values, v)
		}
	}

	return result, nil
}

// RunAll applies expression once, with the whole record set as a JSON
// array input. Use it for aggregations such as group_by or length.
func (e *Engine) RunAll(records []search.Record, expression string, maxResults int) (*Result, error) {
	code, err := compile(expression)
	if err != nil {
		return nil, err
	}

	input := make([]any, len(records))
	for i, rec := range records {
		input[i] = map[string]any(rec)
	}

	result := &Result{
		Values: make([]any, 0),
		Errors: make([]string, 0),
	}

	iter := code.Run(input)
	for {
		if maxResults > 0 && len(result.Values) >= maxResults {
			break
		}
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			result.Errors = append(result.Errors, formatJQError("records", err))
			continue
		}
		if v == nil {
			continue
		}
		result.RawCount++
		result.Values = append(result.Values, v)
	}

	return result, nil
}

// Select keeps the records for which expression emits a truthy first value.
// Records that raise a runtime error are dropped.
func (e *Engine) Select(records []search.Record, expression string) ([]search.Record, error) {
	code, err := compile(expression)
	if err != nil {
		return nil, err
	}

	kept := make([]search.Record, 0, len(records))
	for _, rec := range records {
		v, ok := code.Run(map[string]any(rec)).Next()
		if !ok {
			continue
		}
		if _, isErr := v.(error); isErr {
			continue
		}
		if truthy(v) {
			kept = append(kept, rec)
		}
	}
	return kept, nil
}

// ValidateExpression checks if a JQ expression is valid without executing it.
func (e *Engine) ValidateExpression(expression string) error {
	_, err := compile(expression)
	return err
}

func compile(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return code, nil
}

// truthy follows jq semantics: only false and null are falsy.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	default:
		return true
	}
}

// formatJQError creates a readable message for a JQ runtime error.
//
// gojq runtime errors such as "cannot iterate over: null" have no typed
// wrappers, so hints are chosen by string matching. They only decorate
// display text.
func formatJQError(label string, err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return fmt.Sprintf("%s: query halted", label)
		}
		return fmt.Sprintf("%s: query halted with: %v", label, haltErr.Value())
	}

	errStr := err.Error()

	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the field may not exist in this record)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(errStr, "object") && strings.Contains(errStr, "cannot be iterated"):
		hint = " (expected array but got object, try removing '[]')"
	case strings.Contains(errStr, "array") && strings.Contains(errStr, "cannot be indexed"):
		hint = " (expected object but got array, try adding '[]')"
	}

	return fmt.Sprintf("%s: %s%s", label, errStr, hint)
}

// valueKey creates a string key for deduplication.
func valueKey(v any) string {
	switch val := v.(type) {
	case string:
		return "s:" + val
	case float64, int:
		return fmt.Sprintf("n:%v", val)
	case bool:
		return fmt.Sprintf("b:%v", val)
	case nil:
		return "null"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("?:%v", val)
		}
		return "j:" + string(b)
	}
}
