package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/usestring/splunk-mcp/pkg/search"
)

func TestCheckOutputSchema_panicsOnNilSlice(t *testing.T) {
	type BadOutput struct {
		Fields []string `json:"fields"` // nil marshals to null, schema wants an array
	}
	assert.Panics(t, func() {
		CheckOutputSchema[BadOutput]("test_bad_tool")
	})
}

func TestCheckOutputSchema_panicsOnNilRecords(t *testing.T) {
	type BadOutput struct {
		SID     string          `json:"sid"`
		Records []search.Record `json:"records"`
	}
	assert.Panics(t, func() {
		CheckOutputSchema[BadOutput]("test_bad_records")
	})
}

func TestCheckOutputSchema_okWithOmitzero(t *testing.T) {
	type GoodOutput struct {
		Records []search.Record `json:"records,omitzero"`
		Values  []any           `json:"values,omitzero"`
	}
	assert.NotPanics(t, func() {
		CheckOutputSchema[GoodOutput]("test_good_tool")
	})
}

func TestCheckOutputSchema_okWithOmitempty(t *testing.T) {
	type GoodOutput struct {
		Fields []string `json:"fields,omitempty"`
	}
	assert.NotPanics(t, func() {
		CheckOutputSchema[GoodOutput]("test_good_tool")
	})
}

func TestCheckOutputSchema_okWithAny(t *testing.T) {
	assert.NotPanics(t, func() {
		CheckOutputSchema[any]("test_any_tool")
	})
}

func TestCheckOutputSchema_okWithPointer(t *testing.T) {
	type Output struct {
		Result *SearchOutput `json:"result,omitempty"`
	}
	assert.NotPanics(t, func() {
		CheckOutputSchema[*Output]("test_ptr_tool")
	})
}

func TestCheckOutputSchema_toolOutputs(t *testing.T) {
	assert.NotPanics(t, func() {
		CheckOutputSchema[SearchOutput]("splunk_search")
		CheckOutputSchema[SearchBatchOutput]("splunk_search_batch")
		CheckOutputSchema[ParseDurationOutput]("splunk_parse_duration")
		CheckOutputSchema[DescribeFieldsOutput]("splunk_describe_fields")
	})
}
