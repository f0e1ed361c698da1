package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/splunk-mcp/pkg/search"
)

func proxyRecords() []search.Record {
	return []search.Record{
		{"_time": "2024-01-01T10:00:00.000+00:00", "host": "web-1", "status": "200", "bytes": float64(512)},
		{"_time": "2024-01-01T10:00:01.000+00:00", "host": "web-2", "status": "500", "bytes": float64(64)},
		{"_time": "2024-01-01T10:00:02.000+00:00", "host": "web-1", "status": "200", "bytes": float64(2048)},
	}
}

func TestEngine_Run_Field(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Run(proxyRecords(), ".host", false, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"web-1", "web-2", "web-1"}, result.Values)
	assert.Equal(t, 3, result.RawCount)
	assert.Equal(t, []int{0, 1, 2}, result.MatchedIndices)
}

func TestEngine_Run_Deduplicate(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Run(proxyRecords(), ".host", true, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"web-1", "web-2"}, result.Values)
	assert.Equal(t, 3, result.RawCount)
}

func TestEngine_Run_MaxResults(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Run(proxyRecords(), ".bytes", false, 2)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(512), float64(64)}, result.Values)
}

func TestEngine_Run_SelectSkipsNil(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Run(proxyRecords(), `select(.status == "500") | .host`, false, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"web-2"}, result.Values)
	assert.Equal(t, []int{1}, result.MatchedIndices)
}

func TestEngine_Run_Projection(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Run(proxyRecords()[:1], `{host, bytes}`, false, 0)
	require.NoError(t, err)
	require.Len(t, result.Values, 1)

	first := result.Values[0].(map[string]any)
	assert.Equal(t, "web-1", first["host"])
	assert.Equal(t, float64(512), first["bytes"])
}

func TestEngine_Run_RuntimeErrorsLabelled(t *testing.T) {
	engine := NewEngine()

	records := []search.Record{
		{"tags": []any{"a"}},
		{"tags": nil},
		{"tags": []any{"b"}},
	}

	result, err := engine.Run(records, ".tags[]", false, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, result.Values)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "record[1]")
	assert.Contains(t, result.Errors[0], "may not exist")
}

func TestEngine_Run_InvalidExpression(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Run(proxyRecords(), ".host[", false, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid jq expression")
}

func TestEngine_Run_Empty(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Run([]search.Record{}, ".host", false, 0)
	require.NoError(t, err)
	assert.Empty(t, result.Values)
	assert.Zero(t, result.RawCount)
}

func TestEngine_RunAll_Aggregate(t *testing.T) {
	engine := NewEngine()

	result, err := engine.RunAll(proxyRecords(), `length`, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{3}, result.Values)

	result, err = engine.RunAll(proxyRecords(), `map(.bytes) | add`, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(2624)}, result.Values)

	result, err = engine.RunAll(proxyRecords(), `group_by(.host) | map({host: .[0].host, n: length}) | .[]`, 0)
	require.NoError(t, err)
	require.Len(t, result.Values, 2)
	assert.Equal(t, "web-1", result.Values[0].(map[string]any)["host"])
	assert.Equal(t, 2, result.Values[0].(map[string]any)["n"])
}

func TestEngine_Select(t *testing.T) {
	engine := NewEngine()

	kept, err := engine.Select(proxyRecords(), `.bytes > 100`)
	require.NoError(t, err)
	require.Len(t, kept, 2)
	assert.Equal(t, float64(512), kept[0]["bytes"])
	assert.Equal(t, float64(2048), kept[1]["bytes"])

	kept, err = engine.Select(proxyRecords(), `.missing`)
	require.NoError(t, err)
	assert.Empty(t, kept)
}

func TestEngine_ValidateExpression(t *testing.T) {
	engine := NewEngine()

	assert.NoError(t, engine.ValidateExpression(".host"))
	assert.NoError(t, engine.ValidateExpression(`select(.status == "200")`))

	assert.Error(t, engine.ValidateExpression(".host["))
	assert.Error(t, engine.ValidateExpression("invalid("))
}
