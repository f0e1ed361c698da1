package tools

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// AddTool registers a tool after checking that an empty result of type Out
// satisfies the output schema the SDK will infer for it. A failed search
// still returns the zero output, so a nil slice that marshals to null would
// otherwise only show up as a protocol error on the first failure.
//
// Panics when the check fails.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	CheckOutputSchema[Out](t.Name)
	sdkmcp.AddTool(srv, t, h)
}

// CheckOutputSchema panics when the zero value of T does not validate
// against the schema inferred from T. The untyped any output is skipped.
func CheckOutputSchema[T any](toolName string) {
	if err := zeroValueSchemaError(reflect.TypeFor[T]()); err != nil {
		panic(fmt.Sprintf("tool %q: %v\n"+
			"  Fix: tag slice and map fields with omitzero, or initialize them to empty values", toolName, err))
	}
}

func zeroValueSchemaError(rt reflect.Type) error {
	if rt == reflect.TypeFor[any]() {
		return nil
	}
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	// Inference problems are reported by sdkmcp.AddTool itself.
	schema, err := jsonschema.ForType(rt, &jsonschema.ForOptions{})
	if err != nil {
		return nil
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return nil
	}

	data, err := json.Marshal(reflect.Zero(rt).Interface())
	if err != nil {
		return fmt.Errorf("marshal zero %s: %w", rt, err)
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("zero %s is not a JSON object: %s", rt, data)
	}
	if err := resolved.Validate(&v); err != nil {
		return fmt.Errorf("zero %s fails its output schema: %v (JSON: %s)", rt, err, data)
	}
	return nil
}
