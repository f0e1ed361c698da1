package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ResultsSchema returns the JSON Schema a json_rows payload must satisfy,
// reflected from Results. Only rows is required and unknown keys such as
// highlighted are allowed.
func ResultsSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	return r.Reflect(&Results{})
}

var compiledResultsSchema = sync.OnceValues(func() (*validator.Schema, error) {
	raw, err := json.Marshal(ResultsSchema())
	if err != nil {
		return nil, fmt.Errorf("marshaling results schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling results schema: %w", err)
	}

	compiler := validator.NewCompiler()
	if err := compiler.AddResource("results.json", doc); err != nil {
		return nil, fmt.Errorf("adding results schema: %w", err)
	}
	return compiler.Compile("results.json")
})

// printer renders validation errors in English.
var printer = message.NewPrinter(language.English)

// DecodeResults parses a json_rows payload. The payload must match
// ResultsSchema and every row must have exactly one value per field.
func DecodeResults(body []byte) (*Results, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedResponse, err)
	}

	schema, err := compiledResultsSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, describeValidation(err))
	}

	var results Results
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("%w: decoding results: %v", ErrMalformedResponse, err)
	}
	for i, row := range results.Rows {
		if len(row) != len(results.Fields) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d fields",
				ErrMalformedResponse, i, len(row), len(results.Fields))
		}
	}
	if results.Rows == nil {
		results.Rows = [][]any{}
	}
	return &results, nil
}

func describeValidation(err error) string {
	var ve *validator.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}

	var msgs []string
	var walk func(*validator.ValidationError)
	walk = func(e *validator.ValidationError) {
		if e.ErrorKind != nil && len(e.Causes) == 0 {
			path := "/" + strings.Join(e.InstanceLocation, "/")
			msgs = append(msgs, path+": "+e.ErrorKind.LocalizedString(printer))
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)

	if len(msgs) == 0 {
		return err.Error()
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
