package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/usestring/splunk-mcp/internal/mcp/tools"
)

const (
	outputJSON  = "json"
	outputJSONL = "jsonl"
)

func validateOutputFormat(output string) error {
	if output != outputJSON && output != outputJSONL {
		return fmt.Errorf("unsupported output format %q: use 'json' or 'jsonl'", output)
	}
	return nil
}

func printJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// printSearch writes the whole output as one JSON document, or one line
// per record (or jq value) for jsonl.
func printSearch(w io.Writer, format string, out tools.SearchOutput) error {
	if format == outputJSON {
		return printJSON(w, out, true)
	}

	if out.Values != nil {
		for _, v := range out.Values {
			if err := printJSON(w, v, false); err != nil {
				return err
			}
		}
		return nil
	}
	for _, rec := range out.Records {
		if err := printJSON(w, rec, false); err != nil {
			return err
		}
	}
	return nil
}
