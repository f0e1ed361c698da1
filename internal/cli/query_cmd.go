package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/usestring/splunk-mcp/internal/mcp/tools"
)

// outputFlags are shared by the search commands.
type outputFlags struct {
	where         map[string]string
	jq            string
	jqMode        string
	dedup         bool
	limit         int
	normalizeTime bool
	timezone      string
}

func (f *outputFlags) register(fs *pflag.FlagSet) {
	fs.StringToStringVar(&f.where, "where", nil, "Exact field=value matches, comma separated (e.g. host=web-1,status=500)")
	fs.StringVar(&f.jq, "jq", "", "JQ expression applied to the records")
	fs.StringVar(&f.jqMode, "jq-mode", tools.JQModeEach, "Apply jq to each record or once to all records (each, all)")
	fs.BoolVar(&f.dedup, "dedup", false, "Drop duplicate jq values")
	fs.IntVarP(&f.limit, "limit", "n", 0, "Max records or values to print (default $DEFAULT_RECORD_LIMIT or 100)")
	fs.BoolVar(&f.normalizeTime, "normalize-time", false, "Add _event_time, the parsed _time in RFC 3339, to each record")
	fs.StringVar(&f.timezone, "timezone", "", "IANA zone for times (default $SPLUNK_TIMEZONE or local)")
}

func newQueryCmd(a *app) *cobra.Command {
	var (
		earliest string
		latest   string
		basis    string
		out      outputFlags
	)

	cmd := &cobra.Command{
		Use:   "query <spl>",
		Short: "Run a search over an optional absolute time window",
		Example: `  splunk-search query 'index=proxy dest=evil.example' --earliest 03/01/2024:10:00:00 --latest 03/01/2024:11:00:00
  splunk-search query 'index=proxy' --basis index --earliest 2024-03-01T10:00:00Z --jq '{host, dest}' -o jsonl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.deps()
			if err != nil {
				return err
			}

			_, result, err := tools.ToolSearch(d)(cmd.Context(), nil, tools.SearchInput{
				Query:         args[0],
				Earliest:      earliest,
				Latest:        latest,
				Basis:         basis,
				Where:         out.where,
				JQ:            out.jq,
				JQMode:        out.jqMode,
				Deduplicate:   out.dedup,
				Limit:         out.limit,
				NormalizeTime: out.normalizeTime,
				Timezone:      out.timezone,
			})
			if err != nil {
				return err
			}
			return printSearch(writer(cmd), a.output, result)
		},
	}

	cmd.Flags().StringVar(&earliest, "earliest", "", "Lower time bound (MM/DD/YYYY:HH:MM:SS or a common layout)")
	cmd.Flags().StringVar(&latest, "latest", "", "Upper time bound (MM/DD/YYYY:HH:MM:SS or a common layout)")
	cmd.Flags().StringVar(&basis, "basis", "event", "Time the bounds apply to (event, index)")
	out.register(cmd.Flags())

	return cmd
}
