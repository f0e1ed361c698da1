package cli

import (
	"github.com/spf13/cobra"

	"github.com/usestring/splunk-mcp/internal/mcp/tools"
)

func newDescribeCmd(a *app) *cobra.Command {
	var input tools.DescribeFieldsInput

	cmd := &cobra.Command{
		Use:     "describe <spl>",
		Short:   "Profile the fields of a search's records",
		Example: `  splunk-search describe 'index=proxy sourcetype=squid' --earliest 03/01/2024:00:00:00 --top 3`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.deps()
			if err != nil {
				return err
			}

			input.Query = args[0]
			_, result, err := tools.ToolDescribeFields(d)(cmd.Context(), nil, input)
			if err != nil {
				return err
			}
			if a.output == outputJSONL {
				for _, f := range result.Fields {
					if err := printJSON(writer(cmd), f, false); err != nil {
						return err
					}
				}
				return nil
			}
			return printJSON(writer(cmd), result, true)
		},
	}

	cmd.Flags().StringVar(&input.Earliest, "earliest", "", "Lower time bound")
	cmd.Flags().StringVar(&input.Latest, "latest", "", "Upper time bound")
	cmd.Flags().StringVar(&input.Basis, "basis", "event", "Time the bounds apply to (event, index)")
	cmd.Flags().StringToStringVar(&input.Where, "where", nil, "Exact field=value matches, comma separated")
	cmd.Flags().IntVar(&input.Top, "top", 0, "Most frequent values listed per field (default 5)")
	cmd.Flags().StringVar(&input.Timezone, "timezone", "", "IANA zone for the bounds")

	return cmd
}
