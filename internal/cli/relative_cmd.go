package cli

import (
	"github.com/spf13/cobra"

	"github.com/usestring/splunk-mcp/internal/mcp/tools"
)

func newRelativeCmd(a *app) *cobra.Command {
	var (
		anchor string
		before string
		after  string
		out    outputFlags
	)

	cmd := &cobra.Command{
		Use:   "relative <spl>",
		Short: "Run a search over a window around an anchor time",
		Example: `  splunk-search relative 'index=proxy src=10.1.2.3' --anchor 2024-03-01T10:15:00Z --before 00:05:00 --after 00:01:00
  splunk-search relative 'index=auth user=alice' --normalize-time --timezone Europe/Berlin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.deps()
			if err != nil {
				return err
			}

			_, result, err := tools.ToolSearchRelative(d)(cmd.Context(), nil, tools.SearchRelativeInput{
				Query:         args[0],
				Anchor:        anchor,
				Before:        before,
				After:         after,
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

	cmd.Flags().StringVar(&anchor, "anchor", "", "Center of the window (default: now)")
	cmd.Flags().StringVar(&before, "before", "", "Span before the anchor as DD:HH:MM:SS (default $SPLUNK_RELATIVE_DURATION_BEFORE or 00:00:15)")
	cmd.Flags().StringVar(&after, "after", "", "Span after the anchor as DD:HH:MM:SS (default $SPLUNK_RELATIVE_DURATION_AFTER or 00:00:05)")
	out.register(cmd.Flags())

	return cmd
}
