package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usestring/splunk-mcp/pkg/search"
)

func newDurationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duration <DD:HH:MM:SS>",
		Short: "Validate a relative span and print it in seconds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := search.ParseDuration(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(writer(cmd), "%s = %d seconds (%s)\n", search.FormatDuration(d), int64(d.Seconds()), d)
			return err
		},
	}
}
