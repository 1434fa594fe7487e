package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CherkashinEvgeny/goadvice/aspect"
	"github.com/CherkashinEvgeny/goadvice/example"
)

func newMarkersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "markers [marker...]",
		Short: "List markers and the operations bound to them",
		RunE: func(cmd *cobra.Command, args []string) error {
			wanted := map[aspect.Marker]bool{}
			for _, arg := range args {
				m, err := aspect.ParseMarker(arg)
				if err != nil {
					return err
				}
				wanted[m] = true
			}
			for _, b := range example.Bindings() {
				if len(wanted) > 0 && !wanted[b.Marker] {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s()\n", b.Marker, b.Name)
			}
			return nil
		},
	}
}
