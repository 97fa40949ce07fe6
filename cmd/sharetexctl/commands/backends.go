package commands

import (
	"fmt"

	"github.com/gogpu/sharetex/backend"
	"github.com/spf13/cobra"
)

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List registered backends in selection order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for i, name := range backend.Available() {
				marker := ""
				if i == 0 {
					marker = " (default)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", name, marker)
			}
		},
	}
}
