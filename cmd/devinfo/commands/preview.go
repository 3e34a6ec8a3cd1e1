package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/devinfo/cmd/devinfo/handlers"
)

// Preview returns the preview command.
func Preview(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Show what up would change",
		Long: `Preview compares the declared network, subnet and VM with the last
recorded state and prints the planned actions. It does not call the
Hetzner Cloud API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Preview(cmd.Context(), flags.options(cmd))
		},
	}
}
