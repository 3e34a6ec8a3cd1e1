package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/devinfo/cmd/devinfo/handlers"
)

// Outputs returns the outputs command.
func Outputs(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "outputs",
		Short: "Print the outputs recorded by the last up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Outputs(cmd.Context(), flags.options(cmd))
		},
	}
}
