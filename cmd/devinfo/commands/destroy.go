package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/devinfo/cmd/devinfo/handlers"
)

// Destroy returns the destroy command.
func Destroy(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "destroy",
		Short: "Delete every resource of the stack",
		Long: `Destroy deletes the resources recorded in the stack state:
  - VM
  - Subnet
  - Network

Resources are deleted in reverse dependency order, then the state itself
is removed. Requires HCLOUD_TOKEN.

WARNING: This operation is irreversible.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), flags.options(cmd))
		},
	}
}
