package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/devinfo/cmd/devinfo/handlers"
)

// Up returns the up command.
func Up(flags *rootFlags) *cobra.Command {
	var waitSSH bool

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Create or update the network, subnet and VM",
		Long: `Up creates the network, subnet and VM that do not exist yet, reuses
the ones that do and prints the stack outputs.

Requires HCLOUD_TOKEN.

Example:
  devinfo up --ssh-key ~/.ssh/id_ed25519.pub`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := flags.options(cmd)
			opts.WaitSSH = waitSSH
			return handlers.Up(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&waitSSH, "wait-ssh", false, "Wait until the VM accepts SSH connections")

	return cmd
}
