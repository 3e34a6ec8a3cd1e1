package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/devinfo/cmd/devinfo/handlers"
	"github.com/imamik/devinfo/internal/config"
)

// Init returns the init command.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		Long: `Init asks for the stack name, scope, zone, SSH public key and
state backend, then writes them to a configuration file.

Example:
  devinfo init
  devinfo init -o dev.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", config.DefaultFileName, "Output file path")

	return cmd
}
