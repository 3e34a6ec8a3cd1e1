// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/devinfo/cmd/devinfo/handlers"
)

// rootFlags are bound to persistent flags of the root command.
type rootFlags struct {
	configPath string
	debug      bool
}

// Root returns the root command for the devinfo CLI.
func Root() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "devinfo",
		Short:         "Provision a development VM with its network on Hetzner Cloud",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to configuration file (default ./devinfo.yaml)")
	pf.BoolVarP(&flags.debug, "debug", "v", false, "Enable debug logging")
	pf.String("cloud-id", "", "Cloud id scoping the stack state")
	pf.String("folder-id", "", "Folder id scoping the stack state")
	pf.String("zone", "", "Hetzner location for the subnet and VM")
	pf.String("ssh-key", "", "Path to the SSH public key installed on the VM")
	pf.String("stack", "", "Stack name")
	pf.String("state-backend", "", "State backend: file or s3")
	pf.String("state-path", "", "Directory for the file state backend")

	cmd.AddCommand(Init())
	cmd.AddCommand(Preview(&flags))
	cmd.AddCommand(Up(&flags))
	cmd.AddCommand(Destroy(&flags))
	cmd.AddCommand(Outputs(&flags))
	cmd.AddCommand(Version())

	return cmd
}

// options converts the parsed flags of cmd into handler options.
func (f *rootFlags) options(cmd *cobra.Command) handlers.Options {
	return handlers.Options{
		ConfigPath: f.configPath,
		Flags:      cmd.Flags(),
		Debug:      f.debug,
	}
}
