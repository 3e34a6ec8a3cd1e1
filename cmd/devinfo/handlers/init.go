package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/imamik/devinfo/internal/config"
	"github.com/imamik/devinfo/internal/platform/hcloud"
	"github.com/imamik/devinfo/internal/util/keygen"
)

// Factory function variables for init - can be replaced in tests.
var (
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	runWizard = config.RunWizard

	writeStackConfig = config.WriteStack

	generateKeyPair = keygen.WriteKeyPair
)

// Init runs the configuration wizard and writes the result to outputPath.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Fprintf(stdout, "Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return err
	}

	if result.GenerateKey {
		if err := generateKey(result.SSHPublicKeyPath); err != nil {
			return err
		}
	}

	cfg := result.ToStack()
	if err := writeStackConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)
	return nil
}

// generateKey writes a new key pair whose public half is publicPath.
func generateKey(publicPath string) error {
	expanded, err := config.ExpandHome(publicPath)
	if err != nil {
		return err
	}
	privatePath := keygen.PrivateKeyPath(expanded)
	if _, err := generateKeyPair(privatePath, "devinfo"); err != nil {
		return fmt.Errorf("failed to generate SSH key: %w", err)
	}
	fmt.Fprintf(stdout, "Generated SSH key pair: %s\n", privatePath)
	return nil
}

func printWelcome() {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "devinfo - development VM on Hetzner Cloud")
	fmt.Fprintln(stdout, "=========================================")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "This wizard writes the provisioning configuration.")
	fmt.Fprintln(stdout)
}

func printInitSuccess(outputPath string, cfg *config.Stack) {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Configuration saved!")
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "  File: %s\n", outputPath)
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, "Stack Summary")
	fmt.Fprintln(stdout, "-------------")
	fmt.Fprintf(stdout, "  Stack:   %s\n", cfg.Name)
	fmt.Fprintf(stdout, "  Scope:   %s/%s\n", cfg.CloudID, cfg.FolderID)
	fmt.Fprintf(stdout, "  Zone:    %s\n", cfg.Zone)
	fmt.Fprintf(stdout, "  SSH key: %s\n", cfg.SSHPublicKeyPath)
	fmt.Fprintf(stdout, "  State:   %s\n", cfg.State.Backend)
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, "Next Steps")
	fmt.Fprintln(stdout, "----------")
	fmt.Fprintln(stdout, "  1. Set your Hetzner Cloud API token:")
	fmt.Fprintf(stdout, "     export %s=<your-token>\n", hcloud.TokenEnv)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "  2. Review the plan:")
	fmt.Fprintln(stdout, "     devinfo preview")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "  3. Create the VM:")
	fmt.Fprintln(stdout, "     devinfo up")
	fmt.Fprintln(stdout)
}
