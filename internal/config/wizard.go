package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

// WizardResult holds the user's choices from the init wizard.
type WizardResult struct {
	Stack            string
	CloudID          string
	FolderID         string
	Zone             string
	SSHPublicKeyPath string
	// GenerateKey requests a new key pair at SSHPublicKeyPath.
	GenerateKey   bool
	StateBackend  string
	StateBucket   string
	StateEndpoint string
}

// zoneOptions are the Hetzner locations offered by the wizard.
var zoneOptions = []huh.Option[string]{
	huh.NewOption("Falkenstein, Germany (fsn1)", "fsn1"),
	huh.NewOption("Nuremberg, Germany (nbg1)", "nbg1"),
	huh.NewOption("Helsinki, Finland (hel1)", "hel1"),
	huh.NewOption("Ashburn, USA (ash)", "ash"),
	huh.NewOption("Hillsboro, USA (hil)", "hil"),
	huh.NewOption("Singapore (sin)", "sin"),
}

// NewWizardResult returns a result pre-filled with the defaults.
func NewWizardResult() *WizardResult {
	return &WizardResult{
		Stack:            DefaultStackName,
		CloudID:          DefaultCloudID,
		FolderID:         DefaultFolderID,
		Zone:             DefaultZone,
		SSHPublicKeyPath: "~/.ssh/id_ed25519.pub",
		StateBackend:     BackendFile,
	}
}

// RunWizard asks for the provisioning settings.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := NewWizardResult()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Stack name").
				Description("Names the state snapshot (DNS-safe, lowercase)").
				Value(&result.Stack).
				Validate(validateName),
			huh.NewInput().
				Title("Cloud id").
				Value(&result.CloudID).
				Validate(validateName),
			huh.NewInput().
				Title("Folder id").
				Value(&result.FolderID).
				Validate(validateName),
		),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Zone").
				Description("Hetzner Cloud location for the subnet and VM").
				Options(zoneOptions...).
				Value(&result.Zone),
		),

		huh.NewGroup(
			huh.NewConfirm().
				Title("Generate a new SSH key pair?").
				Description("No: use an existing public key").
				Value(&result.GenerateKey),
			huh.NewInput().
				Title("SSH public key").
				Description("Path to the key installed for the ubuntu user").
				Value(&result.SSHPublicKeyPath).
				Validate(func(s string) error {
					if result.GenerateKey {
						return validateNewKeyPath(s)
					}
					return validateKeyPath(s)
				}),
		),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("State backend").
				Description("file: local directory | s3: S3-compatible bucket").
				Options(
					huh.NewOption("Local files ("+DefaultStatePath+")", BackendFile),
					huh.NewOption("S3-compatible bucket", BackendS3),
				).
				Value(&result.StateBackend),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Bucket").
				Value(&result.StateBucket).
				Validate(validateName),
			huh.NewInput().
				Title("Endpoint").
				Description("Leave empty for AWS").
				Placeholder("https://fsn1.your-objectstorage.com").
				Value(&result.StateEndpoint),
		).WithHideFunc(func() bool { return result.StateBackend != BackendS3 }),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}

	return result, nil
}

// ToStack converts the wizard result to a provisioning configuration.
// Bucket credentials are left to DEVINFO_STATE_S3_* variables.
func (r *WizardResult) ToStack() *Stack {
	cfg := &Stack{
		CloudID:          r.CloudID,
		FolderID:         r.FolderID,
		Zone:             r.Zone,
		SSHPublicKeyPath: r.SSHPublicKeyPath,
		Name:             r.Stack,
		State:            StateConfig{Backend: r.StateBackend},
	}
	switch r.StateBackend {
	case BackendS3:
		cfg.State.S3 = S3Config{
			Bucket:   r.StateBucket,
			Endpoint: r.StateEndpoint,
			Region:   defaultS3Region,
		}
	default:
		cfg.State.Path = DefaultStatePath
	}
	return cfg
}

func validateName(s string) error {
	if s == "" {
		return errors.New("value is required")
	}
	if len(s) > 63 {
		return errors.New("must be 63 characters or less")
	}
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return errors.New("can only contain lowercase letters, numbers, and hyphens")
		}
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return errors.New("cannot start or end with a hyphen")
	}
	return nil
}

func validateKeyPath(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrKeyPathRequired
	}
	p, err := ExpandHome(s)
	if err != nil {
		return err
	}
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("cannot read %s: %w", p, err)
	}
	return nil
}

func validateNewKeyPath(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrKeyPathRequired
	}
	if !strings.HasSuffix(s, ".pub") {
		return errors.New("public key path must end in .pub")
	}
	p, err := ExpandHome(s)
	if err != nil {
		return err
	}
	if _, err := os.Stat(p); err == nil {
		return fmt.Errorf("%s already exists", p)
	}
	return nil
}
