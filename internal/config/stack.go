package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Provisioning defaults. The SSH public key path has no default.
const (
	DefaultCloudID      = "devinfo-cloud"
	DefaultFolderID     = "default"
	DefaultZone         = "fsn1"
	DefaultStackName    = "dev"
	DefaultStatePath    = ".devinfo/state"
	DefaultFileName     = "devinfo.yaml"
	BackendFile         = "file"
	BackendS3           = "s3"
	envPrefix           = "DEVINFO"
	defaultS3Region     = "us-east-1"
	configFileHeaderFmt = "# devinfo provisioning configuration\n# Generated: %s\n"
)

// ErrKeyPathRequired is returned when ssh_public_key_path is not configured.
var ErrKeyPathRequired = errors.New("ssh_public_key_path is required")

// Stack is the provisioning configuration.
type Stack struct {
	CloudID          string      `mapstructure:"cloud_id" yaml:"cloud_id"`
	FolderID         string      `mapstructure:"folder_id" yaml:"folder_id"`
	Zone             string      `mapstructure:"zone" yaml:"zone"`
	SSHPublicKeyPath string      `mapstructure:"ssh_public_key_path" yaml:"ssh_public_key_path"`
	Name             string      `mapstructure:"stack" yaml:"stack"`
	State            StateConfig `mapstructure:"state" yaml:"state"`
}

// StateConfig selects where stack snapshots are kept.
type StateConfig struct {
	Backend string   `mapstructure:"backend" yaml:"backend"`
	Path    string   `mapstructure:"path" yaml:"path,omitempty"`
	S3      S3Config `mapstructure:"s3" yaml:"s3,omitempty"`
}

// S3Config configures an S3-compatible state bucket.
type S3Config struct {
	Bucket    string `mapstructure:"bucket" yaml:"bucket,omitempty"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	Region    string `mapstructure:"region" yaml:"region,omitempty"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key,omitempty"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key,omitempty"`
}

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"cloud-id":      "cloud_id",
	"folder-id":     "folder_id",
	"zone":          "zone",
	"ssh-key":       "ssh_public_key_path",
	"stack":         "stack",
	"state-backend": "state.backend",
	"state-path":    "state.path",
}

func stackDefaults(v *viper.Viper) {
	v.SetDefault("cloud_id", DefaultCloudID)
	v.SetDefault("folder_id", DefaultFolderID)
	v.SetDefault("zone", DefaultZone)
	v.SetDefault("ssh_public_key_path", "")
	v.SetDefault("stack", DefaultStackName)
	v.SetDefault("state.backend", BackendFile)
	v.SetDefault("state.path", DefaultStatePath)
	v.SetDefault("state.s3.bucket", "")
	v.SetDefault("state.s3.endpoint", "")
	v.SetDefault("state.s3.region", defaultS3Region)
	v.SetDefault("state.s3.access_key", "")
	v.SetDefault("state.s3.secret_key", "")
}

// LoadStack resolves the provisioning configuration. Values come from, in
// order of precedence: changed flags in fs, DEVINFO_* environment
// variables, the config file and the defaults. An empty path looks for
// devinfo.yaml in the working directory and tolerates its absence; an
// explicit path must exist.
func LoadStack(path string, fs *pflag.FlagSet) (*Stack, error) {
	v := viper.New()
	stackDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFileName, filepath.Ext(DefaultFileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Stack
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	expanded, err := ExpandHome(cfg.SSHPublicKeyPath)
	if err != nil {
		return nil, err
	}
	cfg.SSHPublicKeyPath = expanded

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required settings and backend consistency.
func (s *Stack) Validate() error {
	if strings.TrimSpace(s.SSHPublicKeyPath) == "" {
		return ErrKeyPathRequired
	}
	if s.Name == "" {
		return errors.New("stack name must not be empty")
	}
	switch s.State.Backend {
	case BackendFile:
		if s.State.Path == "" {
			return errors.New("state.path is required for the file backend")
		}
	case BackendS3:
		if s.State.S3.Bucket == "" {
			return errors.New("state.s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown state backend %q (want %s or %s)", s.State.Backend, BackendFile, BackendS3)
	}
	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// WriteStack writes cfg as YAML with a generated header. The file holds
// bucket credentials, so it is created with 0600.
func WriteStack(cfg *Stack, outputPath string) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, configFileHeaderFmt, time.Now().UTC().Format(time.RFC3339))
	sb.WriteString("\n")
	sb.Write(out)

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
