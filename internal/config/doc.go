// Package config loads configuration for both binaries.
//
// [LoadServer] reads the info service settings from the environment
// (HOST, PORT, DEBUG, METRICS_ADDR, SHUTDOWN_TIMEOUT). [LoadStack] layers the
// provisioning settings: command-line flags override DEVINFO_* environment
// variables, which override the devinfo.yaml file, which overrides the
// built-in defaults. [LoadTimeouts] reads Hetzner Cloud API timeouts from
// HCLOUD_* variables.
package config
