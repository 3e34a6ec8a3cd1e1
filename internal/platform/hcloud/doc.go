// Package hcloud provisions the devinfo stack on the Hetzner Cloud API.
//
// RealClient implements the engine's Provider interface. Every Ensure
// method is get-or-create: an existing resource found by name is reused
// and its labels are brought back in line, otherwise it is created and the
// resulting actions are awaited. Every Delete method is idempotent and
// retries while the API reports the resource as locked.
//
// Network, subnet and server operations share two generic building blocks:
//
//   - EnsureOperation: get by name, validate, update on drift, or create.
//   - DeleteOperation: get by id or name, delete, wait for the action.
//
// Timeouts and retry parameters come from HCLOUD_* environment variables,
// see config.LoadTimeouts.
package hcloud
