// Package labels provides the label set stamped on every provisioned resource.
//
// Every resource declared by the provisioning program carries the same four
// labels: environment, project, owner and managed_by. The builder keeps that
// set fixed and hands out copies so callers cannot mutate shared state.
package labels
