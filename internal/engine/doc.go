// Package engine reconciles a declared stack against a cloud provider.
//
// Preview compares the declaration with the last snapshot without calling
// the provider. Up creates resources in dependency waves, resolving each
// resource's outputs as soon as the provider reports its attributes, and
// persists a snapshot after every wave. Destroy deletes the resources of a
// snapshot in reverse dependency order.
package engine
