// Package infra declares the devinfo development environment: one network,
// one subnet and one Ubuntu VM reachable over SSH with the operator's key.
//
// [Declare] is a single forward pass. It reads the public key, builds the
// cloud-init payload and registers the three resources and six exports on
// a stack. It never contacts a provider; the engine resolves the exports.
package infra
