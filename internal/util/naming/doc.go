// Package naming holds the naming conventions for provisioned resources,
// resource URNs and state keys.
package naming
