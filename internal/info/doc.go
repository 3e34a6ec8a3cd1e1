// Package info implements the devops info service: a small HTTP API that
// reports service, host, runtime and request metadata.
//
// Routes:
//
//	GET /        full info document
//	GET /health  health document
//
// Unmatched paths answer 404, other methods on known paths answer 405 and
// any fault while building a response answers 500. All error bodies share
// the {error, message} shape and never include fault details.
package info
