// Package s3 provides a client for S3-compatible object storage such as
// Hetzner Object Storage or MinIO.
//
// It backs the remote state store: bucket creation on first use and
// object get, put and delete. Missing objects are reported as
// ErrObjectNotFound.
package s3
