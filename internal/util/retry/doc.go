// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max attempts,
// initial delay, maximum delay and an optional predicate deciding which
// errors are worth another attempt. Errors wrapped with [Fatal] stop the
// loop immediately. It is used by the Hetzner Cloud provider.
package retry
