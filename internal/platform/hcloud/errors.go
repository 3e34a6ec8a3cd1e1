package hcloud

import (
	"errors"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

var (
	// ErrNoServerType is returned when no server type matches the requested
	// platform and size.
	ErrNoServerType = errors.New("no matching server type")

	// ErrImageNotFound is returned when the boot image cannot be resolved.
	ErrImageNotFound = errors.New("image not found")

	// ErrLocationNotFound is returned for an unknown zone.
	ErrLocationNotFound = errors.New("location not found")

	// ErrNetworkNotFound is returned when a subnet or server refers to a
	// network that does not exist.
	ErrNetworkNotFound = errors.New("network not found")

	// ErrResourceDrift is returned when an existing resource differs from
	// the declaration in a property that cannot be changed in place.
	ErrResourceDrift = errors.New("existing resource does not match declaration")
)

// isResourceLocked reports whether an action is still running on the
// resource. These errors are retryable.
func isResourceLocked(err error) bool {
	return isHCloudErrorCode(err,
		hcloud.ErrorCodeLocked,
		hcloud.ErrorCodeConflict,
		hcloud.ErrorCodeResourceLocked,
		hcloud.ErrorCodeResourceUnavailable,
	)
}

// isInvalidParameter reports errors that no retry can fix.
func isInvalidParameter(err error) bool {
	return isHCloudErrorCode(err,
		hcloud.ErrorCodeNotFound,
		hcloud.ErrorCodeInvalidInput,
		hcloud.ErrorCodeInvalidServerType,
	)
}

// isTransient reports errors worth another attempt: rate limiting, locked
// resources and failures that never produced an API error.
func isTransient(err error) bool {
	var hcloudErr hcloud.Error
	if !errors.As(err, &hcloudErr) {
		return true
	}
	return IsRateLimited(err) || isResourceLocked(err)
}

func isHCloudErrorCode(err error, codes ...hcloud.ErrorCode) bool {
	if err == nil {
		return false
	}

	var hcloudErr hcloud.Error
	if errors.As(err, &hcloudErr) {
		for _, code := range codes {
			if hcloudErr.Code == code {
				return true
			}
		}
	}
	return false
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	return isHCloudErrorCode(err, hcloud.ErrorCodeNotFound)
}

// IsRateLimited checks if an error indicates rate limiting.
func IsRateLimited(err error) bool {
	return isHCloudErrorCode(err, hcloud.ErrorCodeRateLimitExceeded)
}
