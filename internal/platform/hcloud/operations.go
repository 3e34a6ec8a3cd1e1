package hcloud

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/devinfo/internal/util/retry"
)

// CreateResult wraps the result of a resource creation operation.
// It carries both single and multiple actions that may need to be awaited.
type CreateResult[T any] struct {
	Resource T
	Action   *hcloud.Action
	Actions  []*hcloud.Action
}

// DeleteOperation is idempotent deletion for any hcloud resource.
//
//	return (&DeleteOperation[*hcloud.Network]{
//	    Name:         id,
//	    ResourceType: "network",
//	    Get:          c.client.Network.Get,
//	    Delete:       noAction(c.client.Network.Delete),
//	}).Execute(ctx, c)
type DeleteOperation[T any] struct {
	// Name is an id or a name; hcloud's Get accepts both.
	Name         string
	ResourceType string

	Get func(ctx context.Context, idOrName string) (T, *hcloud.Response, error)

	// Delete removes the resource and returns the action to wait for, if
	// the API reports one.
	Delete func(ctx context.Context, resource T) (*hcloud.Action, *hcloud.Response, error)
}

// Execute deletes the resource. It succeeds if the resource does not exist
// and retries with exponential backoff while the resource is locked.
func (op *DeleteOperation[T]) Execute(ctx context.Context, client *RealClient) error {
	ctx, cancel := context.WithTimeout(ctx, client.timeouts.Delete)
	defer cancel()

	return retry.WithExponentialBackoff(ctx, func() error {
		resource, _, err := op.Get(ctx, op.Name)
		if err != nil {
			return retry.Fatal(fmt.Errorf("failed to get %s: %w", op.ResourceType, err))
		}
		if isNil(resource) {
			return nil
		}

		action, _, err := op.Delete(ctx, resource)
		if err != nil {
			if IsNotFound(err) {
				return nil
			}
			if isResourceLocked(err) {
				return err
			}
			return retry.Fatal(fmt.Errorf("failed to delete %s: %w", op.ResourceType, err))
		}
		if action != nil {
			if err := client.waitForActions(ctx, action); err != nil {
				return retry.Fatal(fmt.Errorf("failed to wait for %s deletion: %w", op.ResourceType, err))
			}
		}
		return nil
	},
		retry.WithMaxRetries(client.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(client.timeouts.RetryInitialDelay))
}

// EnsureOperation is get-or-create for any hcloud resource, with optional
// validation and drift correction for an existing one.
type EnsureOperation[T any, CreateOpts any, UpdateOpts any] struct {
	Name         string
	ResourceType string

	Get func(ctx context.Context, name string) (T, *hcloud.Response, error)

	Create func(ctx context.Context, opts CreateOpts) (*CreateResult[T], *hcloud.Response, error)

	// Update is called for an existing resource when NeedsUpdate reports
	// drift (or is nil).
	Update func(ctx context.Context, resource T, opts UpdateOpts) ([]*hcloud.Action, *hcloud.Response, error)

	NeedsUpdate func(resource T) bool

	// Validate rejects an existing resource that cannot be reconciled.
	Validate func(resource T) error

	CreateOptsMapper func() CreateOpts

	// UpdateOptsMapper is required if Update is set.
	UpdateOptsMapper func(resource T) UpdateOpts
}

// Execute returns the existing or newly created resource. created reports
// whether this call created it.
func (op *EnsureOperation[T, CreateOpts, UpdateOpts]) Execute(
	ctx context.Context,
	client *RealClient,
) (resource T, created bool, err error) {
	var zero T

	resource, _, err = op.Get(ctx, op.Name)
	if err != nil {
		return zero, false, fmt.Errorf("failed to get %s: %w", op.ResourceType, err)
	}

	if !isNil(resource) {
		if op.Validate != nil {
			if err := op.Validate(resource); err != nil {
				return zero, false, err
			}
		}

		if op.Update != nil && op.UpdateOptsMapper != nil && (op.NeedsUpdate == nil || op.NeedsUpdate(resource)) {
			actions, _, err := op.Update(ctx, resource, op.UpdateOptsMapper(resource))
			if err != nil {
				return zero, false, fmt.Errorf("failed to update %s: %w", op.ResourceType, err)
			}
			if err := client.waitForActions(ctx, actions...); err != nil {
				return zero, false, fmt.Errorf("failed to wait for %s update: %w", op.ResourceType, err)
			}
		}

		return resource, false, nil
	}

	result, _, err := op.Create(ctx, op.CreateOptsMapper())
	if err != nil {
		return zero, false, fmt.Errorf("failed to create %s: %w", op.ResourceType, err)
	}

	if err := waitForActionResult(ctx, client, result); err != nil {
		return zero, false, fmt.Errorf("failed to wait for %s creation: %w", op.ResourceType, err)
	}

	return result.Resource, true, nil
}

// waitForActions waits for the actions to complete, bounded by the
// ActionWait timeout.
func (c *RealClient) waitForActions(ctx context.Context, actions ...*hcloud.Action) error {
	pending := make([]*hcloud.Action, 0, len(actions))
	for _, a := range actions {
		if a != nil {
			pending = append(pending, a)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.ActionWait)
	defer cancel()
	return c.client.Action.WaitFor(ctx, pending...)
}

// waitForActionResult waits for the singular Action and the plural Actions
// of a CreateResult.
func waitForActionResult[T any](ctx context.Context, c *RealClient, result *CreateResult[T]) error {
	actions := append([]*hcloud.Action{result.Action}, result.Actions...)
	return c.waitForActions(ctx, actions...)
}

// simpleCreate wraps create functions returning the resource directly.
func simpleCreate[T any, Opts any](
	createFn func(context.Context, Opts) (T, *hcloud.Response, error),
) func(context.Context, Opts) (*CreateResult[T], *hcloud.Response, error) {
	return func(ctx context.Context, opts Opts) (*CreateResult[T], *hcloud.Response, error) {
		resource, resp, err := createFn(ctx, opts)
		if err != nil {
			return nil, resp, err
		}
		return &CreateResult[T]{Resource: resource}, resp, nil
	}
}

// noAction adapts delete calls that complete synchronously.
func noAction[T any](deleteFn func(context.Context, T) (*hcloud.Response, error)) func(context.Context, T) (*hcloud.Action, *hcloud.Response, error) {
	return func(ctx context.Context, resource T) (*hcloud.Action, *hcloud.Response, error) {
		resp, err := deleteFn(ctx, resource)
		return nil, resp, err
	}
}

// noActions adapts update calls that return the updated resource instead of
// actions.
func noActions[T any, Opts any](updateFn func(context.Context, T, Opts) (T, *hcloud.Response, error)) func(context.Context, T, Opts) ([]*hcloud.Action, *hcloud.Response, error) {
	return func(ctx context.Context, resource T, opts Opts) ([]*hcloud.Action, *hcloud.Response, error) {
		_, resp, err := updateFn(ctx, resource, opts)
		return nil, resp, err
	}
}

func isNil[T any](v T) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
