package stack

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// UnknownValue is how an unresolved value is rendered.
const UnknownValue = "(known after apply)"

// ErrUnresolved is returned when an unresolved output is read as a
// concrete value.
var ErrUnresolved = errors.New("output is not resolved")

// Input is the type-erased view of an Output used for dependency tracking.
type Input interface {
	// Owner is the URN of the resource producing the value, or "" for
	// values known at declaration time.
	Owner() string
	Known() bool
	Done() <-chan struct{}
	Err() error
}

// Output is a value that may not be known yet. It settles exactly once,
// either resolved to a value or failed with an error.
type Output[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	owner     string
	settled   bool
	value     T
	err       error
	callbacks []func(T, error)
}

// Known returns an already resolved output.
func Known[T any](v T) *Output[T] {
	o := &Output[T]{done: make(chan struct{})}
	o.settle(v, nil)
	return o
}

// Unknown returns an unresolved output with no producing resource.
func Unknown[T any]() *Output[T] {
	return newOutput[T]("")
}

func newOutput[T any](owner string) *Output[T] {
	return &Output[T]{done: make(chan struct{}), owner: owner}
}

// Apply derives an output from o. fn runs once, when o resolves; a failed
// o fails the derived output with the same error.
func Apply[T, U any](o *Output[T], fn func(T) U) *Output[U] {
	out := newOutput[U](o.owner)
	o.onSettle(func(v T, err error) {
		if err != nil {
			out.settle(*new(U), err)
			return
		}
		out.settle(fn(v), nil)
	})
	return out
}

// Owner implements Input.
func (o *Output[T]) Owner() string { return o.owner }

// Done is closed once the output settles.
func (o *Output[T]) Done() <-chan struct{} { return o.done }

// Value returns the resolved value and whether it is known.
func (o *Output[T]) Value() (T, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.settled || o.err != nil {
		var zero T
		return zero, false
	}
	return o.value, true
}

// Known reports whether the output resolved successfully.
func (o *Output[T]) Known() bool {
	_, ok := o.Value()
	return ok
}

// Err returns the failure cause, if the output failed.
func (o *Output[T]) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Get returns the resolved value, ErrUnresolved while pending, or the
// failure cause.
func (o *Output[T]) Get() (T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var zero T
	switch {
	case !o.settled:
		return zero, ErrUnresolved
	case o.err != nil:
		return zero, o.err
	}
	return o.value, nil
}

// Await blocks until every input settles or ctx is done. It returns the
// first failure, naming the resource that produced it.
func Await(ctx context.Context, inputs ...Input) error {
	for _, in := range inputs {
		select {
		case <-in.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := in.Err(); err != nil {
			if owner := in.Owner(); owner != "" {
				return fmt.Errorf("input from %s: %w", owner, err)
			}
			return err
		}
	}
	return nil
}

// String renders the value, or UnknownValue while unresolved.
func (o *Output[T]) String() string {
	v, ok := o.Value()
	if !ok {
		return UnknownValue
	}
	return fmt.Sprint(v)
}

func (o *Output[T]) resolve(v T) bool { return o.settle(v, nil) }

func (o *Output[T]) fail(err error) bool {
	var zero T
	return o.settle(zero, err)
}

// settle records the outcome and reports whether this call was the one
// that settled the output.
func (o *Output[T]) settle(v T, err error) bool {
	o.mu.Lock()
	if o.settled {
		o.mu.Unlock()
		return false
	}
	o.value, o.err, o.settled = v, err, true
	callbacks := o.callbacks
	o.callbacks = nil
	close(o.done)
	o.mu.Unlock()

	for _, cb := range callbacks {
		cb(v, err)
	}
	return true
}

func (o *Output[T]) onSettle(fn func(T, error)) {
	o.mu.Lock()
	if !o.settled {
		o.callbacks = append(o.callbacks, fn)
		o.mu.Unlock()
		return
	}
	v, err := o.value, o.err
	o.mu.Unlock()
	fn(v, err)
}
