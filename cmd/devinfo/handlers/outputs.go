package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/devinfo/internal/state"
)

// Outputs prints the exports recorded by the last successful Up.
func Outputs(ctx context.Context, opts Options) error {
	s, err := newSession(ctx, opts, false)
	if err != nil {
		return err
	}
	defer s.flush()

	outputs, err := s.engine.Outputs(ctx, s.ref)
	if errors.Is(err, state.ErrNotFound) {
		return fmt.Errorf("stack %s has not been provisioned: %w", s.ref.Stack, err)
	}
	if err != nil {
		return err
	}
	s.printer.Outputs(outputs)
	return nil
}
