package handlers

import (
	"context"
	"fmt"
)

// Preview declares the stack and prints what Up would change. It needs
// no API token.
func Preview(ctx context.Context, opts Options) error {
	s, err := newSession(ctx, opts, false)
	if err != nil {
		return err
	}
	defer s.flush()

	st, _, err := s.declare()
	if err != nil {
		return err
	}

	plan, err := s.engine.Preview(ctx, st)
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}
	s.printer.Plan(plan)
	return nil
}
