package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/devinfo/internal/engine"
)

// Destroy deletes every resource recorded for the configured stack.
func Destroy(ctx context.Context, opts Options) error {
	s, err := newSession(ctx, opts, true)
	if err != nil {
		return err
	}
	defer s.flush()

	s.log.Info("destroying stack", "stack", s.ref.Stack)
	err = s.run(ctx, "destroy "+s.ref.Stack, func(ctx context.Context, e *engine.Engine) error {
		return e.Destroy(ctx, s.ref)
	})
	if err != nil {
		return fmt.Errorf("destroy failed: %w", err)
	}
	fmt.Fprintf(stdout, "Stack %s destroyed\n", s.ref.Stack)
	return nil
}
