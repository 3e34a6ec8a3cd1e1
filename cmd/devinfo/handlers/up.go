package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/devinfo/internal/engine"
	"github.com/imamik/devinfo/internal/infra"
)

// Up declares the stack and provisions it, then prints the outputs.
func Up(ctx context.Context, opts Options) error {
	s, err := newSession(ctx, opts, true)
	if err != nil {
		return err
	}
	defer s.flush()

	st, env, err := s.declare()
	if err != nil {
		return err
	}

	s.log.Info("provisioning stack", "stack", st.Name(), "zone", s.cfg.Zone)
	var result *engine.Result
	err = s.run(ctx, "up "+st.Name(), func(ctx context.Context, e *engine.Engine) error {
		var err error
		result, err = e.Up(ctx, st)
		return err
	})
	if err != nil {
		return fmt.Errorf("up failed: %w", err)
	}
	s.log.V(1).Info("run finished", "run", result.RunID, "created", len(result.Created), "deleted", len(result.Deleted))

	s.printer.Outputs(result.Exports)

	if opts.WaitSSH {
		ip := result.Exports[infra.ExportVMExtIP]
		fmt.Fprintf(stdout, "Waiting for SSH on %s...\n", ip)
		if err := waitForSSH(ctx, ip); err != nil {
			return fmt.Errorf("vm not reachable over SSH: %w", err)
		}
		login, err := env.SSHLogin.Get()
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Ready: ssh %s\n", login)
	}
	return nil
}
