// Package handlers implements the devinfo command actions.
//
// Each handler loads the provisioning configuration, declares the stack
// and drives the engine. Construction of the logger, state store and
// cloud provider goes through package variables that tests replace.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"

	"github.com/imamik/devinfo/internal/config"
	"github.com/imamik/devinfo/internal/engine"
	"github.com/imamik/devinfo/internal/infra"
	"github.com/imamik/devinfo/internal/logging"
	"github.com/imamik/devinfo/internal/platform/hcloud"
	"github.com/imamik/devinfo/internal/stack"
	"github.com/imamik/devinfo/internal/state"
	"github.com/imamik/devinfo/internal/ui"
	"github.com/imamik/devinfo/internal/util/netutil"
)

// ErrMissingToken is returned when a command needs the Hetzner API and
// HCLOUD_TOKEN is empty.
var ErrMissingToken = errors.New(hcloud.TokenEnv + " environment variable is required")

// Factory function variables - can be replaced in tests.
var (
	loadStackConfig = config.LoadStack

	openStateStore = state.Open

	newProvider = func(token string) engine.Provider {
		return hcloud.NewRealClient(token)
	}

	newLogger = func(debug bool) (logr.Logger, func(), error) {
		return logging.New(logging.Options{Debug: debug, Name: "devinfo"})
	}

	lookupToken = func() string {
		return os.Getenv(hcloud.TokenEnv)
	}

	waitForSSH = netutil.WaitForSSH

	isTerminal  = ui.IsTerminal
	runProgress = ui.RunProgress

	stdout io.Writer = os.Stdout
)

// Options are the flags shared by every command.
type Options struct {
	ConfigPath string
	Flags      *pflag.FlagSet
	Debug      bool
	// WaitSSH makes Up wait until the VM accepts SSH connections.
	WaitSSH bool
}

// session is everything a command needs after configuration is loaded.
type session struct {
	cfg      *config.Stack
	ref      engine.Ref
	log      logr.Logger
	flush    func()
	debug    bool
	provider engine.Provider
	store    state.Store
	engine   *engine.Engine
	printer  *ui.Printer
}

// newSession loads configuration and builds the engine. The provider is
// only constructed when withProvider is set, and then requires a token.
func newSession(ctx context.Context, opts Options, withProvider bool) (*session, error) {
	var token string
	if withProvider {
		token = lookupToken()
		if token == "" {
			return nil, ErrMissingToken
		}
	}

	cfg, err := loadStackConfig(opts.ConfigPath, opts.Flags)
	if err != nil {
		return nil, err
	}

	log, flush, err := newLogger(opts.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := openStateStore(ctx, cfg.State)
	if err != nil {
		flush()
		return nil, err
	}

	var provider engine.Provider
	if withProvider {
		provider = newProvider(token)
	}

	scope := infra.FromStack(cfg).Scope()
	s := &session{
		cfg:      cfg,
		ref:      engine.Ref{CloudID: scope.CloudID, FolderID: scope.FolderID, Stack: cfg.Name},
		log:      log,
		flush:    flush,
		debug:    opts.Debug,
		provider: provider,
		store:    store,
		printer:  ui.NewPrinter(stdout),
	}
	s.engine = s.newEngine(s.printer)
	return s, nil
}

func (s *session) newEngine(o engine.Observer) *engine.Engine {
	opts := []engine.Option{engine.WithObserver(o)}
	if s.debug {
		opts = append(opts, engine.WithLogger(s.log))
	}
	return engine.New(s.provider, s.store, opts...)
}

// run executes fn. On an interactive terminal the engine reports to the
// live progress view; with --debug or redirected output it reports to the
// line printer so log lines and events stay readable.
func (s *session) run(ctx context.Context, title string, fn func(context.Context, *engine.Engine) error) error {
	if s.debug || !isTerminal(stdout) {
		return fn(ctx, s.engine)
	}
	return runProgress(ctx, title, func(ctx context.Context, o engine.Observer) error {
		return fn(ctx, s.newEngine(o))
	})
}

// declare builds the stack for the session's configuration.
func (s *session) declare() (*stack.Stack, *infra.Environment, error) {
	c := infra.FromStack(s.cfg)
	st := stack.New(s.cfg.Name, c.Scope())
	env, err := infra.Declare(st, c)
	if err != nil {
		return nil, nil, err
	}
	return st, env, nil
}
