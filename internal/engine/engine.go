package engine

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/imamik/devinfo/internal/stack"
	"github.com/imamik/devinfo/internal/state"
	"github.com/imamik/devinfo/internal/util/async"
)

// DefaultNetworkRange is used for a network without declared range or
// subnets.
const DefaultNetworkRange = "10.0.0.0/16"

var (
	// ErrDependencyCycle is returned when no resource of a stack can start.
	ErrDependencyCycle = errors.New("dependency cycle")
	// ErrUnsupportedResource is returned for a resource kind the engine
	// cannot provision.
	ErrUnsupportedResource = errors.New("unsupported resource")
	// ErrImmutableChange is returned when a recorded resource is declared
	// with a property that cannot change in place. Destroy the stack, or
	// rename the resource, to replace it.
	ErrImmutableChange = errors.New("property cannot change in place")
)

// Ref addresses the snapshot of one stack.
type Ref struct {
	CloudID  string
	FolderID string
	Stack    string
}

// RefOf returns the snapshot address of st.
func RefOf(st *stack.Stack) Ref {
	scope := st.Scope()
	return Ref{CloudID: scope.CloudID, FolderID: scope.FolderID, Stack: st.Name()}
}

// Key returns the state store key.
func (r Ref) Key() string {
	return state.Key(r.CloudID, r.FolderID, r.Stack)
}

// Result summarizes a successful Up.
type Result struct {
	RunID   string
	Exports map[string]string
	// Created lists the URNs the provider created during this run.
	Created []string
	// Deleted lists recorded URNs that are no longer declared and were
	// removed during this run.
	Deleted []string
}

// Engine reconciles stacks against a Provider and records them in a Store.
type Engine struct {
	provider Provider
	store    state.Store
	observer Observer
	now      func() time.Time
	newRunID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger logs every event through log.
func WithLogger(log logr.Logger) Option {
	return WithObserver(NewLogObserver(log))
}

// WithObserver adds an event observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if e.observer == nil {
			e.observer = o
			return
		}
		e.observer = multiObserver{e.observer, o}
	}
}

// WithClock overrides the time source used for snapshots and events.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New returns an Engine.
func New(provider Provider, store state.Store, opts ...Option) *Engine {
	e := &Engine{
		provider: provider,
		store:    store,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.observer == nil {
		e.observer = ObserverFunc(func(Event) {})
	}
	return e
}

func (e *Engine) emit(ev Event) {
	ev.Timestamp = e.now()
	e.observer.Event(ev)
}

func (e *Engine) load(ctx context.Context, ref Ref) (*state.Snapshot, error) {
	snap, err := e.store.Load(ctx, ref.Key())
	if errors.Is(err, state.ErrNotFound) {
		return state.NewSnapshot(ref.Stack, ref.CloudID, ref.FolderID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return snap, nil
}

func (e *Engine) save(ctx context.Context, ref Ref, snap *state.Snapshot) error {
	snap.UpdatedAt = e.now().UTC()
	if err := e.store.Save(ctx, ref.Key(), snap); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Up provisions st. Resources whose dependencies are resolved run in
// parallel; the snapshot is saved after every wave. Recorded resources
// that st no longer declares are deleted afterwards, dependents first.
// The first provider error ends the run and fails every resource not yet
// resolved.
func (e *Engine) Up(ctx context.Context, st *stack.Stack) (*Result, error) {
	ref := RefOf(st)
	snap, err := e.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	snap.RunID = e.newRunID()

	start := e.now()
	e.emit(Event{Type: EventPhaseStarted, Phase: PhaseUp})

	result := &Result{RunID: snap.RunID}
	recorded := recordedInputs(snap)
	var mu sync.Mutex
	resolved := map[string]bool{}

	remaining := st.Resources()
	for len(remaining) > 0 {
		wave, rest := nextWave(remaining, resolved)
		if len(wave) == 0 {
			err := fmt.Errorf("%w: %s", ErrDependencyCycle, remaining[0].URN())
			return nil, e.abort(remaining, resolved, err)
		}

		tasks := make([]async.Task, 0, len(wave))
		for _, r := range wave {
			tasks = append(tasks, async.Task{
				Name: r.URN(),
				Func: func(ctx context.Context) error {
					rs, created, err := e.apply(ctx, st, r, recorded[r.URN()])
					if err != nil {
						return err
					}
					mu.Lock()
					defer mu.Unlock()
					snap.Upsert(rs)
					resolved[r.URN()] = true
					if created {
						result.Created = append(result.Created, r.URN())
					}
					return nil
				},
			})
		}

		runErr := async.RunParallel(ctx, tasks)
		if err := e.save(ctx, ref, snap); err != nil {
			runErr = errors.Join(runErr, err)
		}
		if runErr != nil {
			return nil, e.abort(remaining, resolved, runErr)
		}
		remaining = rest
	}

	for _, rs := range destroyOrder(undeclared(snap, st)) {
		if err := e.remove(ctx, ref, snap, PhaseUp, rs); err != nil {
			return nil, e.abort(nil, resolved, err)
		}
		result.Deleted = append(result.Deleted, rs.URN)
	}

	snap.Exports = map[string]string{}
	for _, exp := range st.Exports() {
		v, err := exp.Value.Get()
		if err != nil {
			return nil, e.abort(nil, resolved, fmt.Errorf("export %s: %w", exp.Name, err))
		}
		snap.Exports[exp.Name] = v
	}
	if err := e.save(ctx, ref, snap); err != nil {
		return nil, e.abort(nil, resolved, err)
	}
	result.Exports = snap.Exports

	e.emit(Event{Type: EventPhaseCompleted, Phase: PhaseUp, Duration: e.now().Sub(start)})
	return result, nil
}

// abort fails every unresolved resource with err.
func (e *Engine) abort(rs []stack.Resource, resolved map[string]bool, err error) error {
	for _, r := range rs {
		if !resolved[r.URN()] {
			r.Fail(err)
		}
	}
	e.emit(Event{Type: EventPhaseFailed, Phase: PhaseUp, Err: err})
	return err
}

// nextWave splits rs into the resources whose dependencies are all
// resolved and the rest, keeping declaration order.
func nextWave(rs []stack.Resource, resolved map[string]bool) (wave, rest []stack.Resource) {
	for _, r := range rs {
		ready := true
		for _, dep := range r.DependsOn() {
			if !resolved[dep] {
				ready = false
				break
			}
		}
		if ready {
			wave = append(wave, r)
		} else {
			rest = append(rest, r)
		}
	}
	return wave, rest
}

// apply waits for r's inputs, ensures it through the provider and resolves
// its outputs. prev holds the inputs recorded by the last run, nil for a
// resource not in the snapshot.
func (e *Engine) apply(ctx context.Context, st *stack.Stack, r stack.Resource, prev map[string]string) (state.ResourceState, bool, error) {
	if err := stack.Await(ctx, r.Inputs()...); err != nil {
		return state.ResourceState{}, false, err
	}

	if prev != nil {
		if changed := immutableChanges(prev, r.Properties()); len(changed) > 0 {
			err := fmt.Errorf("%s: %w: %s", r.URN(), ErrImmutableChange, strings.Join(changed, ", "))
			e.emit(Event{Type: EventResourceFailed, Phase: PhaseUp, URN: r.URN(), Kind: r.Kind(), Err: err})
			return state.ResourceState{}, false, err
		}
	}

	e.emit(Event{Type: EventResourceCreating, Phase: PhaseUp, URN: r.URN(), Kind: r.Kind()})
	start := e.now()

	attrs, created, err := e.ensure(ctx, st, r)
	if err == nil {
		err = r.Resolve(attrs)
	}
	if err != nil {
		e.emit(Event{Type: EventResourceFailed, Phase: PhaseUp, URN: r.URN(), Kind: r.Kind(), Err: err})
		return state.ResourceState{}, false, err
	}

	ev := Event{Type: EventResourceExists, Phase: PhaseUp, URN: r.URN(), Kind: r.Kind(), ID: attrs[stack.AttrID], Duration: e.now().Sub(start)}
	if created {
		ev.Type = EventResourceCreated
	}
	e.emit(ev)

	return state.ResourceState{
		URN:        r.URN(),
		Kind:       string(r.Kind()),
		ID:         attrs[stack.AttrID],
		DependsOn:  r.DependsOn(),
		Inputs:     knownInputs(r),
		Attributes: attrs,
	}, created, nil
}

func (e *Engine) ensure(ctx context.Context, st *stack.Stack, r stack.Resource) (stack.Attributes, bool, error) {
	switch res := r.(type) {
	case *stack.Network:
		spec := res.Spec()
		if spec.IPRange == "" {
			spec.IPRange = networkRange(st, res)
		}
		return e.provider.EnsureNetwork(ctx, spec)
	case *stack.Subnet:
		spec, err := res.Spec()
		if err != nil {
			return nil, false, err
		}
		return e.provider.EnsureSubnet(ctx, spec)
	case *stack.Instance:
		spec, err := res.Spec()
		if err != nil {
			return nil, false, err
		}
		return e.provider.EnsureInstance(ctx, spec)
	default:
		return nil, false, fmt.Errorf("%w: %s", ErrUnsupportedResource, r.Kind())
	}
}

// networkRange returns the /16 supernet of the first subnet declared in
// network n, or DefaultNetworkRange.
func networkRange(st *stack.Stack, n *stack.Network) string {
	for _, r := range st.Resources() {
		sub, ok := r.(*stack.Subnet)
		if !ok || sub.Args.NetworkID.Owner() != n.URN() || len(sub.Args.V4CIDRBlocks) == 0 {
			continue
		}
		p, err := netip.ParsePrefix(sub.Args.V4CIDRBlocks[0])
		if err != nil {
			continue
		}
		bits := min(16, p.Bits())
		super, err := p.Addr().Prefix(bits)
		if err != nil {
			continue
		}
		return super.String()
	}
	return DefaultNetworkRange
}

// Destroy deletes every resource recorded for ref, dependents first, then
// the snapshot itself. The snapshot is saved after each deletion so an
// interrupted Destroy can be resumed.
func (e *Engine) Destroy(ctx context.Context, ref Ref) error {
	snap, err := e.store.Load(ctx, ref.Key())
	if errors.Is(err, state.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	start := e.now()
	e.emit(Event{Type: EventPhaseStarted, Phase: PhaseDestroy})

	for _, rs := range destroyOrder(snap.Resources) {
		if err := e.remove(ctx, ref, snap, PhaseDestroy, rs); err != nil {
			e.emit(Event{Type: EventPhaseFailed, Phase: PhaseDestroy, Err: err})
			return err
		}
	}

	if err := e.store.Delete(ctx, ref.Key()); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	e.emit(Event{Type: EventPhaseCompleted, Phase: PhaseDestroy, Duration: e.now().Sub(start)})
	return nil
}

// remove deletes the recorded resource rs and saves snap without it.
func (e *Engine) remove(ctx context.Context, ref Ref, snap *state.Snapshot, phase string, rs state.ResourceState) error {
	kind := stack.Kind(rs.Kind)
	e.emit(Event{Type: EventResourceDeleting, Phase: phase, URN: rs.URN, Kind: kind, ID: rs.ID})

	if err := e.delete(ctx, rs); err != nil {
		err = fmt.Errorf("%s: %w", rs.URN, err)
		e.emit(Event{Type: EventResourceFailed, Phase: phase, URN: rs.URN, Kind: kind, ID: rs.ID, Err: err})
		return err
	}

	snap.Remove(rs.URN)
	if err := e.save(ctx, ref, snap); err != nil {
		return err
	}
	e.emit(Event{Type: EventResourceDeleted, Phase: phase, URN: rs.URN, Kind: kind, ID: rs.ID})
	return nil
}

// undeclared returns the records of snap that st no longer declares.
func undeclared(snap *state.Snapshot, st *stack.Stack) []state.ResourceState {
	var out []state.ResourceState
	for _, rs := range snap.Resources {
		if _, ok := st.Lookup(rs.URN); !ok {
			out = append(out, rs)
		}
	}
	return out
}

// recordedInputs maps each recorded URN to its inputs.
func recordedInputs(snap *state.Snapshot) map[string]map[string]string {
	out := make(map[string]map[string]string, len(snap.Resources))
	for _, rs := range snap.Resources {
		inputs := rs.Inputs
		if inputs == nil {
			inputs = map[string]string{}
		}
		out[rs.URN] = inputs
	}
	return out
}

func (e *Engine) delete(ctx context.Context, rs state.ResourceState) error {
	switch stack.Kind(rs.Kind) {
	case stack.KindNetwork:
		return e.provider.DeleteNetwork(ctx, rs.ID)
	case stack.KindSubnet:
		return e.provider.DeleteSubnet(ctx, rs.ID)
	case stack.KindInstance:
		return e.provider.DeleteInstance(ctx, rs.ID)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedResource, rs.Kind)
	}
}

// destroyOrder returns the records so that every resource comes before
// the resources it depends on. Among independent resources the most
// recently recorded goes first.
func destroyOrder(records []state.ResourceState) []state.ResourceState {
	remaining := make([]state.ResourceState, len(records))
	copy(remaining, records)

	var order []state.ResourceState
	for len(remaining) > 0 {
		needed := map[string]bool{}
		for _, rs := range remaining {
			for _, dep := range rs.DependsOn {
				needed[dep] = true
			}
		}

		var next []state.ResourceState
		picked := false
		for i := len(remaining) - 1; i >= 0; i-- {
			if !needed[remaining[i].URN] {
				order = append(order, remaining[i])
				picked = true
			} else {
				next = append([]state.ResourceState{remaining[i]}, next...)
			}
		}
		if !picked {
			// A recorded cycle; fall back to reverse record order.
			for i := len(next) - 1; i >= 0; i-- {
				order = append(order, next[i])
			}
			break
		}
		remaining = next
	}
	return order
}

// Outputs returns the exports recorded for ref.
func (e *Engine) Outputs(ctx context.Context, ref Ref) (map[string]string, error) {
	snap, err := e.store.Load(ctx, ref.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to load state for stack %s: %w", ref.Stack, err)
	}
	return snap.Exports, nil
}
