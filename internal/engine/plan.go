package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/imamik/devinfo/internal/stack"
)

// Action is what Up would do to one resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionSame   Action = "same"
	ActionDelete Action = "delete"
)

// Change is one property whose declared value differs from the snapshot.
type Change struct {
	Property string
	Old      string
	New      string
	// Immutable marks a change Up refuses to make in place.
	Immutable bool
}

// Step is the planned action for one resource.
type Step struct {
	URN        string
	Kind       stack.Kind
	Name       string
	Action     Action
	Properties []stack.Property
	Changes    []Change
}

// PlannedExport is a stack output as far as it is known before Up.
type PlannedExport struct {
	Name  string
	Value string
	Known bool
}

// Plan is the result of Preview.
type Plan struct {
	Stack   string
	Steps   []Step
	Exports []PlannedExport
}

// Count returns the number of steps with action a.
func (p *Plan) Count(a Action) int {
	n := 0
	for _, s := range p.Steps {
		if s.Action == a {
			n++
		}
	}
	return n
}

// HasChanges reports whether Up would change anything.
func (p *Plan) HasChanges() bool {
	return p.Count(ActionSame) != len(p.Steps)
}

// Preview compares st against its last snapshot. It never calls the
// provider; properties that depend on unresolved outputs compare equal.
func (e *Engine) Preview(ctx context.Context, st *stack.Stack) (*Plan, error) {
	snap, err := e.load(ctx, RefOf(st))
	if err != nil {
		return nil, err
	}

	plan := &Plan{Stack: st.Name()}
	for _, r := range st.Resources() {
		step := Step{
			URN:        r.URN(),
			Kind:       r.Kind(),
			Name:       r.Name(),
			Properties: r.Properties(),
		}
		prev, ok := snap.Find(r.URN())
		switch {
		case !ok:
			step.Action = ActionCreate
		default:
			step.Changes = diff(prev.Inputs, step.Properties)
			step.Action = ActionSame
			if len(step.Changes) > 0 {
				step.Action = ActionUpdate
			}
		}
		plan.Steps = append(plan.Steps, step)
	}

	for _, rs := range snap.Resources {
		if _, ok := st.Lookup(rs.URN); ok {
			continue
		}
		plan.Steps = append(plan.Steps, Step{
			URN:    rs.URN,
			Kind:   stack.Kind(rs.Kind),
			Name:   logicalName(rs.URN),
			Action: ActionDelete,
		})
	}

	settled := !plan.HasChanges()
	for _, exp := range st.Exports() {
		pe := PlannedExport{Name: exp.Name, Value: exp.Value.String()}
		if _, known := exp.Value.Value(); known {
			pe.Known = true
		} else if v, ok := snap.Exports[exp.Name]; ok && settled {
			pe.Value, pe.Known = v, true
		}
		plan.Exports = append(plan.Exports, pe)
	}

	return plan, nil
}

// diff lists known properties that differ from the recorded inputs, plus
// recorded inputs that are no longer declared.
func diff(recorded map[string]string, props []stack.Property) []Change {
	var changes []Change
	seen := map[string]bool{}
	for _, p := range props {
		seen[p.Name] = true
		if !p.Known {
			continue
		}
		old, ok := recorded[p.Name]
		if !ok || old != p.Value {
			changes = append(changes, Change{Property: p.Name, Old: old, New: p.Value, Immutable: !mutable(p.Name)})
		}
	}

	var removed []string
	for name := range recorded {
		if !seen[name] {
			removed = append(removed, name)
		}
	}
	sort.Strings(removed)
	for _, name := range removed {
		changes = append(changes, Change{Property: name, Old: recorded[name], Immutable: !mutable(name)})
	}
	return changes
}

// mutable reports whether the provider can change property in place.
// Only labels are updated on existing resources.
func mutable(property string) bool {
	return strings.HasPrefix(property, "labels.")
}

// immutableChanges names the properties of props that differ from the
// recorded inputs and cannot change in place.
func immutableChanges(recorded map[string]string, props []stack.Property) []string {
	var names []string
	for _, c := range diff(recorded, props) {
		if c.Immutable {
			names = append(names, c.Property)
		}
	}
	return names
}

// knownInputs records the declared properties of a resolved resource.
func knownInputs(r stack.Resource) map[string]string {
	inputs := map[string]string{}
	for _, p := range r.Properties() {
		if p.Known {
			inputs[p.Name] = p.Value
		}
	}
	return inputs
}

// logicalName extracts the last URN segment.
func logicalName(urn string) string {
	for i := len(urn) - 1; i > 0; i-- {
		if urn[i] == ':' && urn[i-1] == ':' {
			return urn[i+1:]
		}
	}
	return urn
}
