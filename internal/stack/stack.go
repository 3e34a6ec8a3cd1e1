package stack

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/imamik/devinfo/internal/util/naming"
)

var (
	// ErrDuplicateURN is returned when two resources share a URN.
	ErrDuplicateURN = errors.New("duplicate resource URN")
	// ErrDuplicateExport is returned when an export name is reused.
	ErrDuplicateExport = errors.New("duplicate export")
	// ErrUnknownDependency is returned when a resource depends on a URN
	// that has not been registered.
	ErrUnknownDependency = errors.New("unknown dependency")
)

// Scope places a stack within a cloud account.
type Scope struct {
	CloudID  string
	FolderID string
}

// Export is a named stack output.
type Export struct {
	Name  string
	Value *Output[string]
}

// Stack is an ordered collection of declared resources and exports.
type Stack struct {
	name  string
	scope Scope

	mu        sync.Mutex
	resources []Resource
	byURN     map[string]Resource
	exports   map[string]*Output[string]
}

// New returns an empty stack.
func New(name string, scope Scope) *Stack {
	return &Stack{
		name:    name,
		scope:   scope,
		byURN:   map[string]Resource{},
		exports: map[string]*Output[string]{},
	}
}

// Name returns the stack name.
func (s *Stack) Name() string { return s.name }

// Scope returns the stack's cloud scope.
func (s *Stack) Scope() Scope { return s.scope }

// URN returns the URN a resource of kind with the logical name would get.
func (s *Stack) URN(kind Kind, name string) string {
	return naming.URN(s.name, string(kind), name)
}

// Register adds r to the stack. Every dependency must already be
// registered, so declaration order is always a valid creation order.
func (s *Stack) Register(r Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byURN[r.URN()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateURN, r.URN())
	}
	for _, dep := range r.DependsOn() {
		if _, ok := s.byURN[dep]; !ok {
			return fmt.Errorf("%w: %s depends on %s", ErrUnknownDependency, r.URN(), dep)
		}
	}
	s.resources = append(s.resources, r)
	s.byURN[r.URN()] = r
	return nil
}

// Export publishes value under name.
func (s *Stack) Export(name string, value *Output[string]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.exports[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateExport, name)
	}
	s.exports[name] = value
	return nil
}

// Resources returns the resources in declaration order.
func (s *Stack) Resources() []Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Resource(nil), s.resources...)
}

// Lookup returns the resource registered under urn.
func (s *Stack) Lookup(urn string) (Resource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byURN[urn]
	return r, ok
}

// Exports returns the exports sorted by name.
func (s *Stack) Exports() []Export {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Export, 0, len(s.exports))
	for name, v := range s.exports {
		out = append(out, Export{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
