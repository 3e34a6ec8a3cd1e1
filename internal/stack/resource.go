package stack

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind names a resource type.
type Kind string

const (
	KindNetwork  Kind = "network"
	KindSubnet   Kind = "subnet"
	KindInstance Kind = "instance"
)

// Attribute keys reported by a provider.
const (
	AttrID           = "id"
	AttrName         = "name"
	AttrIPAddress    = "ip_address"
	AttrNATIPAddress = "nat_ip_address"
)

// Attributes are the provider-reported properties of a created resource.
type Attributes map[string]string

// ErrMissingAttribute is returned when a provider omits a required
// attribute.
var ErrMissingAttribute = errors.New("missing attribute")

func (a Attributes) require(key string) (string, error) {
	v := a[key]
	if v == "" {
		return "", fmt.Errorf("%w %q", ErrMissingAttribute, key)
	}
	return v, nil
}

// Property is one declared input, rendered for plans and diffs.
type Property struct {
	Name  string
	Value string
	Known bool
}

// Resource is a declared cloud resource.
type Resource interface {
	URN() string
	Kind() Kind
	// Name is the logical name the resource was declared with.
	Name() string
	// DependsOn lists the URNs this resource must wait for, in
	// declaration order.
	DependsOn() []string
	// Inputs are the deferred values the resource consumes.
	Inputs() []Input
	Properties() []Property
	// Resolve settles the resource's outputs from provider attributes.
	Resolve(Attributes) error
	// Fail settles every unresolved output with err.
	Fail(err error)
}

// ResourceOption customizes a declaration.
type ResourceOption func(*resourceOptions)

type resourceOptions struct {
	dependsOn []string
}

// DependsOn adds explicit dependencies on top of those implied by inputs.
func DependsOn(rs ...Resource) ResourceOption {
	return func(o *resourceOptions) {
		for _, r := range rs {
			o.dependsOn = append(o.dependsOn, r.URN())
		}
	}
}

type base struct {
	urn       string
	kind      Kind
	name      string
	dependsOn []string
}

func newBase(s *Stack, kind Kind, name string, inputs []Input, opts []ResourceOption) base {
	var o resourceOptions
	for _, opt := range opts {
		opt(&o)
	}

	seen := map[string]bool{}
	var deps []string
	add := func(urn string) {
		if urn != "" && !seen[urn] {
			seen[urn] = true
			deps = append(deps, urn)
		}
	}
	for _, in := range inputs {
		add(in.Owner())
	}
	for _, urn := range o.dependsOn {
		add(urn)
	}

	return base{
		urn:       s.URN(kind, name),
		kind:      kind,
		name:      name,
		dependsOn: deps,
	}
}

func (b *base) URN() string { return b.urn }

func (b *base) Kind() Kind { return b.kind }

func (b *base) Name() string { return b.name }

func (b *base) DependsOn() []string {
	return append([]string(nil), b.dependsOn...)
}

func known(name, value string) Property {
	return Property{Name: name, Value: value, Known: true}
}

func deferred[T any](name string, o *Output[T]) Property {
	return Property{Name: name, Value: o.String(), Known: o.Known()}
}

func labelProperties(set map[string]string) []Property {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	props := make([]Property, 0, len(keys))
	for _, k := range keys {
		props = append(props, known("labels."+k, set[k]))
	}
	return props
}

func itoa(i int) string { return strconv.Itoa(i) }

func joinCIDRs(blocks []string) string { return strings.Join(blocks, ",") }
