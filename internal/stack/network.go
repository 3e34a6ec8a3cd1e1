package stack

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/imamik/devinfo/internal/util/labels"
)

// NetworkArgs declares a virtual network.
type NetworkArgs struct {
	Name string
	// IPRange is optional; when empty the engine derives it from the
	// network's subnets.
	IPRange string
	Labels  map[string]string
}

// NetworkSpec is a network with every input resolved.
type NetworkSpec struct {
	Name    string
	IPRange string
	Labels  map[string]string
}

// Network is a declared virtual network.
type Network struct {
	base
	Args NetworkArgs

	ID *Output[string]
}

// NewNetwork declares a network and registers it with s.
func NewNetwork(s *Stack, name string, args NetworkArgs, opts ...ResourceOption) (*Network, error) {
	if args.Name == "" {
		return nil, errors.New("network name is required")
	}
	if args.IPRange != "" {
		if p, err := netip.ParsePrefix(args.IPRange); err != nil || !p.Addr().Is4() {
			return nil, fmt.Errorf("network %s: invalid IPv4 range %q", name, args.IPRange)
		}
	}
	if err := labels.Validate(args.Labels); err != nil {
		return nil, fmt.Errorf("network %s: %w", name, err)
	}

	n := &Network{
		base: newBase(s, KindNetwork, name, nil, opts),
		Args: args,
	}
	n.ID = newOutput[string](n.urn)

	if err := s.Register(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Inputs implements Resource.
func (n *Network) Inputs() []Input { return nil }

// Properties implements Resource.
func (n *Network) Properties() []Property {
	props := []Property{known("name", n.Args.Name)}
	if n.Args.IPRange != "" {
		props = append(props, known("ip_range", n.Args.IPRange))
	}
	return append(props, labelProperties(n.Args.Labels)...)
}

// Spec returns the provider request.
func (n *Network) Spec() NetworkSpec {
	return NetworkSpec{Name: n.Args.Name, IPRange: n.Args.IPRange, Labels: n.Args.Labels}
}

// Resolve implements Resource.
func (n *Network) Resolve(attrs Attributes) error {
	id, err := attrs.require(AttrID)
	if err != nil {
		return fmt.Errorf("network %s: %w", n.name, err)
	}
	n.ID.resolve(id)
	return nil
}

// Fail implements Resource.
func (n *Network) Fail(err error) {
	n.ID.fail(err)
}
