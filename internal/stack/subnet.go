package stack

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/imamik/devinfo/internal/util/labels"
)

// SubnetArgs declares a subnet inside a network.
type SubnetArgs struct {
	Name         string
	Zone         string
	V4CIDRBlocks []string
	NetworkID    *Output[string]
	Labels       map[string]string
}

// SubnetSpec is a subnet with every input resolved.
type SubnetSpec struct {
	Name         string
	Zone         string
	V4CIDRBlocks []string
	NetworkID    string
	Labels       map[string]string
}

// Subnet is a declared subnet.
type Subnet struct {
	base
	Args SubnetArgs

	ID *Output[string]
}

// NewSubnet declares a subnet and registers it with s. The subnet depends
// on whichever resource produces Args.NetworkID.
func NewSubnet(s *Stack, name string, args SubnetArgs, opts ...ResourceOption) (*Subnet, error) {
	if args.Name == "" {
		return nil, errors.New("subnet name is required")
	}
	if args.NetworkID == nil {
		return nil, fmt.Errorf("subnet %s: network id is required", name)
	}
	if len(args.V4CIDRBlocks) == 0 {
		return nil, fmt.Errorf("subnet %s: at least one CIDR block is required", name)
	}
	for _, block := range args.V4CIDRBlocks {
		p, err := netip.ParsePrefix(block)
		if err != nil || !p.Addr().Is4() {
			return nil, fmt.Errorf("subnet %s: invalid IPv4 CIDR %q", name, block)
		}
	}
	if err := labels.Validate(args.Labels); err != nil {
		return nil, fmt.Errorf("subnet %s: %w", name, err)
	}

	sub := &Subnet{
		base: newBase(s, KindSubnet, name, []Input{args.NetworkID}, opts),
		Args: args,
	}
	sub.ID = newOutput[string](sub.urn)

	if err := s.Register(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Inputs implements Resource.
func (s *Subnet) Inputs() []Input { return []Input{s.Args.NetworkID} }

// Properties implements Resource.
func (s *Subnet) Properties() []Property {
	props := []Property{
		known("name", s.Args.Name),
		known("zone", s.Args.Zone),
		known("v4_cidr_blocks", joinCIDRs(s.Args.V4CIDRBlocks)),
		deferred("network_id", s.Args.NetworkID),
	}
	return append(props, labelProperties(s.Args.Labels)...)
}

// Spec returns the provider request. It fails while the network id is
// unresolved.
func (s *Subnet) Spec() (SubnetSpec, error) {
	networkID, err := s.Args.NetworkID.Get()
	if err != nil {
		return SubnetSpec{}, fmt.Errorf("subnet %s: network id: %w", s.name, err)
	}
	return SubnetSpec{
		Name:         s.Args.Name,
		Zone:         s.Args.Zone,
		V4CIDRBlocks: s.Args.V4CIDRBlocks,
		NetworkID:    networkID,
		Labels:       s.Args.Labels,
	}, nil
}

// Resolve implements Resource.
func (s *Subnet) Resolve(attrs Attributes) error {
	id, err := attrs.require(AttrID)
	if err != nil {
		return fmt.Errorf("subnet %s: %w", s.name, err)
	}
	s.ID.resolve(id)
	return nil
}

// Fail implements Resource.
func (s *Subnet) Fail(err error) {
	s.ID.fail(err)
}
