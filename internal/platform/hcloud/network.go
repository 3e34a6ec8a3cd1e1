package hcloud

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/devinfo/internal/stack"
	"github.com/imamik/devinfo/internal/util/labels"
	"github.com/imamik/devinfo/internal/util/naming"
	"github.com/imamik/devinfo/internal/util/retry"
)

// EnsureNetwork ensures that a network named spec.Name exists with the
// requested IP range and labels.
func (c *RealClient) EnsureNetwork(ctx context.Context, spec stack.NetworkSpec) (stack.Attributes, bool, error) {
	_, ipNet, err := net.ParseCIDR(spec.IPRange)
	if err != nil {
		return nil, false, fmt.Errorf("invalid network ip range %q: %w", spec.IPRange, err)
	}

	network, created, err := (&EnsureOperation[*hcloud.Network, hcloud.NetworkCreateOpts, hcloud.NetworkUpdateOpts]{
		Name:         spec.Name,
		ResourceType: "network",
		Get:          c.client.Network.Get,
		Create:       simpleCreate(c.client.Network.Create),
		Update:       noActions(c.client.Network.Update),
		NeedsUpdate: func(network *hcloud.Network) bool {
			return !labels.Equal(network.Labels, spec.Labels)
		},
		Validate: func(network *hcloud.Network) error {
			if network.IPRange == nil || network.IPRange.String() != ipNet.String() {
				return fmt.Errorf("network %s exists but with different IP range %v (expected %s)",
					spec.Name, network.IPRange, ipNet)
			}
			return nil
		},
		CreateOptsMapper: func() hcloud.NetworkCreateOpts {
			return hcloud.NetworkCreateOpts{
				Name:    spec.Name,
				IPRange: ipNet,
				Labels:  spec.Labels,
			}
		},
		UpdateOptsMapper: func(*hcloud.Network) hcloud.NetworkUpdateOpts {
			return hcloud.NetworkUpdateOpts{Labels: spec.Labels}
		},
	}).Execute(ctx, c)
	if err != nil {
		return nil, false, err
	}

	return stack.Attributes{
		stack.AttrID:   strconv.FormatInt(network.ID, 10),
		stack.AttrName: network.Name,
	}, created, nil
}

// EnsureSubnet ensures that each CIDR block of spec is a cloud subnet of
// the network, placed in the network zone of spec.Zone. The subnet id is
// derived from the network id and the first block.
func (c *RealClient) EnsureSubnet(ctx context.Context, spec stack.SubnetSpec) (stack.Attributes, bool, error) {
	network, _, err := c.client.Network.Get(ctx, spec.NetworkID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get network %s: %w", spec.NetworkID, err)
	}
	if network == nil {
		return nil, false, fmt.Errorf("%w: %s", ErrNetworkNotFound, spec.NetworkID)
	}

	zone, err := c.networkZone(ctx, spec.Zone)
	if err != nil {
		return nil, false, err
	}

	created := false
	for _, block := range spec.V4CIDRBlocks {
		added, err := c.addSubnet(ctx, network, block, zone)
		if err != nil {
			return nil, false, err
		}
		created = created || added
	}

	return stack.Attributes{
		stack.AttrID:   naming.SubnetID(spec.NetworkID, spec.V4CIDRBlocks[0]),
		stack.AttrName: spec.Name,
	}, created, nil
}

func (c *RealClient) addSubnet(ctx context.Context, network *hcloud.Network, block string, zone hcloud.NetworkZone) (bool, error) {
	_, ipNet, err := net.ParseCIDR(block)
	if err != nil {
		return false, fmt.Errorf("invalid subnet ip range: %w", err)
	}

	if i := subnetIndex(network, ipNet); i >= 0 {
		if existing := network.Subnets[i].NetworkZone; existing != zone {
			return false, fmt.Errorf("%w: subnet %s is in network zone %s (expected %s)",
				ErrResourceDrift, block, existing, zone)
		}
		return false, nil
	}

	opts := hcloud.NetworkAddSubnetOpts{
		Subnet: hcloud.NetworkSubnet{
			Type:        hcloud.NetworkSubnetTypeCloud,
			IPRange:     ipNet,
			NetworkZone: zone,
		},
	}

	var action *hcloud.Action
	err = retry.WithExponentialBackoff(ctx, func() error {
		a, _, err := c.client.Network.AddSubnet(ctx, network, opts)
		if err != nil {
			return err
		}
		action = a
		return nil
	},
		retry.WithMaxRetries(c.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(c.timeouts.RetryInitialDelay),
		retry.WithRetryIf(isTransient))
	if err != nil {
		return false, fmt.Errorf("failed to add subnet %s: %w", block, err)
	}

	if err := c.waitForActions(ctx, action); err != nil {
		return false, fmt.Errorf("failed to wait for subnet creation: %w", err)
	}
	return true, nil
}

// networkZone returns the network zone of a location.
func (c *RealClient) networkZone(ctx context.Context, location string) (hcloud.NetworkZone, error) {
	loc, err := c.resolveLocation(ctx, location)
	if err != nil {
		return "", err
	}
	return loc.NetworkZone, nil
}

// DeleteSubnet removes the subnet identified by id from its network. A
// missing network or subnet is not an error.
func (c *RealClient) DeleteSubnet(ctx context.Context, id string) error {
	networkID, block, err := naming.ParseSubnetID(id)
	if err != nil {
		return err
	}
	_, ipNet, err := net.ParseCIDR(block)
	if err != nil {
		return fmt.Errorf("invalid subnet id %q: %w", id, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Delete)
	defer cancel()

	return retry.WithExponentialBackoff(ctx, func() error {
		network, _, err := c.client.Network.Get(ctx, networkID)
		if err != nil {
			return retry.Fatal(fmt.Errorf("failed to get network: %w", err))
		}
		if network == nil {
			return nil
		}
		i := subnetIndex(network, ipNet)
		if i < 0 {
			return nil
		}

		action, _, err := c.client.Network.DeleteSubnet(ctx, network, hcloud.NetworkDeleteSubnetOpts{
			Subnet: network.Subnets[i],
		})
		if err != nil {
			if IsNotFound(err) {
				return nil
			}
			if isResourceLocked(err) {
				return err
			}
			return retry.Fatal(fmt.Errorf("failed to delete subnet: %w", err))
		}
		if err := c.waitForActions(ctx, action); err != nil {
			return retry.Fatal(fmt.Errorf("failed to wait for subnet deletion: %w", err))
		}
		return nil
	},
		retry.WithMaxRetries(c.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(c.timeouts.RetryInitialDelay))
}

// DeleteNetwork deletes the network with the given id or name.
func (c *RealClient) DeleteNetwork(ctx context.Context, id string) error {
	return (&DeleteOperation[*hcloud.Network]{
		Name:         id,
		ResourceType: "network",
		Get:          c.client.Network.Get,
		Delete:       noAction(c.client.Network.Delete),
	}).Execute(ctx, c)
}

func subnetIndex(network *hcloud.Network, ipNet *net.IPNet) int {
	for i, subnet := range network.Subnets {
		if subnet.IPRange != nil && subnet.IPRange.String() == ipNet.String() {
			return i
		}
	}
	return -1
}
