package hcloud

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/devinfo/internal/stack"
	"github.com/imamik/devinfo/internal/util/labels"
	"github.com/imamik/devinfo/internal/util/naming"
	"github.com/imamik/devinfo/internal/util/retry"
)

// EnsureInstance ensures that a server named spec.Name exists, attached to
// the network of its first interface's subnet.
func (c *RealClient) EnsureInstance(ctx context.Context, spec stack.InstanceSpec) (stack.Attributes, bool, error) {
	if len(spec.NetworkInterfaces) == 0 {
		return nil, false, fmt.Errorf("server %s: no network interface", spec.Name)
	}
	nic := spec.NetworkInterfaces[0]
	networkID, _, err := naming.ParseSubnetID(nic.SubnetID)
	if err != nil {
		return nil, false, err
	}
	netID, err := strconv.ParseInt(networkID, 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("invalid network id %q: %w", networkID, err)
	}

	server, _, err := c.client.Server.Get(ctx, spec.Name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get server: %w", err)
	}

	created := false
	if server == nil {
		server, err = c.createServer(ctx, spec, netID)
		if err != nil {
			return nil, false, err
		}
		created = true
	} else {
		if err := validateServer(server, spec); err != nil {
			return nil, false, err
		}
		if !labels.Equal(server.Labels, spec.Labels) {
			if _, _, err := c.client.Server.Update(ctx, server, hcloud.ServerUpdateOpts{Labels: spec.Labels}); err != nil {
				return nil, false, fmt.Errorf("failed to update server labels: %w", err)
			}
		}
	}

	return serverAttributes(server, netID), created, nil
}

func (c *RealClient) createServer(ctx context.Context, spec stack.InstanceSpec, networkID int64) (*hcloud.Server, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.ServerCreate)
	defer cancel()

	opts, err := c.buildServerCreateOpts(ctx, spec, networkID)
	if err != nil {
		return nil, err
	}

	result, err := c.createServerWithRetry(ctx, opts)
	if err != nil {
		return nil, err
	}

	// The create response predates the network attachment.
	server, _, err := c.client.Server.GetByID(ctx, result.Server.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh server: %w", err)
	}
	if server == nil {
		return nil, fmt.Errorf("server %d disappeared after creation", result.Server.ID)
	}
	return server, nil
}

// buildServerCreateOpts resolves the server type, image and location.
func (c *RealClient) buildServerCreateOpts(ctx context.Context, spec stack.InstanceSpec, networkID int64) (hcloud.ServerCreateOpts, error) {
	serverType, err := c.resolveServerType(ctx, spec.PlatformID, spec.Cores, spec.MemoryGB, spec.DiskSizeGB)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	image, err := c.resolveImage(ctx, spec.ImageFamily, serverType.Architecture)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	location, err := c.resolveLocation(ctx, spec.Zone)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	return hcloud.ServerCreateOpts{
		Name:       spec.Name,
		ServerType: serverType,
		Image:      image,
		Location:   location,
		Labels:     spec.Labels,
		UserData:   spec.UserData,
		Networks:   []*hcloud.Network{{ID: networkID}},
		PublicNet: &hcloud.ServerCreatePublicNet{
			EnableIPv4: spec.NetworkInterfaces[0].NAT,
			EnableIPv6: false,
		},
	}, nil
}

// createServerWithRetry creates a server with exponential backoff retry logic
// and waits for the create action and its follow-up actions.
func (c *RealClient) createServerWithRetry(ctx context.Context, opts hcloud.ServerCreateOpts) (hcloud.ServerCreateResult, error) {
	var result hcloud.ServerCreateResult

	err := retry.WithExponentialBackoff(ctx, func() error {
		res, _, err := c.client.Server.Create(ctx, opts)
		if err != nil {
			if isInvalidParameter(err) {
				return retry.Fatal(err)
			}
			return err
		}
		result = res
		return nil
	},
		retry.WithMaxRetries(c.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(c.timeouts.RetryInitialDelay),
		retry.WithRetryIf(isTransient))
	if err != nil {
		return result, fmt.Errorf("failed to create server: %w", err)
	}

	if err := waitForActionResult(ctx, c, &CreateResult[*hcloud.Server]{
		Resource: result.Server,
		Action:   result.Action,
		Actions:  result.NextActions,
	}); err != nil {
		return result, fmt.Errorf("failed to wait for server creation: %w", err)
	}

	return result, nil
}

// validateServer rejects an existing server whose location, type or image
// differs from spec. Those cannot change without recreating the server.
// Fields the API left empty are not compared.
func validateServer(server *hcloud.Server, spec stack.InstanceSpec) error {
	if dc := server.Datacenter; dc != nil && dc.Location != nil && dc.Location.Name != spec.Zone {
		return fmt.Errorf("%w: server %s is in %s (expected %s)",
			ErrResourceDrift, server.Name, dc.Location.Name, spec.Zone)
	}
	if st := server.ServerType; st != nil && st.Name != "" {
		if !inFamily(st.Name, spec.PlatformID) || st.Cores != spec.Cores ||
			int(st.Memory) != spec.MemoryGB || st.Disk < spec.DiskSizeGB {
			return fmt.Errorf("%w: server %s has type %s (expected %s with %d cores, %d GB memory)",
				ErrResourceDrift, server.Name, st.Name, spec.PlatformID, spec.Cores, spec.MemoryGB)
		}
	}
	if img := server.Image; img != nil && img.Name != "" && img.Name != spec.ImageFamily {
		return fmt.Errorf("%w: server %s runs image %s (expected %s)",
			ErrResourceDrift, server.Name, img.Name, spec.ImageFamily)
	}
	return nil
}

// DeleteInstance deletes the server with the given id or name.
func (c *RealClient) DeleteInstance(ctx context.Context, id string) error {
	return (&DeleteOperation[*hcloud.Server]{
		Name:         id,
		ResourceType: "server",
		Get:          c.client.Server.Get,
		Delete: func(ctx context.Context, server *hcloud.Server) (*hcloud.Action, *hcloud.Response, error) {
			result, resp, err := c.client.Server.DeleteWithResult(ctx, server)
			if err != nil {
				return nil, resp, err
			}
			return result.Action, resp, nil
		},
	}).Execute(ctx, c)
}

// serverAttributes reports the private address on networkID and the public
// IPv4 address, if any.
func serverAttributes(server *hcloud.Server, networkID int64) stack.Attributes {
	attrs := stack.Attributes{
		stack.AttrID:           strconv.FormatInt(server.ID, 10),
		stack.AttrName:         server.Name,
		stack.AttrIPAddress:    "",
		stack.AttrNATIPAddress: ServerIPv4(server),
	}
	for _, pn := range server.PrivateNet {
		if pn.Network != nil && pn.Network.ID == networkID && pn.IP != nil {
			attrs[stack.AttrIPAddress] = pn.IP.String()
			break
		}
	}
	return attrs
}

// ServerIPv4 returns the public IPv4 address of a server, or "".
func ServerIPv4(s *hcloud.Server) string {
	if s == nil || s.PublicNet.IPv4.IP == nil || s.PublicNet.IPv4.IP.IsUnspecified() {
		return ""
	}
	return s.PublicNet.IPv4.IP.String()
}
