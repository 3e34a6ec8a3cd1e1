package hcloud

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// resolveServerType picks the smallest non-deprecated server type of the
// platform family (for example "cx" for cx22, cx32) with exactly the
// requested cores and memory and at least diskGB of local disk.
func (c *RealClient) resolveServerType(ctx context.Context, platform string, cores, memoryGB, diskGB int) (*hcloud.ServerType, error) {
	types, err := c.client.ServerType.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list server types: %w", err)
	}

	st := selectServerType(types, platform, cores, memoryGB, diskGB)
	if st == nil {
		return nil, fmt.Errorf("%w: platform %s with %d cores, %d GB memory, %d GB disk",
			ErrNoServerType, platform, cores, memoryGB, diskGB)
	}
	return st, nil
}

func selectServerType(types []*hcloud.ServerType, platform string, cores, memoryGB, diskGB int) *hcloud.ServerType {
	var candidates []*hcloud.ServerType
	for _, st := range types {
		if st.IsDeprecated() || !inFamily(st.Name, platform) {
			continue
		}
		if st.Cores != cores || int(st.Memory) != memoryGB || st.Disk < diskGB {
			continue
		}
		candidates = append(candidates, st)
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Disk != candidates[j].Disk {
			return candidates[i].Disk < candidates[j].Disk
		}
		return candidates[i].Name < candidates[j].Name
	})
	return candidates[0]
}

// inFamily reports whether name is platform followed by digits only.
func inFamily(name, platform string) bool {
	rest, ok := strings.CutPrefix(strings.ToLower(name), strings.ToLower(platform))
	if !ok || rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// resolveImage returns the named system image built for arch.
func (c *RealClient) resolveImage(ctx context.Context, name string, arch hcloud.Architecture) (*hcloud.Image, error) {
	image, _, err := c.client.Image.GetForArchitecture(ctx, name, arch)
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	if image == nil {
		return nil, fmt.Errorf("%w: %s (%s)", ErrImageNotFound, name, arch)
	}
	return image, nil
}

// resolveLocation resolves a location by name.
func (c *RealClient) resolveLocation(ctx context.Context, location string) (*hcloud.Location, error) {
	loc, _, err := c.client.Location.Get(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: %s", ErrLocationNotFound, location)
	}
	return loc, nil
}
