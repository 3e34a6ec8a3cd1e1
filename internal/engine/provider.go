package engine

import (
	"context"

	"github.com/imamik/devinfo/internal/stack"
)

// Provider creates and deletes cloud resources. Ensure methods are
// get-or-create: they report created=false for a resource that already
// existed, after correcting label drift. Delete methods succeed when the
// resource is already gone.
type Provider interface {
	EnsureNetwork(ctx context.Context, spec stack.NetworkSpec) (attrs stack.Attributes, created bool, err error)
	EnsureSubnet(ctx context.Context, spec stack.SubnetSpec) (attrs stack.Attributes, created bool, err error)
	EnsureInstance(ctx context.Context, spec stack.InstanceSpec) (attrs stack.Attributes, created bool, err error)

	DeleteNetwork(ctx context.Context, id string) error
	DeleteSubnet(ctx context.Context, id string) error
	DeleteInstance(ctx context.Context, id string) error
}
