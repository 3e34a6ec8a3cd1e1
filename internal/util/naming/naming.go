package naming

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrInvalidSubnetID is returned by ParseSubnetID.
var ErrInvalidSubnetID = errors.New("invalid subnet id")

// Naming functions for provisioned resources.
// Every resource name derives from one prefix so a stack can be found and
// torn down by name alone.

func Network(prefix string) string {
	return fmt.Sprintf("%s-network", prefix)
}

func Subnet(prefix string) string {
	return fmt.Sprintf("%s-subnet", prefix)
}

func Instance(prefix string) string {
	return fmt.Sprintf("%s-vm", prefix)
}

// URN identifies a declared resource within a stack.
func URN(stack, kind, logicalName string) string {
	return fmt.Sprintf("urn:devinfo:%s::%s::%s", stack, kind, logicalName)
}

// StateKey is the object key of a stack snapshot.
func StateKey(cloudID, folderID, stack string) string {
	return path.Join(cloudID, folderID, stack+".yaml")
}

// SubnetID composes the identifier of a subnet that lives inside a network.
func SubnetID(networkID, cidr string) string {
	return fmt.Sprintf("%s-%s", networkID, cidr)
}

// ParseSubnetID splits an identifier built by SubnetID.
func ParseSubnetID(id string) (networkID, cidr string, err error) {
	networkID, cidr, ok := strings.Cut(id, "-")
	if !ok || networkID == "" || cidr == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSubnetID, id)
	}
	return networkID, cidr, nil
}
