package infra

import (
	"fmt"

	"github.com/imamik/devinfo/internal/config"
	"github.com/imamik/devinfo/internal/stack"
	"github.com/imamik/devinfo/internal/util/labels"
	"github.com/imamik/devinfo/internal/util/naming"
)

// Fixed shape of the environment.
const (
	NamePrefix = "devinfo"

	NetworkLogicalName  = "network-1"
	SubnetLogicalName   = "subnet-1"
	InstanceLogicalName = "vm-1"

	SubnetCIDR  = "192.168.20.0/24"
	PlatformID  = "cx"
	Cores       = 2
	MemoryGB    = 4
	ImageFamily = "ubuntu-22.04"
	BootDiskGB  = 10
	NATEnabled  = true
)

// Export names.
const (
	ExportVMID    = "vm_id"
	ExportVMName  = "vm_name"
	ExportVMExtIP = "vm_external_ip"
	ExportVMIntIP = "vm_internal_ip"
	ExportNetID   = "network_id"
	ExportSubID   = "subnet_id"
)

// ExportNames lists every export the program publishes.
var ExportNames = []string{
	ExportNetID, ExportSubID, ExportVMExtIP, ExportVMID, ExportVMIntIP, ExportVMName,
}

// Config holds the program's inputs. Empty scalars fall back to the
// defaults from package config; the key path is required.
type Config struct {
	CloudID          string
	FolderID         string
	Zone             string
	SSHPublicKeyPath string
}

// FromStack converts the loaded provisioning configuration.
func FromStack(c *config.Stack) Config {
	return Config{
		CloudID:          c.CloudID,
		FolderID:         c.FolderID,
		Zone:             c.Zone,
		SSHPublicKeyPath: c.SSHPublicKeyPath,
	}
}

// WithDefaults returns c with every empty scalar replaced by its default.
func (c Config) WithDefaults() Config {
	if c.CloudID == "" {
		c.CloudID = config.DefaultCloudID
	}
	if c.FolderID == "" {
		c.FolderID = config.DefaultFolderID
	}
	if c.Zone == "" {
		c.Zone = config.DefaultZone
	}
	return c
}

// Scope returns the stack scope for c.
func (c Config) Scope() stack.Scope {
	c = c.WithDefaults()
	return stack.Scope{CloudID: c.CloudID, FolderID: c.FolderID}
}

// Environment is what Declare registered.
type Environment struct {
	Network  *stack.Network
	Subnet   *stack.Subnet
	Instance *stack.Instance
	Key      *PublicKey
	// SSHLogin is user@address for the VM's public address.
	SSHLogin *stack.Output[string]
}

// Declare registers the network, subnet and VM on s and exports their
// identifiers and addresses. An unreadable or malformed key fails before
// anything is registered.
func Declare(s *stack.Stack, cfg Config) (*Environment, error) {
	if cfg.SSHPublicKeyPath == "" {
		return nil, config.ErrKeyPathRequired
	}
	cfg = cfg.WithDefaults()

	key, err := ReadPublicKey(cfg.SSHPublicKeyPath)
	if err != nil {
		return nil, err
	}

	resourceLabels := labels.NewLabelBuilder().Build()

	network, err := stack.NewNetwork(s, NetworkLogicalName, stack.NetworkArgs{
		Name:   naming.Network(NamePrefix),
		Labels: resourceLabels,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare network: %w", err)
	}

	subnet, err := stack.NewSubnet(s, SubnetLogicalName, stack.SubnetArgs{
		Name:         naming.Subnet(NamePrefix),
		Zone:         cfg.Zone,
		V4CIDRBlocks: []string{SubnetCIDR},
		NetworkID:    network.ID,
		Labels:       resourceLabels,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare subnet: %w", err)
	}

	instance, err := stack.NewInstance(s, InstanceLogicalName, stack.InstanceArgs{
		Name:       naming.Instance(NamePrefix),
		Zone:       cfg.Zone,
		PlatformID: PlatformID,
		Resources:  stack.InstanceResources{Cores: Cores, Memory: MemoryGB},
		BootDisk:   stack.BootDiskArgs{ImageFamily: ImageFamily, Size: BootDiskGB},
		NetworkInterfaces: []stack.NetworkInterfaceArgs{
			{SubnetID: subnet.ID, NAT: NATEnabled},
		},
		Metadata: map[string]string{stack.UserDataKey: CloudInit(key.Line)},
		Labels:   resourceLabels,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare instance: %w", err)
	}

	exports := []struct {
		name  string
		value *stack.Output[string]
	}{
		{ExportVMID, instance.ID},
		{ExportVMName, instance.InstanceName},
		{ExportVMExtIP, instance.NATIPAddress},
		{ExportVMIntIP, instance.IPAddress},
		{ExportNetID, network.ID},
		{ExportSubID, subnet.ID},
	}
	for _, e := range exports {
		if err := s.Export(e.name, e.value); err != nil {
			return nil, err
		}
	}

	return &Environment{
		Network:  network,
		Subnet:   subnet,
		Instance: instance,
		Key:      key,
		SSHLogin: stack.Apply(instance.NATIPAddress, func(ip string) string {
			return CloudInitUser + "@" + ip
		}),
	}, nil
}
