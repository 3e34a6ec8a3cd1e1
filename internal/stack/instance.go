package stack

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/imamik/devinfo/internal/util/labels"
)

// UserDataKey is the metadata key carrying the cloud-init payload.
const UserDataKey = "user-data"

// InstanceResources sizes an instance.
type InstanceResources struct {
	Cores  int
	Memory int // GB
}

// BootDiskArgs describes the boot disk.
type BootDiskArgs struct {
	ImageFamily string
	Size        int // GB
}

// NetworkInterfaceArgs attaches an instance to a subnet.
type NetworkInterfaceArgs struct {
	SubnetID *Output[string]
	NAT      bool
}

// InstanceArgs declares a compute instance.
type InstanceArgs struct {
	Name              string
	Zone              string
	PlatformID        string
	Resources         InstanceResources
	BootDisk          BootDiskArgs
	NetworkInterfaces []NetworkInterfaceArgs
	Metadata          map[string]string
	Labels            map[string]string
}

// NetworkInterfaceSpec is a resolved network interface.
type NetworkInterfaceSpec struct {
	SubnetID string
	NAT      bool
}

// InstanceSpec is an instance with every input resolved.
type InstanceSpec struct {
	Name              string
	Zone              string
	PlatformID        string
	Cores             int
	MemoryGB          int
	ImageFamily       string
	DiskSizeGB        int
	NetworkInterfaces []NetworkInterfaceSpec
	UserData          string
	Metadata          map[string]string
	Labels            map[string]string
}

// Instance is a declared compute instance.
type Instance struct {
	base
	Args InstanceArgs

	ID           *Output[string]
	InstanceName *Output[string]
	// IPAddress is the primary interface's private address.
	IPAddress *Output[string]
	// NATIPAddress is the public address; empty without NAT.
	NATIPAddress *Output[string]
}

// NewInstance declares an instance and registers it with s.
func NewInstance(s *Stack, name string, args InstanceArgs, opts ...ResourceOption) (*Instance, error) {
	if args.Name == "" {
		return nil, errors.New("instance name is required")
	}
	if args.Resources.Cores < 1 || args.Resources.Memory < 1 {
		return nil, fmt.Errorf("instance %s: cores and memory must be positive", name)
	}
	if args.BootDisk.ImageFamily == "" || args.BootDisk.Size < 1 {
		return nil, fmt.Errorf("instance %s: boot disk needs an image and a positive size", name)
	}
	if len(args.NetworkInterfaces) == 0 {
		return nil, fmt.Errorf("instance %s: at least one network interface is required", name)
	}
	inputs := make([]Input, 0, len(args.NetworkInterfaces))
	for i, nic := range args.NetworkInterfaces {
		if nic.SubnetID == nil {
			return nil, fmt.Errorf("instance %s: network interface %d has no subnet", name, i)
		}
		inputs = append(inputs, nic.SubnetID)
	}
	if err := labels.Validate(args.Labels); err != nil {
		return nil, fmt.Errorf("instance %s: %w", name, err)
	}

	in := &Instance{
		base: newBase(s, KindInstance, name, inputs, opts),
		Args: args,
	}
	in.ID = newOutput[string](in.urn)
	in.InstanceName = newOutput[string](in.urn)
	in.IPAddress = newOutput[string](in.urn)
	in.NATIPAddress = newOutput[string](in.urn)

	if err := s.Register(in); err != nil {
		return nil, err
	}
	return in, nil
}

// Inputs implements Resource.
func (in *Instance) Inputs() []Input {
	inputs := make([]Input, 0, len(in.Args.NetworkInterfaces))
	for _, nic := range in.Args.NetworkInterfaces {
		inputs = append(inputs, nic.SubnetID)
	}
	return inputs
}

// Properties implements Resource.
func (in *Instance) Properties() []Property {
	a := in.Args
	props := []Property{
		known("name", a.Name),
		known("zone", a.Zone),
		known("platform_id", a.PlatformID),
		known("resources.cores", itoa(a.Resources.Cores)),
		known("resources.memory", itoa(a.Resources.Memory)),
		known("boot_disk.image_family", a.BootDisk.ImageFamily),
		known("boot_disk.size", itoa(a.BootDisk.Size)),
	}
	for i, nic := range a.NetworkInterfaces {
		prefix := "network_interface." + itoa(i)
		props = append(props,
			deferred(prefix+".subnet_id", nic.SubnetID),
			known(prefix+".nat", strconv.FormatBool(nic.NAT)),
		)
	}
	for _, k := range sortedMetadataKeys(a.Metadata) {
		props = append(props, known("metadata."+k, a.Metadata[k]))
	}
	return append(props, labelProperties(a.Labels)...)
}

// Spec returns the provider request. It fails while any subnet id is
// unresolved.
func (in *Instance) Spec() (InstanceSpec, error) {
	a := in.Args
	nics := make([]NetworkInterfaceSpec, 0, len(a.NetworkInterfaces))
	for i, nic := range a.NetworkInterfaces {
		id, err := nic.SubnetID.Get()
		if err != nil {
			return InstanceSpec{}, fmt.Errorf("instance %s: network interface %d subnet id: %w", in.name, i, err)
		}
		nics = append(nics, NetworkInterfaceSpec{SubnetID: id, NAT: nic.NAT})
	}
	return InstanceSpec{
		Name:              a.Name,
		Zone:              a.Zone,
		PlatformID:        a.PlatformID,
		Cores:             a.Resources.Cores,
		MemoryGB:          a.Resources.Memory,
		ImageFamily:       a.BootDisk.ImageFamily,
		DiskSizeGB:        a.BootDisk.Size,
		NetworkInterfaces: nics,
		UserData:          a.Metadata[UserDataKey],
		Metadata:          a.Metadata,
		Labels:            a.Labels,
	}, nil
}

// Resolve implements Resource.
func (in *Instance) Resolve(attrs Attributes) error {
	id, err := attrs.require(AttrID)
	if err != nil {
		return fmt.Errorf("instance %s: %w", in.name, err)
	}
	name := attrs[AttrName]
	if name == "" {
		name = in.Args.Name
	}
	in.ID.resolve(id)
	in.InstanceName.resolve(name)
	in.IPAddress.resolve(attrs[AttrIPAddress])
	in.NATIPAddress.resolve(attrs[AttrNATIPAddress])
	return nil
}

// Fail implements Resource.
func (in *Instance) Fail(err error) {
	in.ID.fail(err)
	in.InstanceName.fail(err)
	in.IPAddress.fail(err)
	in.NATIPAddress.fail(err)
}

func sortedMetadataKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
