package infra

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/devinfo/internal/config"
	"github.com/imamik/devinfo/internal/stack"
)

var wantLabels = map[string]string{
	"environment": "dev",
	"project":     "devops-lab",
	"owner":       "platform-team",
	"managed_by":  "devinfo",
}

func TestDeclare_SSHLogin(t *testing.T) {
	t.Parallel()

	cfg := Config{SSHPublicKeyPath: writeKey(t, testKey+"\n")}
	env, err := Declare(stack.New("dev", cfg.Scope()), cfg)
	require.NoError(t, err)

	_, err = env.SSHLogin.Get()
	assert.ErrorIs(t, err, stack.ErrUnresolved)

	require.NoError(t, env.Instance.Resolve(stack.Attributes{
		stack.AttrID:           "42",
		stack.AttrNATIPAddress: "203.0.113.10",
	}))
	login, err := env.SSHLogin.Get()
	require.NoError(t, err)
	assert.Equal(t, "ubuntu@203.0.113.10", login)
}

func TestDeclare(t *testing.T) {
	t.Parallel()

	cfg := Config{SSHPublicKeyPath: writeKey(t, testKey+"\n")}
	s := stack.New("dev", cfg.Scope())

	env, err := Declare(s, cfg)
	require.NoError(t, err)

	res := s.Resources()
	require.Len(t, res, 3)
	assert.Equal(t, stack.KindNetwork, res[0].Kind())
	assert.Equal(t, stack.KindSubnet, res[1].Kind())
	assert.Equal(t, stack.KindInstance, res[2].Kind())

	assert.Equal(t, "devinfo-network", env.Network.Args.Name)
	assert.Equal(t, wantLabels, env.Network.Args.Labels)

	sub := env.Subnet.Args
	assert.Equal(t, "devinfo-subnet", sub.Name)
	assert.Equal(t, "fsn1", sub.Zone)
	assert.Equal(t, []string{"192.168.20.0/24"}, sub.V4CIDRBlocks)
	assert.Same(t, env.Network.ID, sub.NetworkID)
	assert.Equal(t, wantLabels, sub.Labels)

	vm := env.Instance.Args
	assert.Equal(t, "devinfo-vm", vm.Name)
	assert.Equal(t, "fsn1", vm.Zone)
	assert.Equal(t, "cx", vm.PlatformID)
	assert.Equal(t, stack.InstanceResources{Cores: 2, Memory: 4}, vm.Resources)
	assert.Equal(t, stack.BootDiskArgs{ImageFamily: "ubuntu-22.04", Size: 10}, vm.BootDisk)
	require.Len(t, vm.NetworkInterfaces, 1)
	assert.Same(t, env.Subnet.ID, vm.NetworkInterfaces[0].SubnetID)
	assert.True(t, vm.NetworkInterfaces[0].NAT)
	assert.Equal(t, CloudInit(testKey), vm.Metadata["user-data"])
	assert.Equal(t, wantLabels, vm.Labels)

	assert.Equal(t, []string{env.Network.URN()}, env.Subnet.DependsOn())
	assert.Equal(t, []string{env.Subnet.URN()}, env.Instance.DependsOn())
}

func TestDeclare_Exports(t *testing.T) {
	t.Parallel()

	cfg := Config{SSHPublicKeyPath: writeKey(t, testKey)}
	s := stack.New("dev", cfg.Scope())
	env, err := Declare(s, cfg)
	require.NoError(t, err)

	exports := s.Exports()
	names := make([]string, 0, len(exports))
	byName := map[string]*stack.Output[string]{}
	for _, e := range exports {
		names = append(names, e.Name)
		byName[e.Name] = e.Value
		assert.False(t, e.Value.Known(), "%s must be deferred", e.Name)
	}
	assert.Equal(t, ExportNames, names)

	assert.Same(t, env.Instance.ID, byName["vm_id"])
	assert.Same(t, env.Instance.InstanceName, byName["vm_name"])
	assert.Same(t, env.Instance.NATIPAddress, byName["vm_external_ip"])
	assert.Same(t, env.Instance.IPAddress, byName["vm_internal_ip"])
	assert.Same(t, env.Network.ID, byName["network_id"])
	assert.Same(t, env.Subnet.ID, byName["subnet_id"])
}

func TestDeclare_ConfigOverrides(t *testing.T) {
	t.Parallel()

	cfg := Config{
		CloudID:          "my-cloud",
		FolderID:         "team-a",
		Zone:             "hel1",
		SSHPublicKeyPath: writeKey(t, testKey),
	}
	assert.Equal(t, stack.Scope{CloudID: "my-cloud", FolderID: "team-a"}, cfg.Scope())

	s := stack.New("dev", cfg.Scope())
	env, err := Declare(s, cfg)
	require.NoError(t, err)
	assert.Equal(t, "hel1", env.Subnet.Args.Zone)
	assert.Equal(t, "hel1", env.Instance.Args.Zone)
}

func TestConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	got := Config{}.WithDefaults()
	assert.Equal(t, config.DefaultCloudID, got.CloudID)
	assert.Equal(t, config.DefaultFolderID, got.FolderID)
	assert.Equal(t, config.DefaultZone, got.Zone)
}

func TestDeclare_UnreadableKeyDeclaresNothing(t *testing.T) {
	t.Parallel()

	s := stack.New("dev", stack.Scope{})
	_, err := Declare(s, Config{SSHPublicKeyPath: "/nonexistent/devinfo/id.pub"})

	require.Error(t, err)
	var pathErr *fs.PathError
	assert.True(t, errors.As(err, &pathErr))
	assert.Empty(t, s.Resources())
	assert.Empty(t, s.Exports())
}

func TestDeclare_InvalidKeyDeclaresNothing(t *testing.T) {
	t.Parallel()

	s := stack.New("dev", stack.Scope{})
	_, err := Declare(s, Config{SSHPublicKeyPath: writeKey(t, "ssh-ed25519 !!!")})

	assert.ErrorIs(t, err, ErrInvalidPublicKey)
	assert.Empty(t, s.Resources())
}

func TestDeclare_KeyPathRequired(t *testing.T) {
	t.Parallel()

	_, err := Declare(stack.New("dev", stack.Scope{}), Config{})
	assert.ErrorIs(t, err, config.ErrKeyPathRequired)
}

func TestFromStack(t *testing.T) {
	t.Parallel()

	got := FromStack(&config.Stack{CloudID: "c", FolderID: "f", Zone: "z", SSHPublicKeyPath: "/k"})
	assert.Equal(t, Config{CloudID: "c", FolderID: "f", Zone: "z", SSHPublicKeyPath: "/k"}, got)
}
