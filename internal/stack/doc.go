// Package stack models a declared set of cloud resources.
//
// A program declares resources against a [Stack] and wires them together
// through [Output] values: deferred, typed handles that a provisioning
// engine resolves once the provider has created the producing resource.
// Declaring never talks to a provider; nothing in this package blocks
// except [Output.Await].
//
//	s := stack.New("dev", stack.Scope{CloudID: "c", FolderID: "f"})
//	net, _ := stack.NewNetwork(s, "devinfo-network", stack.NetworkArgs{Name: "devinfo-network"})
//	sub, _ := stack.NewSubnet(s, "devinfo-subnet", stack.SubnetArgs{NetworkID: net.ID, ...})
//	s.Export("network_id", net.ID)
package stack
