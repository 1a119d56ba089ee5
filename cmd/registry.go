package cmd

import (
	"github.com/spf13/cobra"

	"tiresync/core/registry"
)

func registered() []*cobra.Command {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryCmd); ok && v != nil {
		return v.([]*cobra.Command)
	}
	return nil
}

// Register adds a command. Call from init() in custom packages.
// Panics if the registry is locked or the name is already registered.
func Register(c *cobra.Command) {
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryCmd) {
		panic("cmd/registry: locked (register only during init before Apply)")
	}
	list := registered()
	for _, other := range list {
		if other.Name() == c.Name() {
			panic("cmd/registry: duplicate command " + c.Name())
		}
	}
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryCmd, append(list, c))
}

// Apply adds all registered commands to root and locks the registry. Later
// calls are no-ops. A registered command may not shadow a built-in one.
func Apply() {
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryCmd) {
		return
	}
	builtin := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		builtin[c.Name()] = true
	}
	for _, c := range registered() {
		if builtin[c.Name()] {
			panic("cmd/registry: " + c.Name() + " shadows a built-in command")
		}
		rootCmd.AddCommand(c)
	}
	registry.GlobalRegistry.Lock(registry.KeyRegistryCmd)
}
