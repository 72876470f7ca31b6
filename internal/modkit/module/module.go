// Package module defines the minimal contract for a modkit module
package module

// Module is what the command composes: a named bundle of ports.
// Kept apart from the modkit package so a module can export its own Ports
// type without an import cycle.
type Module interface {
	Ports() any
	Name() string
}
