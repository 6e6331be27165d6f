// Package collector implements the cheap local-introspection side of a
// collection cycle: metrics that can be read synchronously from the kernel
// every tick without spawning diagnostic tools. Each collector gathers one
// metric category; the registry runs all of them concurrently.
package collector

import "context"

// Collector is the interface that all metric collectors must implement.
type Collector interface {
	// Name returns the unique identifier for this collector.
	Name() string

	// Collect gathers the metric data and returns it.
	// The context allows for cancellation and timeout control.
	Collect(ctx context.Context) (interface{}, error)

	// IsAvailable checks if this collector can run on the current platform.
	// Collectors that return false will not be registered.
	IsAvailable() bool
}
