// Package modkit wires API modules from shared dependencies
package modkit

import "djnic/internal/modkit/module"

// Module is the surface every API module exposes
type Module = module.Module

// Builder constructs a Module from shared deps and options
type Builder func(Deps, ...Option) Module
