// Package module defines the contract modkit composes and a port registry
package module

import phttp "djnic/internal/platform/net/http"

// Module mounts routes and exposes ports to sibling modules
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
