package mcp

import (
	"github.com/scholarch/scholarch-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP
// server. This provides a single injection point for dependency
// injection.
type Ports struct {
	// Query answers questions against a named collection.
	Query driving.QueryService

	// Router classifies questions and dispatches them.
	Router driving.RouterService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Router == nil {
		return ErrMissingRouterService
	}
	return nil
}
