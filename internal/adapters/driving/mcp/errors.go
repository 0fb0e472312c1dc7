// Package mcp provides an MCP (Model Context Protocol) server adapter
// for scholarch. It lets AI assistants query the indexed documentation
// corpora directly.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

// ErrMissingRouterService is returned when the router service is not provided.
var ErrMissingRouterService = errors.New("mcp: router service is required")
