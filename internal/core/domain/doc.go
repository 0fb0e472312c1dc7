// Package domain defines the core business entities for Scholarch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: The indexable unit produced by extraction
//   - Filter: A single metadata equality constraint
//   - QueryResult: The outcome of one retrieval-augmented question
//   - RoutingTable: The label-to-collection routing configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
