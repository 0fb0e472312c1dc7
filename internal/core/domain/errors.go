package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoContext indicates retrieval returned nothing, even after
	// the unfiltered fallback. Answer generation cannot proceed.
	ErrNoContext = errors.New("no context retrieved")

	// ErrModelMismatch indicates a collection was built with a
	// different embedding model than the one configured now.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answer generation and routing are disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Indexing and retrieval are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreUnavailable indicates the vector store is not configured
	// or unreachable.
	ErrStoreUnavailable = errors.New("vector store unavailable")
)
