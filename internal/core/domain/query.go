package domain

// QueryOptions configures a retrieval query.
type QueryOptions struct {
	// Collection is the vector store collection to query.
	Collection string

	// TopK is the number of nearest chunks to retrieve (default 5).
	TopK int

	// AutoFilter enables keyword-driven inference of a kind filter
	// from the question. Ignored when Filter is set explicitly.
	AutoFilter bool

	// Filter is an explicit metadata filter. Takes precedence over
	// auto-filtering.
	Filter *Filter

	// Instructions is a prompt addendum prepended to the answer
	// prompt. Empty selects the default answer instructions.
	Instructions string

	// Temperature for the answer generation call (default 0.1).
	Temperature float64
}

// RetrievedChunk is one ranked result returned by the vector store,
// carried into the assembled context in rank order.
type RetrievedChunk struct {
	ID       string
	Text     string
	Metadata map[string]any
	Distance float64
}

// QueryResult is the outcome of one retrieval-augmented query.
// It is produced per call and not persisted.
type QueryResult struct {
	// Context holds the retrieved chunks, most relevant first.
	Context []RetrievedChunk

	// ContextText is the assembled context block handed to the LLM.
	ContextText string

	// Answer is the generated text.
	Answer string

	// InferredKind is the kind filter value that auto-filtering
	// attempted, if any. It remains set even when failover removed
	// the filter; AppliedFilter reflects what was actually used.
	InferredKind DocKind

	// AppliedFilter is the filter the returned results were produced
	// under, nil after failover or when no filter was active.
	AppliedFilter *Filter

	// FallbackUsed reports that the filtered query returned nothing
	// and the results come from the unfiltered retry.
	FallbackUsed bool
}

// BuildOptions configures an index build.
type BuildOptions struct {
	// Collection is the target collection name.
	Collection string

	// BatchSize is the number of chunks embedded and upserted per
	// batch (default 64).
	BatchSize int

	// Reset deletes and recreates the collection before ingestion.
	// Destructive, no recovery.
	Reset bool
}

// BuildStats summarises a completed index build.
type BuildStats struct {
	Chunks  int
	Batches int
}
