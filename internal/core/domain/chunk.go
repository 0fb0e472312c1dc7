package domain

// DocKind classifies the document a chunk was extracted from.
// Structural (API reference) documents carry one of the reference kinds;
// long-form documents carry KindPaper.
type DocKind string

const (
	KindClass     DocKind = "class"
	KindStruct    DocKind = "struct"
	KindNamespace DocKind = "namespace"
	KindFunction  DocKind = "function"
	KindFile      DocKind = "file"
	KindModule    DocKind = "module"
	KindTutorial  DocKind = "tutorial"
	KindPage      DocKind = "page"
	KindMarkdown  DocKind = "markdown"
	KindPaper     DocKind = "paper"
)

// Chunk is the atomic retrievable unit. Its JSON encoding is also the
// persisted record format: chunk files are line-delimited JSON, one
// chunk per line.
//
// Structural documents populate Kind/Symbol/Namespace; section documents
// populate PaperTitle/SectionTitle/SectionLevel/PageStart/PageEnd/Topic.
// ChunkIndex is the zero-based position within the chunk's parent unit
// (a heading-delimited unit for structural documents, a section for
// papers) and is strictly increasing within that unit.
type Chunk struct {
	// ID is a stable identifier, unique within a collection.
	// Derived deterministically from source, unit and position so that
	// re-indexing the same corpus upserts rather than duplicates.
	ID string `json:"id"`

	// Text is the chunk body. Non-empty, length-bounded except for
	// reference chunks, which are never split mid-citation.
	Text string `json:"text"`

	// Source is the originating document identifier (file path or
	// paper title).
	Source string `json:"source"`

	// Title is the document or section heading the chunk belongs to.
	Title string `json:"title,omitempty"`

	Kind      DocKind `json:"kind,omitempty"`
	Symbol    string  `json:"symbol,omitempty"`
	Namespace string  `json:"namespace,omitempty"`

	PaperTitle   string `json:"paper_title,omitempty"`
	SectionTitle string `json:"section_title,omitempty"`
	SectionLevel int    `json:"section_level,omitempty"`
	PageStart    int    `json:"page_start,omitempty"`
	PageEnd      int    `json:"page_end,omitempty"`

	// Topic is a coarse label inferred from title keywords. Empty when
	// no keyword matched; chunks without a topic are excluded from
	// topic-filtered queries.
	Topic string `json:"topic,omitempty"`

	// Reference marks a chunk holding exactly one bibliographic
	// citation. Reference chunks are indivisible.
	Reference bool `json:"reference,omitempty"`

	ChunkIndex int `json:"chunk_index"`
}

// Metadata flattens the chunk's tagged fields into the metadata map
// stored alongside its vector. Empty fields are omitted so equality
// filters only ever match populated values.
func (c Chunk) Metadata() map[string]any {
	meta := map[string]any{
		"source":      c.Source,
		"chunk_index": c.ChunkIndex,
	}
	if c.Title != "" {
		meta["title"] = c.Title
	}
	if c.Kind != "" {
		meta["kind"] = string(c.Kind)
	}
	if c.Symbol != "" {
		meta["symbol"] = c.Symbol
	}
	if c.Namespace != "" {
		meta["namespace"] = c.Namespace
	}
	if c.PaperTitle != "" {
		meta["paper_title"] = c.PaperTitle
	}
	if c.SectionTitle != "" {
		meta["section_title"] = c.SectionTitle
	}
	if c.SectionLevel != 0 {
		meta["section_level"] = c.SectionLevel
	}
	if c.PageStart != 0 {
		meta["page_start"] = c.PageStart
	}
	if c.PageEnd != 0 {
		meta["page_end"] = c.PageEnd
	}
	if c.Topic != "" {
		meta["topic"] = c.Topic
	}
	if c.Reference {
		meta["reference"] = true
	}
	return meta
}

// Filter is an equality constraint on a single metadata key, the only
// filter shape the vector store boundary supports.
type Filter struct {
	Key   string
	Value string
}
