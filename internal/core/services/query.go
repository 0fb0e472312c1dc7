package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
	"github.com/scholarch/scholarch-cli/internal/core/ports/driven"
	"github.com/scholarch/scholarch-cli/internal/core/ports/driving"
	"github.com/scholarch/scholarch-cli/internal/logger"
)

// DefaultTopK is the number of chunks retrieved per query.
const DefaultTopK = 5

// DefaultTemperature is the answer generation temperature.
const DefaultTemperature = 0.1

// DefaultAnswerInstructions is the prompt preamble used when the caller
// supplies none. The two-part bilingual answer is a caller-level
// contract carried over from the research group this serves.
const DefaultAnswerInstructions = `You are an assistant for motion planning researchers. Use the provided context to answer the question accurately.
Cite the source path and chunk number in parentheses when possible.
Always respond in two parts:
1. An English answer.
2. A concise Japanese translation of the same answer.`

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService runs retrieval-augmented queries: question embedding,
// filtered vector search with unfiltered failover, context assembly
// and answer generation.
type QueryService struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService
	llm      driven.LLMService
}

// NewQueryService creates a new query service.
func NewQueryService(store driven.VectorStore, embedder driven.EmbeddingService, llm driven.LLMService) *QueryService {
	return &QueryService{store: store, embedder: embedder, llm: llm}
}

// InferKind derives a kind filter value from question keywords.
// Checked in order of specificity; an empty result means no filter.
func InferKind(question string) domain.DocKind {
	lower := strings.ToLower(question)
	switch {
	case strings.Contains(lower, "tutorial"), strings.Contains(lower, "example"):
		return domain.KindTutorial
	case strings.Contains(lower, "namespace"):
		return domain.KindNamespace
	case containsAny(lower, "planner", "class", "algorithm"):
		return domain.KindClass
	case containsAny(lower, "function", "method", "api"):
		return domain.KindFunction
	case strings.Contains(lower, "file"):
		return domain.KindFile
	}
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Retrieve embeds the question and fetches the nearest chunks,
// applying the auto-filter failover policy. No answer is generated.
func (s *QueryService) Retrieve(ctx context.Context, question string, opts domain.QueryOptions) (*domain.QueryResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if opts.Collection == "" {
		return nil, fmt.Errorf("%w: collection name required", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	result := &domain.QueryResult{}

	// An explicit filter wins; auto-filtering only fills the gap.
	filter := opts.Filter
	if filter == nil && opts.AutoFilter {
		if kind := InferKind(question); kind != "" {
			result.InferredKind = kind
			filter = &domain.Filter{Key: "kind", Value: string(kind)}
			logger.Debug("Auto-filter: kind=%s", kind)
		}
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := s.store.Query(ctx, opts.Collection, vector, topK, filter)
	if (err != nil || len(hits) == 0) && filter != nil {
		// A filtered-but-empty result is never surfaced as "no answer"
		// before an unfiltered retry.
		logger.Warn("Filtered query on %q returned nothing, retrying unfiltered", opts.Collection)
		result.FallbackUsed = true
		filter = nil
		hits, err = s.store.Query(ctx, opts.Collection, vector, topK, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("query collection %q: %w", opts.Collection, err)
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("query collection %q: %w", opts.Collection, domain.ErrNoContext)
	}

	result.AppliedFilter = filter
	result.Context = make([]domain.RetrievedChunk, len(hits))
	for i, h := range hits {
		result.Context[i] = domain.RetrievedChunk{
			ID:       h.ID,
			Text:     h.Document,
			Metadata: h.Metadata,
			Distance: h.Distance,
		}
	}
	result.ContextText = FormatContext(result.Context)

	logger.Debug("Retrieved %d chunks (fallback=%t)", len(hits), result.FallbackUsed)
	return result, nil
}

// Ask retrieves context and asks the language model for an answer.
func (s *QueryService) Ask(ctx context.Context, question string, opts domain.QueryOptions) (*domain.QueryResult, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	result, err := s.Retrieve(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	instructions := opts.Instructions
	if instructions == "" {
		instructions = DefaultAnswerInstructions
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}

	prompt := instructions + "\n\nContext:\n" + result.ContextText + "\n\nQuestion:\n" + question

	answer, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: temperature})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	result.Answer = strings.TrimSpace(answer)
	return result, nil
}

// FormatContext renders retrieved chunks into the context block handed
// to the LLM, preserving rank order and labelling each chunk with its
// source so answers can cite it.
func FormatContext(chunks []domain.RetrievedChunk) string {
	blocks := make([]string, 0, len(chunks))
	for i, c := range chunks {
		label := contextLabel(c.Metadata)

		var location []string
		if idx, ok := metaInt(c.Metadata, "chunk_index"); ok {
			location = append(location, fmt.Sprintf("chunk %d", idx))
		}
		if page, ok := metaInt(c.Metadata, "page_start"); ok {
			location = append(location, fmt.Sprintf("page %d", page))
		}

		var metaInfo []string
		if source := metaString(c.Metadata, "source"); source != "" {
			metaInfo = append(metaInfo, source)
		} else {
			metaInfo = append(metaInfo, "unknown")
		}
		metaInfo = append(metaInfo, location...)

		header := fmt.Sprintf("[%d] %s (%s)", i+1, label, strings.Join(metaInfo, ", "))
		blocks = append(blocks, header+"\n"+c.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// contextLabel joins paper title, section title and document title,
// deduplicated in order, into a human-readable chunk label.
func contextLabel(meta map[string]any) string {
	var parts []string
	seen := map[string]bool{}
	for _, key := range []string{"paper_title", "section_title", "title"} {
		if v := metaString(meta, key); v != "" && !seen[v] {
			parts = append(parts, v)
			seen[v] = true
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, " / ")
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

// metaInt tolerates the numeric types different stores hand back:
// in-process maps hold int, JSON decoding yields float64, SQLite
// drivers yield int64.
func metaInt(meta map[string]any, key string) (int, bool) {
	switch v := meta[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}
