package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/scholarch/scholarch-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
// It embeds by hashing words onto a small fixed vector so related
// strings land near each other deterministically.
type mockEmbedder struct {
	model    string
	embedErr error
	batchErr error
	calls    int
}

func (m *mockEmbedder) vector(text string) []float32 {
	v := make([]float32, 8)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		var h uint32
		for _, r := range word {
			h = h*31 + uint32(r)
		}
		v[h%8]++
	}
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.calls++
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	m.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return 8 }

func (m *mockEmbedder) ModelName() string {
	if m.model == "" {
		return "mock-embed"
	}
	return m.model
}

func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	response    string
	generateErr error
	prompts     []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	m.prompts = append(m.prompts, prompt)
	if m.response == "" {
		return "mock answer", nil
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string         { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

// failingStore wraps a store and fails Upsert after N successful
// batches.
type failingStore struct {
	driven.VectorStore
	failAfter int
	upserts   int
}

func (f *failingStore) Upsert(ctx context.Context, collection string, entries []driven.Entry) error {
	if f.upserts >= f.failAfter {
		return fmt.Errorf("store exploded")
	}
	f.upserts++
	return f.VectorStore.Upsert(ctx, collection, entries)
}
