// Package chroma provides a vector store adapter backed by a Chroma
// server's REST API.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
	"github.com/scholarch/scholarch-cli/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 60 * time.Second
)

// metadataModelKey is the collection metadata key recording which
// embedding model built the collection.
const metadataModelKey = "embedding_model"

// Config holds configuration for the Chroma vector store.
type Config struct {
	// BaseURL is the Chroma server base URL (default: http://localhost:8000).
	BaseURL string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// VectorStore talks to a Chroma server over its REST API.
type VectorStore struct {
	client  *http.Client
	baseURL string

	mu  sync.Mutex
	ids map[string]string // collection name -> server-side ID
}

// collectionResponse is the Chroma collection object.
type collectionResponse struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata"`
}

// createCollectionRequest is the create/get_or_create request format.
type createCollectionRequest struct {
	Name        string         `json:"name"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	GetOrCreate bool           `json:"get_or_create"`
}

// upsertRequest is the collection upsert request format.
type upsertRequest struct {
	IDs        []string         `json:"ids"`
	Embeddings [][]float32      `json:"embeddings"`
	Metadatas  []map[string]any `json:"metadatas"`
	Documents  []string         `json:"documents"`
}

// queryRequest is the collection query request format.
type queryRequest struct {
	QueryEmbeddings [][]float32    `json:"query_embeddings"`
	NResults        int            `json:"n_results"`
	Where           map[string]any `json:"where,omitempty"`
	Include         []string       `json:"include"`
}

// queryResponse is the collection query response format. Results are
// grouped per query embedding; we always send exactly one.
type queryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

// NewVectorStore creates a new Chroma vector store client.
func NewVectorStore(cfg Config) *VectorStore {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &VectorStore{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		ids:     make(map[string]string),
	}
}

// EnsureCollection creates the collection if it does not exist. An
// existing collection built with a different embedding model returns
// domain.ErrModelMismatch.
func (s *VectorStore) EnsureCollection(ctx context.Context, name, embeddingModel string) error {
	reqBody := createCollectionRequest{
		Name:        name,
		Metadata:    map[string]any{metadataModelKey: embeddingModel},
		GetOrCreate: true,
	}

	var coll collectionResponse
	if err := s.do(ctx, http.MethodPost, "/api/v1/collections", reqBody, &coll); err != nil {
		return err
	}

	if existing, ok := coll.Metadata[metadataModelKey].(string); ok && existing != embeddingModel {
		return fmt.Errorf("collection %q built with %q, requested %q: %w",
			name, existing, embeddingModel, domain.ErrModelMismatch)
	}

	s.mu.Lock()
	s.ids[name] = coll.ID
	s.mu.Unlock()
	return nil
}

// DeleteCollection removes a collection and all of its entries.
func (s *VectorStore) DeleteCollection(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		s.baseURL+"/api/v1/collections/"+name, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chroma error (status %d): %s", resp.StatusCode, string(body))
	}

	s.mu.Lock()
	delete(s.ids, name)
	s.mu.Unlock()
	return nil
}

// Upsert stores entries in the collection, replacing entries with the
// same ID.
func (s *VectorStore) Upsert(ctx context.Context, collection string, entries []driven.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	id, err := s.collectionID(ctx, collection)
	if err != nil {
		return err
	}

	reqBody := upsertRequest{
		IDs:        make([]string, len(entries)),
		Embeddings: make([][]float32, len(entries)),
		Metadatas:  make([]map[string]any, len(entries)),
		Documents:  make([]string, len(entries)),
	}
	for i, entry := range entries {
		reqBody.IDs[i] = entry.ID
		reqBody.Embeddings[i] = entry.Embedding
		reqBody.Metadatas[i] = entry.Metadata
		reqBody.Documents[i] = entry.Document
	}

	return s.do(ctx, http.MethodPost, "/api/v1/collections/"+id+"/upsert", reqBody, nil)
}

// Query returns up to topK entries ranked by distance to the vector. A
// non-nil filter becomes a Chroma $eq where-clause.
func (s *VectorStore) Query(ctx context.Context, collection string, vector []float32, topK int, filter *domain.Filter) ([]driven.Hit, error) {
	id, err := s.collectionID(ctx, collection)
	if err != nil {
		return nil, err
	}

	reqBody := queryRequest{
		QueryEmbeddings: [][]float32{vector},
		NResults:        topK,
		Include:         []string{"documents", "metadatas", "distances"},
	}
	if filter != nil {
		reqBody.Where = map[string]any{
			filter.Key: map[string]any{"$eq": filter.Value},
		}
	}

	var queryResp queryResponse
	if err := s.do(ctx, http.MethodPost, "/api/v1/collections/"+id+"/query", reqBody, &queryResp); err != nil {
		return nil, err
	}

	if len(queryResp.IDs) == 0 {
		return nil, nil
	}

	hits := make([]driven.Hit, len(queryResp.IDs[0]))
	for i, hitID := range queryResp.IDs[0] {
		hits[i].ID = hitID
		if len(queryResp.Documents) > 0 && i < len(queryResp.Documents[0]) {
			hits[i].Document = queryResp.Documents[0][i]
		}
		if len(queryResp.Metadatas) > 0 && i < len(queryResp.Metadatas[0]) {
			hits[i].Metadata = queryResp.Metadatas[0][i]
		}
		if len(queryResp.Distances) > 0 && i < len(queryResp.Distances[0]) {
			hits[i].Distance = queryResp.Distances[0][i]
		}
	}
	return hits, nil
}

// Close releases resources.
func (s *VectorStore) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// collectionID resolves a collection name to its server-side ID,
// caching the result.
func (s *VectorStore) collectionID(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	id, ok := s.ids[name]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/api/v1/collections/"+name, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chroma error (status %d): %s", resp.StatusCode, string(body))
	}

	var coll collectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&coll); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	s.mu.Lock()
	s.ids[name] = coll.ID
	s.mu.Unlock()
	return coll.ID, nil
}

// do sends a JSON request and decodes the JSON response into out when
// out is non-nil.
func (s *VectorStore) do(ctx context.Context, method, path string, in, out any) error {
	jsonBody, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chroma error (status %d): %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
