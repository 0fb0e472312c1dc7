package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to classify, route and answer"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of chunks to retrieve (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Label      string        `json:"label"`
	Reason     string        `json:"reason,omitempty"`
	Collection string        `json:"collection,omitempty"`
	Skipped    bool          `json:"skipped"`
	Answer     string        `json:"answer,omitempty"`
	Sources    []ChunkOutput `json:"sources,omitempty"`
}

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Question   string `json:"question" jsonschema:"the question to answer"`
	Collection string `json:"collection" jsonschema:"the collection to query"`
	TopK       int    `json:"top_k,omitempty" jsonschema:"number of chunks to retrieve (default 5)"`
	Kind       string `json:"kind,omitempty" jsonschema:"explicit document-kind filter (class, function, tutorial, ...)"`
	Topic      string `json:"topic,omitempty" jsonschema:"explicit topic filter (motion_planning, task_and_motion_planning)"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Answer       string        `json:"answer"`
	Sources      []ChunkOutput `json:"sources"`
	InferredKind string        `json:"inferred_kind,omitempty"`
	FallbackUsed bool          `json:"fallback_used"`
}

// ChunkOutput represents one retrieved chunk.
type ChunkOutput struct {
	ID       string  `json:"id"`
	Source   string  `json:"source,omitempty"`
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Classify a research question, route it to the right documentation collection and answer it",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Answer a question against a named collection, bypassing the router",
	}, s.handleQuery)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	res, err := s.ports.Router.Route(ctx, input.Question, domain.RouteOptions{
		TopK:       input.TopK,
		AutoFilter: true,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Label:      string(res.Classification.Label),
		Reason:     res.Classification.Reason,
		Collection: res.Profile.Collection,
		Skipped:    res.Skipped,
	}
	if res.Query != nil {
		output.Answer = res.Query.Answer
		output.Sources = chunkOutputs(res.Query.Context)
	}

	return nil, output, nil
}

// handleQuery handles the query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	if input.Kind != "" && input.Topic != "" {
		return nil, QueryOutput{}, fmt.Errorf("%w: kind and topic are mutually exclusive", domain.ErrInvalidInput)
	}

	opts := domain.QueryOptions{
		Collection: input.Collection,
		TopK:       input.TopK,
		AutoFilter: true,
	}
	if input.Kind != "" {
		opts.Filter = &domain.Filter{Key: "kind", Value: input.Kind}
	}
	if input.Topic != "" {
		opts.Filter = &domain.Filter{Key: "topic", Value: input.Topic}
	}

	res, err := s.ports.Query.Ask(ctx, input.Question, opts)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Answer:       res.Answer,
		Sources:      chunkOutputs(res.Context),
		InferredKind: string(res.InferredKind),
		FallbackUsed: res.FallbackUsed,
	}

	return nil, output, nil
}

// chunkOutputs converts retrieved chunks to their tool output form.
func chunkOutputs(chunks []domain.RetrievedChunk) []ChunkOutput {
	out := make([]ChunkOutput, len(chunks))
	for i, chunk := range chunks {
		source, _ := chunk.Metadata["source"].(string)
		out[i] = ChunkOutput{
			ID:       chunk.ID,
			Source:   source,
			Text:     chunk.Text,
			Distance: chunk.Distance,
		}
	}
	return out
}
