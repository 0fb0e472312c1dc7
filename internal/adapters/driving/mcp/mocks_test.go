package mcp

import (
	"context"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result   *domain.QueryResult
	err      error
	lastOpts domain.QueryOptions
}

func (m *mockQueryService) Ask(_ context.Context, _ string, opts domain.QueryOptions) (*domain.QueryResult, error) {
	m.lastOpts = opts
	return m.result, m.err
}

func (m *mockQueryService) Retrieve(_ context.Context, _ string, opts domain.QueryOptions) (*domain.QueryResult, error) {
	m.lastOpts = opts
	return m.result, m.err
}

// mockRouterService is a mock implementation of driving.RouterService.
type mockRouterService struct {
	result   *domain.RouteResult
	err      error
	lastOpts domain.RouteOptions
}

func (m *mockRouterService) Classify(_ context.Context, _ string) (domain.Classification, error) {
	if m.result == nil {
		return domain.Classification{}, m.err
	}
	return m.result.Classification, m.err
}

func (m *mockRouterService) Route(_ context.Context, _ string, opts domain.RouteOptions) (*domain.RouteResult, error) {
	m.lastOpts = opts
	return m.result, m.err
}
