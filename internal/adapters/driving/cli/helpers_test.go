package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	configfile "github.com/scholarch/scholarch-cli/internal/adapters/driven/config/file"
	"github.com/scholarch/scholarch-cli/internal/core/domain"
)

// mockQueryService is a test substitute for driving.QueryService.
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

// mockRouterService is a test substitute for driving.RouterService.
type mockRouterService struct {
	result *domain.RouteResult
	err    error
}

func (m *mockRouterService) Classify(_ context.Context, _ string) (domain.Classification, error) {
	if m.result == nil {
		return domain.Classification{}, m.err
	}
	return m.result.Classification, m.err
}

func (m *mockRouterService) Route(_ context.Context, _ string, _ domain.RouteOptions) (*domain.RouteResult, error) {
	return m.result, m.err
}

// mockIndexService is a test substitute for driving.IndexService.
type mockIndexService struct {
	stats    domain.BuildStats
	err      error
	chunks   []domain.Chunk
	lastOpts domain.BuildOptions
}

func (m *mockIndexService) Build(_ context.Context, chunks []domain.Chunk, opts domain.BuildOptions) (domain.BuildStats, error) {
	m.chunks = chunks
	m.lastOpts = opts
	return m.stats, m.err
}

// setupTestServices injects test substitutes into the package-level
// wiring and restores the previous state on cleanup.
func setupTestServices(t *testing.T, query *mockQueryService, router *mockRouterService, index *mockIndexService) {
	t.Helper()

	store, err := configfile.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	prevConfig, prevQuery, prevRouter, prevIndex := configStore, queryService, routerService, indexService
	configStore = store
	if query != nil {
		queryService = query
	}
	if router != nil {
		routerService = router
	}
	if index != nil {
		indexService = index
	}

	t.Cleanup(func() {
		configStore, queryService, routerService, indexService = prevConfig, prevQuery, prevRouter, prevIndex
		resetFlags()
	})
}

// resetFlags clears package-level flag variables so values never leak
// between tests.
func resetFlags() {
	queryCollection, queryKind, queryTopic, queryInstructions = "", "", "", ""
	queryTopK = 0
	queryNoAutoFilter, queryRetrieveOnly, queryJSON = false, false, false
	askTopK = 0
	askNoAutoFilter, askJSON = false, false
	askGeneralTarget, generalTargetOverride = "", ""
	indexChunksPath, indexCollection = "chunks.jsonl", ""
	indexBatchSize = 0
	indexReset = false
	extractHTMLDir, extractMarkdownDir, extractPDFDir = "", "", ""
	extractOutput = "chunks.jsonl"
	extractChunkSize, extractOverlap = 0, 0

	// Cobra tracks which flags were set per process, not per Execute.
	for _, cmd := range []*cobra.Command{queryCmd, askCmd, indexCmd, extractDocsCmd, extractPapersCmd, mcpServeCmd} {
		cmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}
}

// execute runs the root command with args and captures output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
