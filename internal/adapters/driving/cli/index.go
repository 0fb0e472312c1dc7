package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scholarch/scholarch-cli/internal/chunkio"
	"github.com/scholarch/scholarch-cli/internal/core/domain"
)

var (
	indexChunksPath string
	indexCollection string
	indexBatchSize  int
	indexReset      bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build a vector store collection from chunk records",
	Long: `Reads chunk records from a JSONL file, embeds them in batches and
upserts them into the target collection. Chunk IDs are deterministic,
so re-running the same input is idempotent. --reset drops the
collection first; there is no recovery.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexChunksPath, "chunks", "chunks.jsonl", "input JSONL chunk records")
	indexCmd.Flags().StringVarP(&indexCollection, "collection", "c", "", "target collection name (required)")
	indexCmd.Flags().IntVar(&indexBatchSize, "batch-size", 0, "chunks per embedding batch (0 = default)")
	indexCmd.Flags().BoolVar(&indexReset, "reset", false, "delete and recreate the collection first")
	indexCmd.MarkFlagRequired("collection") //nolint:errcheck
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if err := initIndexService(); err != nil {
		return err
	}

	chunks, err := chunkio.ReadFile(indexChunksPath)
	if err != nil {
		return fmt.Errorf("reading chunks: %w", err)
	}

	stats, err := indexService.Build(cmd.Context(), chunks, domain.BuildOptions{
		Collection: indexCollection,
		BatchSize:  indexBatchSize,
		Reset:      indexReset,
	})
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	cmd.Printf("Indexed %d chunks into %q (%d batches)\n", stats.Chunks, indexCollection, stats.Batches)
	return nil
}
