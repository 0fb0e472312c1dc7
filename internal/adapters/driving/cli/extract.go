package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scholarch/scholarch-cli/internal/chunkio"
	"github.com/scholarch/scholarch-cli/internal/core/domain"
	"github.com/scholarch/scholarch-cli/internal/extract/doxygen"
	"github.com/scholarch/scholarch-cli/internal/extract/paper"
	"github.com/scholarch/scholarch-cli/internal/extract/splitter"
)

var (
	extractHTMLDir     string
	extractMarkdownDir string
	extractPDFDir      string
	extractOutput      string
	extractChunkSize   int
	extractOverlap     int
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract chunk records from source documents",
	Long: `Chunks source documents into line-delimited JSON records ready for
indexing. Parse failures on individual documents are logged and skipped
so one broken file never aborts a corpus run.`,
}

var extractDocsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Chunk Doxygen HTML and markdown documentation",
	RunE:  runExtractDocs,
}

var extractPapersCmd = &cobra.Command{
	Use:   "papers",
	Short: "Chunk survey PDFs by outline section",
	RunE:  runExtractPapers,
}

func init() {
	extractDocsCmd.Flags().StringVar(&extractHTMLDir, "html-dir", "", "directory of Doxygen HTML pages")
	extractDocsCmd.Flags().StringVar(&extractMarkdownDir, "markdown-dir", "", "directory of markdown documents")

	extractPapersCmd.Flags().StringVar(&extractPDFDir, "pdf-dir", "", "directory of survey PDFs")

	for _, cmd := range []*cobra.Command{extractDocsCmd, extractPapersCmd} {
		cmd.Flags().StringVarP(&extractOutput, "output", "o", "chunks.jsonl", "output JSONL path")
		cmd.Flags().IntVar(&extractChunkSize, "chunk-size", 0, "maximum chunk length in characters (0 = per-extractor default)")
		cmd.Flags().IntVar(&extractOverlap, "chunk-overlap", 0, "overlap between consecutive chunks (0 = default)")
	}

	extractCmd.AddCommand(extractDocsCmd)
	extractCmd.AddCommand(extractPapersCmd)
	rootCmd.AddCommand(extractCmd)
}

// splitterOptions translates the shared size flags.
func splitterOptions() []splitter.Option {
	var opts []splitter.Option
	if extractChunkSize > 0 {
		opts = append(opts, splitter.WithChunkSize(extractChunkSize))
	}
	if extractOverlap > 0 {
		opts = append(opts, splitter.WithOverlap(extractOverlap))
	}
	return opts
}

func runExtractDocs(cmd *cobra.Command, _ []string) error {
	if extractHTMLDir == "" && extractMarkdownDir == "" {
		return errors.New("at least one of --html-dir or --markdown-dir is required")
	}

	extractor := doxygen.New(splitterOptions()...)
	chunks, err := extractor.ExtractDir(extractHTMLDir, extractMarkdownDir)
	if err != nil {
		return fmt.Errorf("extracting documentation: %w", err)
	}

	if err := chunkio.WriteFile(extractOutput, chunks); err != nil {
		return fmt.Errorf("writing chunks: %w", err)
	}

	cmd.Printf("Wrote %d chunks to %s\n", len(chunks), extractOutput)
	return nil
}

func runExtractPapers(cmd *cobra.Command, _ []string) error {
	if extractPDFDir == "" {
		return errors.New("--pdf-dir is required")
	}

	papers, err := paper.LoadDir(extractPDFDir)
	if err != nil {
		return fmt.Errorf("loading papers: %w", err)
	}
	if len(papers) == 0 {
		return fmt.Errorf("no readable PDFs in %s", extractPDFDir)
	}

	chunker := paper.New(splitterOptions()...)
	var collected []domain.Chunk
	for _, p := range papers {
		collected = append(collected, chunker.Chunk(p)...)
	}

	if err := chunkio.WriteFile(extractOutput, collected); err != nil {
		return fmt.Errorf("writing chunks: %w", err)
	}

	cmd.Printf("Wrote %d chunks from %d papers to %s\n", len(collected), len(papers), extractOutput)
	return nil
}
