package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
)

var (
	queryCollection   string
	queryTopK         int
	queryNoAutoFilter bool
	queryKind         string
	queryTopic        string
	queryInstructions string
	queryRetrieveOnly bool
	queryJSON         bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question against one collection",
	Long: `Runs a retrieval-augmented query directly against a named collection,
bypassing the router. Auto-filtering infers a document-kind filter from
the question; when the filtered query matches nothing the pipeline
retries unfiltered.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryCollection, "collection", "c", "", "collection to query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (0 = default)")
	queryCmd.Flags().BoolVar(&queryNoAutoFilter, "no-auto-filter", false, "disable kind inference from the question")
	queryCmd.Flags().StringVar(&queryKind, "kind", "", "explicit kind filter (overrides auto-filtering)")
	queryCmd.Flags().StringVar(&queryTopic, "topic", "", "explicit topic filter (overrides auto-filtering)")
	queryCmd.Flags().StringVar(&queryInstructions, "instructions", "", "custom answer instructions")
	queryCmd.Flags().BoolVar(&queryRetrieveOnly, "retrieve-only", false, "skip answer generation, print retrieved context")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output result as JSON")
	queryCmd.MarkFlagRequired("collection") //nolint:errcheck
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := args[0]

	if err := initConfig(); err != nil {
		return err
	}
	if err := initQueryService(); err != nil {
		return err
	}

	if queryKind != "" && queryTopic != "" {
		return fmt.Errorf("--kind and --topic are mutually exclusive")
	}

	opts := domain.QueryOptions{
		Collection:   queryCollection,
		TopK:         queryTopK,
		AutoFilter:   !queryNoAutoFilter,
		Instructions: queryInstructions,
		Temperature:  configStore.GetFloat("query.temperature"),
	}
	if queryTopK == 0 {
		opts.TopK = configStore.GetInt("query.top_k")
	}
	if queryKind != "" {
		opts.Filter = &domain.Filter{Key: "kind", Value: queryKind}
	}
	if queryTopic != "" {
		opts.Filter = &domain.Filter{Key: "topic", Value: queryTopic}
	}

	var (
		res *domain.QueryResult
		err error
	)
	if queryRetrieveOnly {
		res, err = queryService.Retrieve(cmd.Context(), question, opts)
	} else {
		res, err = queryService.Ask(cmd.Context(), question, opts)
	}
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return printQueryJSON(cmd, res)
	}
	if queryRetrieveOnly {
		cmd.Println(res.ContextText)
		cmd.Println()
	}
	printQueryResult(cmd, res)
	return nil
}
