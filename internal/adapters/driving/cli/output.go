package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
)

// Output styles.
var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// queryResultJSON is the machine-readable rendering of a QueryResult.
type queryResultJSON struct {
	Answer        string                  `json:"answer,omitempty"`
	Context       []domain.RetrievedChunk `json:"context"`
	InferredKind  string                  `json:"inferred_kind,omitempty"`
	AppliedFilter *domain.Filter          `json:"applied_filter,omitempty"`
	FallbackUsed  bool                    `json:"fallback_used"`
}

// printQueryJSON writes the result as indented JSON.
func printQueryJSON(cmd *cobra.Command, res *domain.QueryResult) error {
	out := queryResultJSON{
		Answer:        res.Answer,
		Context:       res.Context,
		InferredKind:  string(res.InferredKind),
		AppliedFilter: res.AppliedFilter,
		FallbackUsed:  res.FallbackUsed,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printQueryResult writes a human-readable rendering of the result.
func printQueryResult(cmd *cobra.Command, res *domain.QueryResult) {
	if res.Answer != "" {
		cmd.Println(headingStyle.Render("Answer"))
		cmd.Println(res.Answer)
		cmd.Println()
	}

	cmd.Println(headingStyle.Render("Sources"))
	for i, chunk := range res.Context {
		source := "unknown"
		if s, ok := chunk.Metadata["source"].(string); ok && s != "" {
			source = s
		}
		cmd.Printf("  [%d] %s %s\n", i+1, source,
			faintStyle.Render(fmt.Sprintf("(distance %.3f)", chunk.Distance)))
	}

	if res.InferredKind != "" {
		cmd.Println(faintStyle.Render(fmt.Sprintf("Inferred kind: %s", res.InferredKind)))
	}
	if res.FallbackUsed {
		cmd.Println(noteStyle.Render("Note: the filtered query matched nothing; results are unfiltered."))
	}
}
