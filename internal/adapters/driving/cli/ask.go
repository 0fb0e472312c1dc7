package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
)

var (
	askTopK          int
	askNoAutoFilter  bool
	askGeneralTarget string
	askJSON          bool
)

// generalTargetOverride lets --general-target win over the configured
// routing.general_target for a single invocation.
var generalTargetOverride string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Classify a question and answer it from the right collection",
	Long: `Classifies the question into one of the routing labels, picks the
collection and filter the label maps to, and runs a retrieval-augmented
query there. Questions labelled general follow the configured general
target: the implementation collection, the whole survey collection, or
an explicit skip.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (0 = default)")
	askCmd.Flags().BoolVar(&askNoAutoFilter, "no-auto-filter", false, "disable kind inference from the question")
	askCmd.Flags().StringVar(&askGeneralTarget, "general-target", "", "where general questions go: implementation, survey or skip")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	generalTargetOverride = askGeneralTarget
	if err := initConfig(); err != nil {
		return err
	}
	if err := initRouterService(); err != nil {
		return err
	}

	topK := askTopK
	if topK == 0 {
		topK = configStore.GetInt("query.top_k")
	}

	res, err := routerService.Route(cmd.Context(), question, domain.RouteOptions{
		TopK:        topK,
		AutoFilter:  !askNoAutoFilter,
		Temperature: configStore.GetFloat("query.temperature"),
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printRouteJSON(cmd, res)
	}

	cmd.Println(faintStyle.Render(fmt.Sprintf("Label: %s (%s)",
		res.Classification.Label, res.Classification.Reason)))

	if res.Skipped {
		cmd.Println(noteStyle.Render("The question is out of scope for the indexed collections; no retrieval was performed."))
		return nil
	}

	cmd.Println(faintStyle.Render(fmt.Sprintf("Collection: %s", res.Profile.Collection)))
	cmd.Println()
	printQueryResult(cmd, res.Query)
	return nil
}

// routeResultJSON is the machine-readable rendering of a RouteResult.
type routeResultJSON struct {
	Label      string           `json:"label"`
	Reason     string           `json:"reason,omitempty"`
	Collection string           `json:"collection,omitempty"`
	Filter     *domain.Filter   `json:"filter,omitempty"`
	Skipped    bool             `json:"skipped"`
	Result     *queryResultJSON `json:"result,omitempty"`
}

func printRouteJSON(cmd *cobra.Command, res *domain.RouteResult) error {
	out := routeResultJSON{
		Label:      string(res.Classification.Label),
		Reason:     res.Classification.Reason,
		Collection: res.Profile.Collection,
		Filter:     res.Profile.Filter,
		Skipped:    res.Skipped,
	}
	if res.Query != nil {
		out.Result = &queryResultJSON{
			Answer:        res.Query.Answer,
			Context:       res.Query.Context,
			InferredKind:  string(res.Query.InferredKind),
			AppliedFilter: res.Query.AppliedFilter,
			FallbackUsed:  res.Query.FallbackUsed,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
