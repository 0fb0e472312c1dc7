package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
	"github.com/scholarch/scholarch-cli/internal/core/ports/driven"
	"github.com/scholarch/scholarch-cli/internal/core/ports/driving"
	"github.com/scholarch/scholarch-cli/internal/logger"
)

// Ensure RouterService implements the interface.
var _ driving.RouterService = (*RouterService)(nil)

// RouterService classifies questions with the LLM and dispatches them
// to the collection their label maps to. Classification and retrieval
// share no state beyond the resolved profile.
type RouterService struct {
	llm   driven.LLMService
	query driving.QueryService
	table domain.RoutingTable
}

// NewRouterService creates a new router service.
func NewRouterService(llm driven.LLMService, query driving.QueryService, table domain.RoutingTable) *RouterService {
	return &RouterService{llm: llm, query: query, table: table}
}

// labelDefinitions describe each label inside the classification
// prompt. The classifier chooses among exactly these.
var labelDefinitions = []struct {
	label domain.RoutingLabel
	text  string
}{
	{domain.LabelImplementation, "Practical questions about implementing or configuring motion-planning systems (e.g., OMPL APIs, classes, planners, parameters, compilation/integration details)."},
	{domain.LabelMotionPlanning, "Research questions about motion planning concepts, algorithms, or surveys that are not specifically about implementation details."},
	{domain.LabelTaskAndMotionPlanning, "Questions about integrated task-and-motion planning, high-level symbolic reasoning combined with motion."},
	{domain.LabelGeneral, "Anything unrelated or too broad to classify."},
}

// classificationPrompt builds the single prompt enumerating the labels
// and the collections they route to.
func (s *RouterService) classificationPrompt(question string) string {
	var b strings.Builder
	b.WriteString("You are a classifier for research questions.\n")
	b.WriteString("Read the user question and decide which label best describes it.\n")
	b.WriteString("Choose only from:\n")
	for _, def := range labelDefinitions {
		fmt.Fprintf(&b, "- %s\n", def.label)
	}
	for _, def := range labelDefinitions {
		fmt.Fprintf(&b, "%s: %s\n", def.label, def.text)
	}

	b.WriteString("Context about available collections:\n")
	for _, p := range []domain.RoutingProfile{s.table.Implementation, s.table.MotionPlanning, s.table.TaskAndMotion} {
		if p.Description == "" {
			continue
		}
		fmt.Fprintf(&b, "%s collection %q:\n  %s\n", p.Label, p.Collection, p.Description)
	}

	b.WriteString("Respond ONLY in JSON with keys \"label\" and \"reason\".\n\n")
	b.WriteString("Question:\n")
	b.WriteString(question)
	return b.String()
}

// Classify labels the question. Classification never fails hard: an
// unreachable model, malformed JSON or unknown label all resolve to
// the general label so an answer is still attempted.
func (s *RouterService) Classify(ctx context.Context, question string) (domain.Classification, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Classification{}, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return domain.Classification{}, domain.ErrLLMUnavailable
	}

	logger.Section("Question Classification")

	// Temperature zero: classification should be deterministic.
	raw, err := s.llm.Generate(ctx, s.classificationPrompt(question), driven.GenerateOptions{Temperature: 0})
	if err != nil {
		logger.Warn("Classification call failed, defaulting to general: %v", err)
		return domain.Classification{Label: domain.LabelGeneral}, nil
	}

	c := domain.Classification{Label: domain.LabelGeneral, Raw: raw}
	parsed, ok := extractJSONObject(raw)
	if !ok {
		logger.Warn("Classifier returned no parseable JSON, defaulting to general")
		return c, nil
	}

	if label, ok := parsed["label"].(string); ok {
		c.Label = domain.ParseRoutingLabel(label)
	}
	if reason, ok := parsed["reason"].(string); ok {
		c.Reason = strings.TrimSpace(reason)
	}
	logger.Debug("Label: %s (%s)", c.Label, c.Reason)
	return c, nil
}

// Route classifies the question and runs the query its profile
// prescribes. A general label with the skip target returns a skipped
// result without any retrieval call.
func (s *RouterService) Route(ctx context.Context, question string, opts domain.RouteOptions) (*domain.RouteResult, error) {
	classification, err := s.Classify(ctx, question)
	if err != nil {
		return nil, err
	}

	profile, ok := s.table.ProfileFor(classification.Label)
	result := &domain.RouteResult{
		Classification: classification,
		Profile:        profile,
	}
	if !ok {
		logger.Info("General question with skip target, no retrieval")
		result.Skipped = true
		return result, nil
	}

	queryResult, err := s.query.Ask(ctx, question, domain.QueryOptions{
		Collection:   profile.Collection,
		TopK:         opts.TopK,
		AutoFilter:   opts.AutoFilter,
		Filter:       profile.Filter,
		Instructions: profile.Instructions,
		Temperature:  opts.Temperature,
	})
	if err != nil {
		return nil, err
	}
	result.Query = queryResult
	return result, nil
}

// extractJSONObject pulls a JSON object out of model output that may
// wrap it in prose or markdown fences. Tries the whole string first,
// then the outermost brace pair.
func extractJSONObject(text string) (map[string]any, bool) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		return parsed, true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, false
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}
