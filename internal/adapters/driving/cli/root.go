// Package cli provides the scholarch command-line interface. Commands
// wire adapters from configuration lazily, so tests can inject service
// substitutes through the package-level variables.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	configfile "github.com/scholarch/scholarch-cli/internal/adapters/driven/config/file"
	ollamaembed "github.com/scholarch/scholarch-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/scholarch/scholarch-cli/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/scholarch/scholarch-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/scholarch/scholarch-cli/internal/adapters/driven/llm/openai"
	"github.com/scholarch/scholarch-cli/internal/adapters/driven/vectorstore/chroma"
	"github.com/scholarch/scholarch-cli/internal/adapters/driven/vectorstore/sqlite"
	"github.com/scholarch/scholarch-cli/internal/core/domain"
	"github.com/scholarch/scholarch-cli/internal/core/ports/driven"
	"github.com/scholarch/scholarch-cli/internal/core/ports/driving"
	"github.com/scholarch/scholarch-cli/internal/core/services"
	"github.com/scholarch/scholarch-cli/internal/logger"
)

// version is stamped at build time via -ldflags.
var version = "0.1.0"

// Persistent flags.
var (
	verbose   bool
	configDir string
)

// Wired adapters and services. Nil until a command needs them; tests
// set these directly.
var (
	configStore driven.ConfigStore
	vectorStore driven.VectorStore
	embedder    driven.EmbeddingService
	llm         driven.LLMService

	indexService  driving.IndexService
	queryService  driving.QueryService
	routerService driving.RouterService
)

// Default collection names, overridable via collections.* config keys.
const (
	defaultImplementationCollection = "implementation_docs"
	defaultSurveyCollection         = "survey_papers"
)

var rootCmd = &cobra.Command{
	Use:   "scholarch",
	Short: "Routed retrieval over technical documentation corpora",
	Long: `Scholarch extracts chunks from Doxygen API documentation and survey
PDFs, indexes them into vector store collections, and answers questions
with retrieval-augmented generation. A classifier routes each question
to the collection most likely to hold the answer.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.scholarch)")
}

// Execute runs the root command.
func Execute() error {
	defer closeResources()
	return rootCmd.Execute()
}

// closeResources releases wired adapters at process exit.
func closeResources() {
	if vectorStore != nil {
		vectorStore.Close() //nolint:errcheck
	}
	if embedder != nil {
		embedder.Close() //nolint:errcheck
	}
	if llm != nil {
		llm.Close() //nolint:errcheck
	}
}

// initConfig loads the TOML config store.
func initConfig() error {
	if configStore != nil {
		return nil
	}
	store, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	configStore = store
	return nil
}

// cfgString reads a config key with a fallback default.
func cfgString(key, fallback string) string {
	if v := configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

// initVectorStore wires the configured vector store backend.
func initVectorStore() error {
	if vectorStore != nil {
		return nil
	}
	if err := initConfig(); err != nil {
		return err
	}

	backend := cfgString("store.backend", "sqlite")
	switch backend {
	case "sqlite":
		dataDir := configStore.GetString("store.data_dir")
		if dataDir == "" && configDir != "" {
			dataDir = filepath.Join(configDir, "data")
		}
		store, err := sqlite.NewVectorStore(dataDir)
		if err != nil {
			return fmt.Errorf("opening sqlite vector store: %w", err)
		}
		vectorStore = store
	case "chroma":
		vectorStore = chroma.NewVectorStore(chroma.Config{
			BaseURL: configStore.GetString("chroma.base_url"),
		})
	default:
		return fmt.Errorf("unknown store backend %q (want sqlite or chroma)", backend)
	}
	logger.Debug("Vector store backend: %s", backend)
	return nil
}

// initEmbedder wires the configured embedding provider.
func initEmbedder() error {
	if embedder != nil {
		return nil
	}
	if err := initConfig(); err != nil {
		return err
	}

	provider := cfgString("embedding.provider", "ollama")
	switch provider {
	case "ollama":
		embedder = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    configStore.GetString("ollama.base_url"),
			Model:      configStore.GetString("ollama.embedding_model"),
			Dimensions: configStore.GetInt("ollama.embedding_dimensions"),
		})
	case "openai":
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     openaiAPIKey(),
			BaseURL:    configStore.GetString("openai.base_url"),
			Model:      configStore.GetString("openai.embedding_model"),
			Dimensions: configStore.GetInt("openai.embedding_dimensions"),
		})
		if err != nil {
			return fmt.Errorf("configuring openai embeddings: %w", err)
		}
		embedder = svc
	default:
		return fmt.Errorf("unknown embedding provider %q (want ollama or openai)", provider)
	}
	logger.Debug("Embedding provider: %s (%s)", provider, embedder.ModelName())
	return nil
}

// initLLM wires the configured LLM provider.
func initLLM() error {
	if llm != nil {
		return nil
	}
	if err := initConfig(); err != nil {
		return err
	}

	provider := cfgString("llm.provider", "ollama")
	switch provider {
	case "ollama":
		llm = ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: configStore.GetString("ollama.base_url"),
			Model:   configStore.GetString("ollama.llm_model"),
		})
	case "openai":
		svc, err := openaillm.NewLLMService(openaillm.Config{
			APIKey:  openaiAPIKey(),
			BaseURL: configStore.GetString("openai.base_url"),
			Model:   configStore.GetString("openai.llm_model"),
		})
		if err != nil {
			return fmt.Errorf("configuring openai llm: %w", err)
		}
		llm = svc
	default:
		return fmt.Errorf("unknown llm provider %q (want ollama or openai)", provider)
	}
	logger.Debug("LLM provider: %s (%s)", provider, llm.ModelName())
	return nil
}

// openaiAPIKey prefers the config key, falling back to the environment.
func openaiAPIKey() string {
	if key := configStore.GetString("openai.api_key"); key != "" {
		return key
	}
	return os.Getenv("OPENAI_API_KEY")
}

// initIndexService wires the index service.
func initIndexService() error {
	if indexService != nil {
		return nil
	}
	if err := initVectorStore(); err != nil {
		return err
	}
	if err := initEmbedder(); err != nil {
		return err
	}
	indexService = services.NewIndexService(vectorStore, embedder)
	return nil
}

// initQueryService wires the query service.
func initQueryService() error {
	if queryService != nil {
		return nil
	}
	if err := initVectorStore(); err != nil {
		return err
	}
	if err := initEmbedder(); err != nil {
		return err
	}
	if err := initLLM(); err != nil {
		return err
	}
	queryService = services.NewQueryService(vectorStore, embedder, llm)
	return nil
}

// initRouterService wires the router service on top of the query
// service and the configured routing table.
func initRouterService() error {
	if routerService != nil {
		return nil
	}
	if err := initQueryService(); err != nil {
		return err
	}
	routerService = services.NewRouterService(llm, queryService, buildRoutingTable())
	return nil
}

// buildRoutingTable assembles the label-to-collection mapping from
// configuration, with working defaults for a standard setup.
func buildRoutingTable() domain.RoutingTable {
	implColl := cfgString("collections.implementation", defaultImplementationCollection)
	surveyColl := cfgString("collections.survey", defaultSurveyCollection)

	return domain.RoutingTable{
		Implementation: domain.RoutingProfile{
			Label:      domain.LabelImplementation,
			Collection: implColl,
			Instructions: cfgString("routing.implementation.instructions",
				"Answer using the API documentation context. Name the relevant classes, functions and parameters explicitly."),
			Description: cfgString("routing.implementation.description",
				"Doxygen API documentation for a sampling-based motion planning library: class references, function signatures, parameters, tutorials."),
		},
		MotionPlanning: domain.RoutingProfile{
			Label:      domain.LabelMotionPlanning,
			Collection: surveyColl,
			Filter:     &domain.Filter{Key: "topic", Value: "motion_planning"},
			Instructions: cfgString("routing.motion_planning.instructions",
				"Answer using the survey paper context. Cite the section titles you drew from."),
			Description: cfgString("routing.motion_planning.description",
				"Survey papers on motion planning research: algorithms, sampling-based methods, completeness and optimality results."),
		},
		TaskAndMotion: domain.RoutingProfile{
			Label:      domain.LabelTaskAndMotionPlanning,
			Collection: surveyColl,
			Filter:     &domain.Filter{Key: "topic", Value: "task_and_motion_planning"},
			Instructions: cfgString("routing.task_and_motion_planning.instructions",
				"Answer using the survey paper context. Cite the section titles you drew from."),
			Description: cfgString("routing.task_and_motion_planning.description",
				"Survey papers on integrated task and motion planning: symbolic planning combined with geometric reasoning."),
		},
		GeneralTarget: domain.ParseGeneralTarget(generalTarget()),
	}
}

// generalTarget resolves the general routing target, letting the
// --general-target flag win over configuration.
func generalTarget() string {
	if generalTargetOverride != "" {
		return generalTargetOverride
	}
	return cfgString("routing.general_target", "implementation")
}
