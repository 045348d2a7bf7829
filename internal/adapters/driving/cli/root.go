package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/monster2z/llm-rag-pro/internal/adapters/driven/config/file"
	"github.com/monster2z/llm-rag-pro/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/monster2z/llm-rag-pro/internal/adapters/driven/embedding/openai"
	"github.com/monster2z/llm-rag-pro/internal/adapters/driven/index/flat"
	"github.com/monster2z/llm-rag-pro/internal/adapters/driven/llm/anthropic"
	openaillm "github.com/monster2z/llm-rag-pro/internal/adapters/driven/llm/openai"
	"github.com/monster2z/llm-rag-pro/internal/adapters/driven/storage/sqlite"
	"github.com/monster2z/llm-rag-pro/internal/chunker"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driving"
	"github.com/monster2z/llm-rag-pro/internal/core/services"
	"github.com/monster2z/llm-rag-pro/internal/extractors"
	"github.com/monster2z/llm-rag-pro/internal/logger"
)

// Persistent flags.
var (
	verbose bool
	dataDir string
	asUser  string
)

// Wired services, set once by initServices.
var (
	store               *sqlite.Store
	configStore         driven.ConfigStore
	embeddingService    driven.EmbeddingService
	llmService          driven.LLMService
	indexManager        *services.IndexManager
	ingestService       driving.IngestService
	askService          driving.AskService
	documentService     driving.DocumentService
	conversationService driving.ConversationService
)

var rootCmd = &cobra.Command{
	Use:   "ragpro",
	Short: "Versioned document corpus with retrieval-augmented answers",
	Long: `ragpro maintains a versioned corpus of embedded documents and answers
questions grounded in them. Upload files, ask questions, and manage
document versions from one CLI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return initServices(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close() //nolint:errcheck
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.ragpro/data)")
	rootCmd.PersistentFlags().StringVar(&asUser, "user", "", "acting username (default $USER)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// initServices builds the adapter stack and wires the core services.
func initServices(cmd *cobra.Command) error {
	if asUser == "" {
		asUser = os.Getenv("USER")
	}
	if asUser == "" {
		asUser = "unknown"
	}

	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = cfg

	if dataDir == "" {
		dataDir = cfg.GetString("data_dir")
	}
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragpro", "data")
	}

	store, err = sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	embeddingService, err = buildEmbedder(cfg)
	if err != nil {
		return err
	}

	// The LLM is optional: without one, upload and document management
	// still work, only ask/chat are unavailable.
	llmService, err = buildLLM(cfg)
	if err != nil {
		logger.Warn("LLM unavailable: %v", err)
	}

	indexStore := flat.NewStore()
	registry := store.Registry()
	indexManager = services.NewIndexManager(registry, indexStore)

	retriever := services.NewRetriever(embeddingService, indexManager,
		services.WithRerank(!cfg.GetBool("retriever.disable_rerank")))

	ingestService = services.NewIngestor(registry, indexStore, embeddingService,
		extractors.NewRegistry(), buildChunker(cfg), indexManager, dataDir)
	documentService = services.NewDocumentManager(registry, indexManager)
	conversationService = services.NewConversationManager(store.Conversations())
	if llmService != nil {
		askService = services.NewPipeline(retriever, services.NewSynthesizer(llmService))
	}

	if err := indexManager.Rebuild(cmd.Context()); err != nil {
		logger.Warn("combined index rebuild failed: %v", err)
	}
	return nil
}

// buildChunker applies chunking parameters from config, keeping the
// splitter defaults for unset keys.
func buildChunker(cfg driven.ConfigStore) *chunker.Splitter {
	var opts []chunker.Option
	if size := cfg.GetInt("chunker.size"); size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap := cfg.GetInt("chunker.overlap"); overlap > 0 {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	return chunker.New(opts...)
}

// buildEmbedder selects the embedding provider from config.
func buildEmbedder(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	provider := cfg.GetString("embedding.provider")
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			apiKey = cfg.GetString("openai.api_key")
		}
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  apiKey,
			BaseURL: cfg.GetString("openai.base_url"),
			Model:   cfg.GetString("embedding.model"),
		})
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.GetString("ollama.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// buildLLM selects the completion provider from config.
func buildLLM(cfg driven.ConfigStore) (driven.LLMService, error) {
	provider := cfg.GetString("llm.provider")
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			apiKey = cfg.GetString("openai.api_key")
		}
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  apiKey,
			BaseURL: cfg.GetString("openai.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			apiKey = cfg.GetString("anthropic.api_key")
		}
		return anthropic.NewLLMService(anthropic.Config{
			APIKey: apiKey,
			Model:  cfg.GetString("llm.model"),
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
