// Package cli implements the webrag command line interface.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/webrag-cli/internal/adapters/driven/config/file"
	embeddingollama "github.com/custodia-labs/webrag-cli/internal/adapters/driven/embedding/ollama"
	embeddingopenai "github.com/custodia-labs/webrag-cli/internal/adapters/driven/embedding/openai"
	llmanthropic "github.com/custodia-labs/webrag-cli/internal/adapters/driven/llm/anthropic"
	llmollama "github.com/custodia-labs/webrag-cli/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/custodia-labs/webrag-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/webrag-cli/internal/adapters/driven/loader/web"
	"github.com/custodia-labs/webrag-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/webrag-cli/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/webrag-cli/internal/chunker"
	"github.com/custodia-labs/webrag-cli/internal/core/ports/driven"
	"github.com/custodia-labs/webrag-cli/internal/core/ports/driving"
	"github.com/custodia-labs/webrag-cli/internal/core/services"
	"github.com/custodia-labs/webrag-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services are wired lazily by the commands that need them. Tests may
// inject fakes before calling Execute.
var (
	configStore   driven.ConfigStore
	ingestService driving.IngestService
	answerService driving.AnswerService
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "webrag",
	Short: "Ask questions about web articles from your terminal",
	Long: `webrag ingests web articles into a local vector index and answers
questions about them, citing the URLs the answer was drawn from.

Typical usage:

  webrag ingest https://example.com/article-one https://example.com/article-two
  webrag query "What do these articles say about caching?"`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// ensureConfigStore opens the configuration file on first use.
func ensureConfigStore() error {
	if configStore != nil {
		return nil
	}
	store, err := configfile.NewConfigStore(os.Getenv("WEBRAG_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("opening configuration: %w", err)
	}
	configStore = store
	return nil
}

// initServices wires the ingest and answer services from configuration.
// Already-set services (injected by tests) are left alone.
func initServices() error {
	if ingestService != nil && answerService != nil {
		return nil
	}
	if err := ensureConfigStore(); err != nil {
		return err
	}

	embedder, err := buildEmbedder()
	if err != nil {
		return err
	}
	completion, err := buildCompletion()
	if err != nil {
		return err
	}

	store, err := sqlite.NewIndexStore(configStore.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("opening index storage: %w", err)
	}

	var chunkerOpts []chunker.Option
	if size := configStore.GetInt("chunker.max_passage_size"); size > 0 {
		chunkerOpts = append(chunkerOpts, chunker.WithMaxPassageSize(size))
	}

	index := memory.New()
	loader := web.New(web.Config{})

	ingestService = services.NewIngestService(loader, chunker.New(chunkerOpts...), embedder, index, store)

	var answerOpts []services.AnswerOption
	if k := configStore.GetInt("query.top_k"); k > 0 {
		answerOpts = append(answerOpts, services.WithTopK(k))
	}
	answerOpts = append(answerOpts, services.WithCompleteOptions(driven.CompleteOptions{
		MaxTokens:   configStore.GetInt("llm.max_tokens"),
		Temperature: 0.2,
	}))
	answerService = services.NewAnswerService(embedder, completion, index, store, answerOpts...)

	return nil
}

// buildEmbedder creates the embedding service named by configuration.
// Defaults to OpenAI; set embedding.provider to "ollama" for local models.
func buildEmbedder() (driven.EmbeddingService, error) {
	provider := configValue("WEBRAG_EMBEDDING_PROVIDER", "embedding.provider")
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "openai":
		return embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:  configValue("OPENAI_API_KEY", "openai.api_key"),
			BaseURL: configStore.GetString("embedding.base_url"),
			Model:   configStore.GetString("embedding.model"),
		})
	case "ollama":
		return embeddingollama.NewEmbeddingService(embeddingollama.Config{
			BaseURL:    configStore.GetString("embedding.base_url"),
			Model:      configStore.GetString("embedding.model"),
			Dimensions: configStore.GetInt("embedding.dimensions"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// buildCompletion creates the completion service named by configuration.
// Defaults to OpenAI; set llm.provider to "anthropic" or "ollama".
func buildCompletion() (driven.CompletionService, error) {
	provider := configValue("WEBRAG_LLM_PROVIDER", "llm.provider")
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "openai":
		return llmopenai.NewCompletionService(llmopenai.Config{
			APIKey:  configValue("OPENAI_API_KEY", "openai.api_key"),
			BaseURL: configStore.GetString("llm.base_url"),
			Model:   configStore.GetString("llm.model"),
		})
	case "anthropic":
		return llmanthropic.NewCompletionService(llmanthropic.Config{
			APIKey:  configValue("ANTHROPIC_API_KEY", "anthropic.api_key"),
			BaseURL: configStore.GetString("llm.base_url"),
			Model:   configStore.GetString("llm.model"),
		})
	case "ollama":
		return llmollama.NewCompletionService(llmollama.Config{
			BaseURL: configStore.GetString("llm.base_url"),
			Model:   configStore.GetString("llm.model"),
			Timeout: time.Duration(configStore.GetInt("llm.timeout_seconds")) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}

// configValue reads the environment variable first, then falls back to
// the configuration file.
func configValue(envVar, configKey string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return configStore.GetString(configKey)
}
