package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/docquery/docquery/internal/chunker"
	"github.com/docquery/docquery/internal/config"
	"github.com/docquery/docquery/internal/embedding"
	"github.com/docquery/docquery/internal/qa"
	"github.com/docquery/docquery/internal/service"
	"github.com/docquery/docquery/internal/store"
)

// buildService assembles the pipeline from configuration. The returned
// cleanup function closes the store and must be called before exit.
func buildService(ctx context.Context) (*service.Service, *config.Config, func()) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	provider := buildProvider(ctx, cfg)

	ch, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		exitWithError(ExitConfigError, "invalid chunking config: %v", err)
	}

	st, err := store.Open(cfg.DataDir, provider.ModelName(), provider.Dimensions())
	if err != nil {
		exitWithError(ExitError, "opening store: %v", err)
	}

	var extractor qa.Extractor
	if cfg.QAEndpoint != "" {
		extractor = qa.NewRemoteExtractor(cfg.QAEndpoint)
	} else {
		extractor = qa.NewLexicalExtractor()
	}

	svc := service.New(ch, provider, st, extractor, cfg.MinConfidence)
	cleanup := func() {
		if err := st.Close(); err != nil {
			outputWarning("closing store: %v", err)
		}
	}
	return svc, cfg, cleanup
}

// buildProvider constructs the configured embedding provider.
func buildProvider(ctx context.Context, cfg *config.Config) embedding.Provider {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		var opts []embedding.OpenAIOption
		if cfg.EmbedModel != "" {
			opts = append(opts, embedding.WithOpenAIModel(cfg.EmbedModel, cfg.EmbedDimensions))
		}
		provider, err := embedding.NewOpenAIProvider(opts...)
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		return provider

	case config.ProviderOllama:
		var opts []embedding.OllamaOption
		if cfg.OllamaURL != "" {
			opts = append(opts, embedding.WithBaseURL(cfg.OllamaURL))
		}
		if cfg.EmbedModel != "" {
			opts = append(opts, embedding.WithModel(cfg.EmbedModel))
		}
		if cfg.EmbedDimensions != 0 {
			opts = append(opts, embedding.WithDimensions(cfg.EmbedDimensions))
		}
		provider := embedding.NewOllamaProvider(opts...)
		if err := provider.IsAvailable(ctx); err != nil {
			exitWithError(ExitDataError, "Ollama is not running\n\nStart Ollama with 'ollama serve' or install from https://ollama.ai")
		}
		return provider

	default:
		exitWithError(ExitConfigError, "unknown embedding provider %q (want %q or %q)",
			cfg.Provider, config.ProviderOllama, config.ProviderOpenAI)
		return nil
	}
}
