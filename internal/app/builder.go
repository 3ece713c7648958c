package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"slidegen/internal/llm"
	"slidegen/internal/llm/deepseek"
	"slidegen/internal/llm/gemini"
	"slidegen/internal/llm/groq"
	"slidegen/internal/storage"
	"slidegen/pkg/config"
	"slidegen/pkg/httputil"
	"slidegen/pkg/prompts"
)

const requestTimeout = 3 * time.Minute

func BuildService(ctx context.Context, cfg *config.Config) (*Service, error) {
	p, err := prompts.Load()
	if err != nil {
		return nil, err
	}

	httpClient := httputil.NewRetryClient(&http.Client{Timeout: requestTimeout}, httputil.DefaultRetryConfig())

	var geminiClient *gemini.Client
	if cfg.GeminiAPIKey != "" {
		geminiClient, err = gemini.NewClient(ctx, gemini.Options{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.Gemini.Model,
			ImageModel: cfg.Gemini.ImageModel,
			HTTPClient: httpClient,
			DailyLimit: cfg.Gemini.DailyLimit,
			UsageFile:  cfg.Gemini.UsageFile,
		}, p)
		if err != nil {
			return nil, err
		}
	}

	planner, err := buildPlanner(cfg, geminiClient, httpClient, p)
	if err != nil {
		return nil, err
	}

	var images llm.ImageGenerator
	if geminiClient != nil {
		images = geminiClient
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return NewService(ServiceOptions{
		Config:  cfg,
		Planner: planner,
		Images:  images,
		Store:   store,
	}), nil
}

func buildPlanner(cfg *config.Config, geminiClient *gemini.Client, httpClient *http.Client, p *prompts.Prompts) (llm.Planner, error) {
	switch cfg.Planner.Provider {
	case "groq":
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY is required for the groq planner")
		}
		return groq.NewClient(cfg.GroqAPIKey, cfg.Groq.Model, httpClient, p)
	case "deepseek":
		if cfg.DeepSeekAPIKey == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY is required for the deepseek planner")
		}
		return deepseek.NewClient(cfg.DeepSeekAPIKey, deepseek.Options{
			Model:      cfg.DeepSeek.Model,
			HTTPClient: httpClient,
		}, p), nil
	case "gemini":
		if geminiClient == nil {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini planner")
		}
		return geminiClient, nil
	default:
		return nil, fmt.Errorf("unknown planner provider %q", cfg.Planner.Provider)
	}
}

func buildStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if !cfg.GCS.Enabled {
		return storage.NewLocalStorage(cfg.Output.Dir), nil
	}
	if cfg.GCSBucket == "" {
		return nil, fmt.Errorf("GCS_BUCKET is required when gcs.enabled is set")
	}

	slog.Debug("Using GCS deck storage", "bucket", cfg.GCSBucket, "prefix", cfg.GCS.Prefix)
	gcs, err := storage.NewGCSStorage(ctx, cfg.GCSBucket, cfg.GCS.Prefix)
	if err != nil {
		return nil, err
	}
	return gcs, nil
}
