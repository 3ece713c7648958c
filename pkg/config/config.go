package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath      = "config.yaml"
	defaultPlannerProvider = "gemini"
	defaultGeminiModel     = "gemini-2.5-flash"
	defaultGeminiImage     = "gemini-2.5-flash-image"
	defaultSecretName      = "gemini-api-key"
	defaultGroqModel       = "llama-3.3-70b-versatile"
	defaultDeepSeekModel   = "deepseek-chat"
	defaultMinPromptLength = 5
	defaultSlideCount      = 5
	defaultPlanCount       = 3
	defaultLanguage        = "uz"
	defaultServerAddr      = "127.0.0.1:8080"
	defaultOutputDir       = "./output"
	defaultGCSPrefix       = "decks"
)

type Config struct {
	GeminiAPIKey   string
	GroqAPIKey     string
	DeepSeekAPIKey string
	GCSBucket      string
	GCPProject     string

	Planner    PlannerConfig    `yaml:"planner"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Groq       GroqConfig       `yaml:"groq"`
	DeepSeek   DeepSeekConfig   `yaml:"deepseek"`
	Generation GenerationConfig `yaml:"generation"`
	Server     ServerConfig     `yaml:"server"`
	Output     OutputConfig     `yaml:"output"`
	GCS        GCSConfig        `yaml:"gcs"`
}

type PlannerConfig struct {
	Provider string `yaml:"provider"` // "gemini", "groq" or "deepseek"
}

type GeminiConfig struct {
	Model      string `yaml:"model"`
	ImageModel string `yaml:"image_model"`
	SecretName string `yaml:"secret_name"`
	DailyLimit int    `yaml:"daily_limit"`
	UsageFile  string `yaml:"usage_file"`
}

type GroqConfig struct {
	Model string `yaml:"model"`
}

type DeepSeekConfig struct {
	Model string `yaml:"model"`
}

type GenerationConfig struct {
	MinPromptLength int    `yaml:"min_prompt_length"`
	SlideCount      int    `yaml:"slide_count"`
	PlanCount       int    `yaml:"plan_count"`
	Language        string `yaml:"language"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	OpenBrowser bool   `yaml:"open_browser"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type GCSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Prefix  string `yaml:"prefix"`
}

func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		GeminiAPIKey:   firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"),
		GroqAPIKey:     os.Getenv("GROQ_API_KEY"),
		DeepSeekAPIKey: os.Getenv("DEEPSEEK_API_KEY"),
		GCSBucket:      os.Getenv("GCS_BUCKET"),
		GCPProject:     os.Getenv("GOOGLE_CLOUD_PROJECT"),
		Generation: GenerationConfig{
			MinPromptLength: defaultMinPromptLength,
		},
	}

	if err := loadYAMLConfig(cfg, getEnvOrDefault("SLIDEGEN_CONFIG", defaultConfigPath)); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if cfg.GeminiAPIKey == "" && cfg.GCPProject != "" {
		key, err := fetchSecret(ctx, cfg.GCPProject, cfg.Gemini.SecretName)
		if err != nil {
			slog.Warn("Failed to read Gemini API key from Secret Manager", "secret", cfg.Gemini.SecretName, "error", err)
		} else {
			cfg.GeminiAPIKey = key
		}
	}

	return cfg, nil
}

func loadYAMLConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func fetchSecret(ctx context.Context, project, name string) (string, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, name),
	})
	if err != nil {
		return "", fmt.Errorf("access secret: %w", err)
	}
	return string(resp.GetPayload().GetData()), nil
}

func applyDefaults(cfg *Config) {
	if cfg.Planner.Provider == "" {
		cfg.Planner.Provider = defaultPlannerProvider
	}

	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = defaultGeminiModel
	}
	if cfg.Gemini.ImageModel == "" {
		cfg.Gemini.ImageModel = defaultGeminiImage
	}
	if cfg.Gemini.SecretName == "" {
		cfg.Gemini.SecretName = defaultSecretName
	}
	if cfg.Gemini.DailyLimit > 0 && cfg.Gemini.UsageFile == "" {
		cfg.Gemini.UsageFile = defaultUsageFile()
	}

	if cfg.Groq.Model == "" {
		cfg.Groq.Model = defaultGroqModel
	}
	if cfg.DeepSeek.Model == "" {
		cfg.DeepSeek.Model = defaultDeepSeekModel
	}

	// Seeded before unmarshalling so an explicit 0 survives.
	if cfg.Generation.MinPromptLength < 0 {
		cfg.Generation.MinPromptLength = defaultMinPromptLength
	}
	if cfg.Generation.SlideCount == 0 {
		cfg.Generation.SlideCount = defaultSlideCount
	}
	if cfg.Generation.PlanCount == 0 {
		cfg.Generation.PlanCount = defaultPlanCount
	}
	if cfg.Generation.Language == "" {
		cfg.Generation.Language = defaultLanguage
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultServerAddr
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = defaultOutputDir
	}
	if cfg.GCS.Prefix == "" {
		cfg.GCS.Prefix = defaultGCSPrefix
	}
}

func defaultUsageFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".slidegen_usage"
	}
	return filepath.Join(home, ".slidegen_usage")
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
