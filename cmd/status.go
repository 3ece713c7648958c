package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"slidegen/internal/storage"
	"slidegen/pkg/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which providers are configured",
	Long:  `Verify API keys, planner and export settings, and list exported decks.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type deckLister interface {
	ListDecks(ctx context.Context) ([]string, error)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Println(infoStyle.Render("\nProvider Status:\n"))

	if cfg.GeminiAPIKey != "" {
		fmt.Println(successStyle.Render("✓ Gemini: API key configured"))
	} else {
		fmt.Println(errorStyle.Render("✗ Gemini: missing GEMINI_API_KEY (images are disabled)"))
	}

	if cfg.GroqAPIKey != "" {
		fmt.Println(successStyle.Render("✓ Groq: API key configured"))
	} else if cfg.Planner.Provider == "groq" {
		fmt.Println(errorStyle.Render("✗ Groq: missing GROQ_API_KEY"))
	} else {
		fmt.Println(infoStyle.Render("- Groq: not configured (optional)"))
	}

	if cfg.DeepSeekAPIKey != "" {
		fmt.Println(successStyle.Render("✓ DeepSeek: API key configured"))
	} else if cfg.Planner.Provider == "deepseek" {
		fmt.Println(errorStyle.Render("✗ DeepSeek: missing DEEPSEEK_API_KEY"))
	}

	fmt.Println(infoStyle.Render(fmt.Sprintf("  Planner: %s", cfg.Planner.Provider)))
	fmt.Println(infoStyle.Render(fmt.Sprintf("  Image model: %s", cfg.Gemini.ImageModel)))
	fmt.Println(infoStyle.Render(fmt.Sprintf("  Minimum image prompt length: %d", cfg.Generation.MinPromptLength)))
	if cfg.Gemini.DailyLimit > 0 {
		fmt.Println(infoStyle.Render(fmt.Sprintf("  Daily request limit: %d", cfg.Gemini.DailyLimit)))
	}

	var lister deckLister
	if cfg.GCS.Enabled {
		if cfg.GCSBucket == "" {
			fmt.Println(errorStyle.Render("✗ Cloud Storage: gcs.enabled is set but GCS_BUCKET is missing"))
			return nil
		}
		gcs, err := storage.NewGCSStorage(ctx, cfg.GCSBucket, cfg.GCS.Prefix)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("✗ Cloud Storage: %v", err)))
			return nil
		}
		defer func() { _ = gcs.Close() }()
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Cloud Storage: gs://%s/%s", cfg.GCSBucket, cfg.GCS.Prefix)))
		lister = gcs
	} else {
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Local export: %s", cfg.Output.Dir)))
		lister = storage.NewLocalStorage(cfg.Output.Dir)
	}

	decks, err := lister.ListDecks(ctx)
	if err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("Could not list decks: %v", err)))
		return nil
	}

	fmt.Println(infoStyle.Render(fmt.Sprintf("\nExported decks: %d", len(decks))))
	for i, d := range decks {
		if i == 10 {
			fmt.Printf("  … and %d more\n", len(decks)-10)
			break
		}
		fmt.Println("  " + d)
	}
	return nil
}
