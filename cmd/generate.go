package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"slidegen/internal/app"
	"slidegen/internal/deck"
	"slidegen/internal/render"
	"slidegen/pkg/config"
)

var (
	generateTopic      string
	generateSlides     int
	generatePlans      int
	generateLanguage   string
	generateInfo       string
	generateExport     bool
	generatePreview    bool
	generatePreviewCol int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a deck from a topic",
	Long:  `Plan a deck for the topic, illustrate its slides and export the result.`,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateTopic, "topic", "t", "", "Presentation topic")
	generateCmd.Flags().IntVarP(&generateSlides, "slides", "n", 0, "Number of slides (default from config)")
	generateCmd.Flags().IntVarP(&generatePlans, "plans", "p", 0, "Number of outline items (default from config)")
	generateCmd.Flags().StringVarP(&generateLanguage, "lang", "l", "", "Deck language: uz, en or ru (default from config)")
	generateCmd.Flags().StringVarP(&generateInfo, "info", "i", "", "Additional guidance for the planner")
	generateCmd.Flags().BoolVar(&generateExport, "export", true, "Export the finished deck")
	generateCmd.Flags().BoolVar(&generatePreview, "preview", false, "Render the finished deck in the terminal")
	generateCmd.Flags().IntVar(&generatePreviewCol, "width", 100, "Preview width in columns")
	_ = generateCmd.MarkFlagRequired("topic")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	service, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}

	req := requestFromConfig(cfg)
	req.Topic = generateTopic
	req.AdditionalInfo = generateInfo
	if generateSlides > 0 {
		req.SlideCount = generateSlides
	}
	if generatePlans > 0 {
		req.PlanCount = generatePlans
	}
	if generateLanguage != "" {
		req.Language = generateLanguage
	}

	session := app.NewSession(req.Language)
	session.OnChange(logProgress())

	if err := app.NewPipeline(service).Generate(ctx, session, req); err != nil {
		if snap := session.Snapshot(); snap.Error != "" {
			fmt.Println(errorStyle.Render(snap.Error))
		}
		return err
	}

	var preview func(*deck.Deck) error
	if generatePreview {
		preview = printPreview(generatePreviewCol)
	}
	return finishDeck(cmd, service, session, preview, generateExport)
}

func requestFromConfig(cfg *config.Config) deck.Request {
	return deck.Request{
		SlideCount: cfg.Generation.SlideCount,
		PlanCount:  cfg.Generation.PlanCount,
		Language:   cfg.Generation.Language,
	}
}

// logProgress logs each completed image attempt once.
func logProgress() func(app.Snapshot) {
	last := -1
	return func(snap app.Snapshot) {
		if snap.Status != deck.StatusGeneratingImages || snap.Progress.Current == last {
			return
		}
		last = snap.Progress.Current
		slog.Info("Generating images...", "done", snap.Progress.Current, "total", snap.Progress.Total)
	}
}

// printPreview writes a static rendering of the deck to stdout.
func printPreview(width int) func(*deck.Deck) error {
	return func(d *deck.Deck) error {
		out, err := render.Terminal(d, width)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
}

func finishDeck(cmd *cobra.Command, service *app.Service, session *app.Session, preview func(*deck.Deck) error, export bool) error {
	d, ok := session.Deck()
	if !ok {
		return errors.New("deck is not ready")
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("✓ %s: %d slides, %d images", d.Topic, len(d.Slides), d.ImageCount())))
	if d.Usage != nil {
		fmt.Println(infoStyle.Render(fmt.Sprintf("  %s · %d tokens", d.Usage.Model, d.Usage.TotalTokens)))
	}

	if export {
		location, err := service.Export(cmd.Context(), d)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("✓ Exported to " + location))
	}

	if preview != nil {
		return preview(d)
	}
	return nil
}
