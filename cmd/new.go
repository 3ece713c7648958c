package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"slidegen/internal/app"
	"slidegen/internal/deck"
	"slidegen/internal/i18n"
	"slidegen/internal/viewer"
	"slidegen/pkg/config"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a deck interactively",
	Long:  `Collect the topic and deck options in a form, then generate the deck.`,
	RunE:  runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	req, err := askRequest(cfg)
	if err != nil {
		return err
	}

	service, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}

	session := app.NewSession(req.Language)
	strs := i18n.For(req.Language)

	var genErr error
	_ = spinner.New().
		Title(strs.GeneratingPlan).
		Action(func() {
			genErr = app.NewPipeline(service).Generate(ctx, session, req)
		}).
		Run()
	if genErr != nil {
		if snap := session.Snapshot(); snap.Error != "" {
			fmt.Println(errorStyle.Render(snap.Error))
		}
		return genErr
	}

	var preview, export bool
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Open the deck in the terminal viewer?").
				Value(&preview),
			huh.NewConfirm().
				Title(strs.Download+"?").
				Value(&export),
		),
	).Run(); err != nil {
		return err
	}

	var open func(*deck.Deck) error
	if preview {
		open = viewer.Run
	}
	return finishDeck(cmd, service, session, open, export)
}

func askRequest(cfg *config.Config) (deck.Request, error) {
	req := requestFromConfig(cfg)
	strs := i18n.For(req.Language)

	slideCount := strconv.Itoa(req.SlideCount)
	planCount := strconv.Itoa(req.PlanCount)

	languages := make([]huh.Option[string], 0, len(i18n.Languages()))
	for _, lang := range i18n.Languages() {
		languages = append(languages, huh.NewOption(i18n.Name(string(lang)), string(lang)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(strs.TopicLabel).
				Value(&req.Topic).
				Validate(required(strs.TopicLabel)),
			huh.NewSelect[string]().
				Title(strs.LanguageLabel).
				Options(languages...).
				Value(&req.Language),
			huh.NewInput().
				Title(strs.SlideCountLabel).
				Value(&slideCount).
				Validate(intBetween(deck.MinSlideCount, deck.MaxSlideCount)),
			huh.NewInput().
				Title(strs.PlanCountLabel).
				Value(&planCount).
				Validate(intBetween(deck.MinPlanCount, deck.MaxPlanCount)),
			huh.NewText().
				Title(strs.AdditionalInfo).
				Value(&req.AdditionalInfo),
		),
	)

	if err := form.Run(); err != nil {
		return deck.Request{}, err
	}

	req.SlideCount, _ = strconv.Atoi(strings.TrimSpace(slideCount))
	req.PlanCount, _ = strconv.Atoi(strings.TrimSpace(planCount))
	return req, nil
}

func intBetween(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < lo || n > hi {
			return fmt.Errorf("enter a number between %d and %d", lo, hi)
		}
		return nil
	}
}
