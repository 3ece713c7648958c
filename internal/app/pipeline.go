package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"slidegen/internal/deck"
	"slidegen/internal/i18n"
	"slidegen/internal/llm"
)

type Pipeline struct {
	service *Service
}

type generationContext struct {
	ctx      context.Context
	pipeline *Pipeline
	session  *Session
	runID    uint64
	request  deck.Request
}

func NewPipeline(service *Service) *Pipeline {
	return &Pipeline{service: service}
}

// Generate runs one deck generation on the session: plan, optional
// background, then slide images one at a time. Only a planner failure is
// fatal. When the session is restarted mid-run, Generate stops before its
// next request and returns ErrRestarted.
func (pipeline *Pipeline) Generate(ctx context.Context, session *Session, req deck.Request) error {
	generation, err := pipeline.newGenerationContext(ctx, session, req)
	if err != nil {
		return err
	}
	return generation.run()
}

// Start begins a run like Generate but finishes it in the background.
// Validation errors and ErrBusy are returned synchronously; the channel
// receives the result of the run.
func (pipeline *Pipeline) Start(ctx context.Context, session *Session, req deck.Request) (<-chan error, error) {
	generation, err := pipeline.newGenerationContext(ctx, session, req)
	if err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() {
		done <- generation.run()
		close(done)
	}()
	return done, nil
}

func (pipeline *Pipeline) newGenerationContext(ctx context.Context, session *Session, req deck.Request) (*generationContext, error) {
	req.Normalize()
	if err := req.Validate(i18n.Supported); err != nil {
		return nil, err
	}

	runID, err := session.begin(req)
	if err != nil {
		return nil, err
	}

	return &generationContext{
		ctx:      ctx,
		pipeline: pipeline,
		session:  session,
		runID:    runID,
		request:  req,
	}, nil
}

func (generation *generationContext) run() error {
	req := generation.request
	slog.Info("Generating plan...", "topic", req.Topic, "slides", req.SlideCount, "language", req.Language)
	plan, err := generation.generatePlan()
	if err != nil {
		return err
	}

	if generation.pipeline.service.Images() == nil {
		slog.Warn("No image generator configured, skipping images")
	} else {
		if err := generation.generateBackground(plan.BackgroundPrompt); err != nil {
			return err
		}
		if err := generation.generateSlideImages(plan.Slides); err != nil {
			return err
		}
	}

	return generation.finish()
}

func (generation *generationContext) generatePlan() (*deck.Plan, error) {
	if err := generation.checkpoint(); err != nil {
		return nil, err
	}

	plan, err := generation.pipeline.service.Planner().GeneratePlan(generation.ctx, generation.request)
	if err != nil {
		if staleErr := generation.stale(); staleErr != nil {
			return nil, staleErr
		}
		slog.Error("Plan generation failed", "topic", generation.request.Topic, "error", err)
		generation.fail()
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	theme := deck.LookupTheme(plan.ThemeID)
	applied := generation.session.update(generation.runID, func(state *Snapshot) {
		state.Theme = theme
		state.Slides = deck.CloneSlides(plan.Slides)
		state.Usage = plan.Usage
	})
	if !applied {
		return nil, ErrRestarted
	}

	slog.Debug("Plan ready", "slides", len(plan.Slides), "theme", theme.ID)
	return plan, nil
}

func (generation *generationContext) generateBackground(prompt string) error {
	if prompt == "" {
		return nil
	}
	if err := generation.checkpoint(); err != nil {
		return err
	}

	slog.Info("Generating background...")
	img, err := generation.pipeline.service.Images().GenerateImage(generation.ctx, prompt, llm.ImageKindBackground)
	if err != nil {
		slog.Warn("Background generation failed", "error", err)
		return generation.stale()
	}
	if img == nil {
		slog.Debug("Background generation returned no image")
		return generation.stale()
	}

	if !generation.session.update(generation.runID, func(state *Snapshot) {
		state.Background = img
	}) {
		return ErrRestarted
	}
	return nil
}

func (generation *generationContext) generateSlideImages(slides []deck.Slide) error {
	indexes := qualifyingSlides(slides, generation.pipeline.service.Config().Generation.MinPromptLength)
	if len(indexes) == 0 {
		return nil
	}

	if !generation.session.update(generation.runID, func(state *Snapshot) {
		state.Status = deck.StatusGeneratingImages
		state.Progress = deck.Progress{Current: 0, Total: len(indexes)}
	}) {
		return ErrRestarted
	}

	slog.Info("Generating slide images...", "count", len(indexes))
	for _, index := range indexes {
		if err := generation.checkpoint(); err != nil {
			return err
		}

		img, err := generation.pipeline.service.Images().GenerateImage(generation.ctx, slides[index].ImagePrompt, llm.ImageKindSlide)
		if err != nil {
			slog.Warn("Image generation failed", "slide", index, "error", err)
		} else if img == nil {
			slog.Debug("Image generation returned no image", "slide", index)
		}

		applied := generation.session.update(generation.runID, func(state *Snapshot) {
			if err == nil && img != nil {
				state.Slides[index].Image = img
			}
			state.Progress.Current++
		})
		if !applied {
			return ErrRestarted
		}
	}
	return nil
}

func (generation *generationContext) finish() error {
	var images int
	applied := generation.session.update(generation.runID, func(state *Snapshot) {
		state.Status = deck.StatusReady
		for _, s := range state.Slides {
			if s.Image != nil {
				images++
			}
		}
	})
	if !applied {
		return ErrRestarted
	}

	slog.Info("Deck ready", "topic", generation.request.Topic, "images", images)
	return nil
}

// checkpoint stops the run when the session was restarted or the context
// is done.
func (generation *generationContext) checkpoint() error {
	if err := generation.stale(); err != nil {
		return err
	}
	if err := generation.ctx.Err(); err != nil {
		generation.fail()
		return fmt.Errorf("generate deck: %w", err)
	}
	return nil
}

func (generation *generationContext) stale() error {
	if !generation.session.current(generation.runID) {
		return ErrRestarted
	}
	return nil
}

func (generation *generationContext) fail() {
	message := i18n.For(generation.request.Language).ErrorTitle
	generation.session.update(generation.runID, func(state *Snapshot) {
		state.Status = deck.StatusError
		state.Error = message
	})
}

// IsRestarted reports whether err means the run was abandoned by a restart.
func IsRestarted(err error) bool {
	return errors.Is(err, ErrRestarted)
}
