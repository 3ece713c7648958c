package llm

import (
	"context"

	"slidegen/internal/deck"
)

const (
	ImageKindSlide      ImageKind = "slide"
	ImageKindBackground ImageKind = "background"
)

type ImageKind string

type Planner interface {
	GeneratePlan(ctx context.Context, req deck.Request) (*deck.Plan, error)
}

// ImageGenerator returns nil image and nil error when the model produced no
// image for the prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, kind ImageKind) (*deck.Image, error)
}
