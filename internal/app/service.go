package app

import (
	"context"
	"fmt"

	"slidegen/internal/deck"
	"slidegen/internal/llm"
	"slidegen/internal/storage"
	"slidegen/pkg/config"
)

type Service struct {
	cfg     *config.Config
	planner llm.Planner
	images  llm.ImageGenerator
	store   storage.Store
}

type ServiceOptions struct {
	Config  *config.Config
	Planner llm.Planner
	Images  llm.ImageGenerator
	Store   storage.Store
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:     opts.Config,
		planner: opts.Planner,
		images:  opts.Images,
		store:   opts.Store,
	}
}

func (s *Service) Config() *config.Config     { return s.cfg }
func (s *Service) Planner() llm.Planner        { return s.planner }
func (s *Service) Images() llm.ImageGenerator { return s.images }
func (s *Service) Store() storage.Store        { return s.store }

// Export saves a finished deck and returns where it was written.
func (s *Service) Export(ctx context.Context, d *deck.Deck) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("export deck: no store configured")
	}
	location, err := s.store.SaveDeck(ctx, d)
	if err != nil {
		return "", fmt.Errorf("export deck: %w", err)
	}
	return location, nil
}
