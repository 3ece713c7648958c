package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"slidegen/internal/deck"
	"slidegen/internal/i18n"
	"slidegen/pkg/prompts"
)

var ErrEmptyPlan = errors.New("plan has no slides")

// PlanResponse is the JSON document planners are asked to return.
type PlanResponse struct {
	ThemeID          string          `json:"theme_id"`
	BackgroundPrompt string          `json:"background_prompt"`
	Slides           []SlideResponse `json:"slides"`
}

type SlideResponse struct {
	Title       string   `json:"title"`
	Content     []string `json:"content"`
	Layout      string   `json:"layout"`
	ImagePrompt string   `json:"image_prompt"`
}

// DecodePlan parses a planner answer. Markdown code fences around the JSON
// are tolerated.
func DecodePlan(content string) (*deck.Plan, error) {
	var resp PlanResponse
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &resp); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	return resp.toPlan()
}

func (r PlanResponse) toPlan() (*deck.Plan, error) {
	if len(r.Slides) == 0 {
		return nil, ErrEmptyPlan
	}

	slides := make([]deck.Slide, len(r.Slides))
	for i, s := range r.Slides {
		slides[i] = deck.Slide{
			Title:       strings.TrimSpace(s.Title),
			Content:     cleanBullets(s.Content),
			Layout:      deck.ParseLayout(s.Layout),
			ImagePrompt: strings.TrimSpace(s.ImagePrompt),
		}
	}

	return &deck.Plan{
		ThemeID:          strings.TrimSpace(r.ThemeID),
		BackgroundPrompt: strings.TrimSpace(r.BackgroundPrompt),
		Slides:           slides,
	}, nil
}

func cleanBullets(content []string) []string {
	result := make([]string, 0, len(content))
	for _, c := range content {
		c = strings.TrimSpace(c)
		c = strings.TrimLeft(c, "-•* ")
		if c != "" {
			result = append(result, c)
		}
	}
	return result
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// PlanParams builds the prompt parameters for a request.
func PlanParams(req deck.Request) prompts.PlanParams {
	layouts := make([]string, len(deck.Layouts))
	for i, l := range deck.Layouts {
		layouts[i] = string(l)
	}
	return prompts.PlanParams{
		Topic:          req.Topic,
		SlideCount:     req.SlideCount,
		PlanCount:      req.PlanCount,
		LanguageName:   i18n.PromptName(req.Language),
		AdditionalInfo: req.AdditionalInfo,
		Themes:         deck.ThemeIDs(),
		Layouts:        layouts,
	}
}
