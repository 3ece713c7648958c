package web

import (
	"time"

	"slidegen/internal/app"
	"slidegen/internal/deck"
	"slidegen/internal/i18n"
)

type stateResponse struct {
	Status        deck.Status     `json:"status"`
	Topic         string          `json:"topic"`
	Language      string          `json:"language"`
	Theme         deck.Theme      `json:"theme"`
	Slides        []slideResponse `json:"slides"`
	HasBackground bool            `json:"has_background"`
	Progress      deck.Progress   `json:"progress"`
	Error         string          `json:"error,omitempty"`
	Usage         *deck.Usage     `json:"usage,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type slideResponse struct {
	Title       string      `json:"title"`
	Content     []string    `json:"content"`
	Layout      deck.Layout `json:"layout"`
	ImagePrompt string      `json:"image_prompt,omitempty"`
	HasImage    bool        `json:"has_image"`
}

func newStateResponse(snap app.Snapshot) stateResponse {
	slides := make([]slideResponse, len(snap.Slides))
	for i, s := range snap.Slides {
		slides[i] = slideResponse{
			Title:       s.Title,
			Content:     s.Content,
			Layout:      s.Layout,
			ImagePrompt: s.ImagePrompt,
			HasImage:    s.Image != nil,
		}
	}

	return stateResponse{
		Status:        snap.Status,
		Topic:         snap.Topic,
		Language:      snap.Language,
		Theme:         snap.Theme,
		Slides:        slides,
		HasBackground: snap.Background != nil,
		Progress:      snap.Progress,
		Error:         snap.Error,
		Usage:         snap.Usage,
		UpdatedAt:     snap.UpdatedAt,
	}
}

type languageOption struct {
	Code     string
	Name     string
	Selected bool
}

type pageData struct {
	stateResponse

	Status    string
	T         i18n.Strings
	Languages []languageOption
	Form      deck.Request
	Refresh   bool
	Percent   int
	Version   int64

	MinSlides, MaxSlides int
	MinPlans, MaxPlans   int
}

func (s *Server) newPageData(snap app.Snapshot) pageData {
	state := newStateResponse(snap)

	languages := make([]languageOption, 0, len(i18n.Languages()))
	for _, lang := range i18n.Languages() {
		languages = append(languages, languageOption{
			Code:     string(lang),
			Name:     i18n.Name(string(lang)),
			Selected: string(lang) == snap.Language,
		})
	}

	var percent int
	if snap.Progress.Total > 0 {
		percent = snap.Progress.Current * 100 / snap.Progress.Total
	}

	return pageData{
		stateResponse: state,
		Status:        string(snap.Status),
		T:             i18n.For(snap.Language),
		Languages:     languages,
		Form:          s.defaultRequest(),
		Refresh:       snap.Status.Generating(),
		Percent:       percent,
		Version:       snap.UpdatedAt.UnixNano(),
		MinSlides:     deck.MinSlideCount,
		MaxSlides:     deck.MaxSlideCount,
		MinPlans:      deck.MinPlanCount,
		MaxPlans:      deck.MaxPlanCount,
	}
}
