package deck

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinSlideCount = 1
	MaxSlideCount = 30
	MinPlanCount  = 1
	MaxPlanCount  = 10
)

var ErrInvalidRequest = errors.New("invalid request")

// Request carries everything the input stage collects from the user.
// PlanCount is the number of outline items the deck's agenda should contain.
type Request struct {
	Topic          string `json:"topic" form:"topic"`
	SlideCount     int    `json:"slide_count" form:"slide_count"`
	PlanCount      int    `json:"plan_count" form:"plan_count"`
	Language       string `json:"language" form:"language"`
	AdditionalInfo string `json:"additional_info" form:"additional_info"`
}

func (r *Request) Normalize() {
	r.Topic = strings.TrimSpace(r.Topic)
	r.Language = strings.ToLower(strings.TrimSpace(r.Language))
	r.AdditionalInfo = strings.TrimSpace(r.AdditionalInfo)
}

// Validate checks the request against the supported languages.
func (r Request) Validate(supported func(string) bool) error {
	if r.Topic == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidRequest)
	}
	if r.SlideCount < MinSlideCount || r.SlideCount > MaxSlideCount {
		return fmt.Errorf("%w: slide count must be between %d and %d", ErrInvalidRequest, MinSlideCount, MaxSlideCount)
	}
	if r.PlanCount < MinPlanCount || r.PlanCount > MaxPlanCount {
		return fmt.Errorf("%w: plan count must be between %d and %d", ErrInvalidRequest, MinPlanCount, MaxPlanCount)
	}
	if supported != nil && !supported(r.Language) {
		return fmt.Errorf("%w: unsupported language %q", ErrInvalidRequest, r.Language)
	}
	return nil
}
