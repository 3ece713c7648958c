package app

import "slidegen/internal/deck"

// qualifyingSlides returns the indexes of slides whose image prompt is long
// enough to be sent to image generation, in slide order.
func qualifyingSlides(slides []deck.Slide, minPromptLength int) []int {
	var indexes []int
	for i, s := range slides {
		if s.Qualifies(minPromptLength) {
			indexes = append(indexes, i)
		}
	}
	return indexes
}
