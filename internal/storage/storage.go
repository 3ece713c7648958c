package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"slidegen/internal/deck"
	"slidegen/internal/render"
)

const (
	manifestFile = "deck.json"
	markdownFile = "slides.md"
	pptxFile     = "slides.pptx"
)

const PPTXContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

var ErrNotReady = errors.New("deck is not ready")

// Store persists finished decks and returns where they were written.
type Store interface {
	SaveDeck(ctx context.Context, d *deck.Deck) (string, error)
}

type Manifest struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	Language   string          `json:"language"`
	Theme      deck.Theme      `json:"theme"`
	Background string          `json:"background,omitempty"`
	Slides     []ManifestSlide `json:"slides"`
	Usage      *deck.Usage     `json:"usage,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type ManifestSlide struct {
	Title       string      `json:"title"`
	Content     []string    `json:"content"`
	Layout      deck.Layout `json:"layout"`
	ImagePrompt string      `json:"image_prompt,omitempty"`
	Image       string      `json:"image,omitempty"`
}

type object struct {
	name        string
	data        []byte
	contentType string
}

var sanitizeRegex = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

func sessionName(d *deck.Deck) string {
	created := d.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	sanitized := sanitizeForPath(d.Topic)
	if sanitized == "" {
		sanitized = "untitled"
	}
	if runes := []rune(sanitized); len(runes) > 50 {
		sanitized = string(runes[:50])
	}
	return fmt.Sprintf("%s_%s", created.Format("20060102_150405"), sanitized)
}

func sanitizeForPath(s string) string {
	s = strings.ToLower(s)
	s = sanitizeRegex.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func slideImageName(i int, img *deck.Image) string {
	return fmt.Sprintf("slide_%02d%s", i+1, img.Ext())
}

// deckObjects lays out an exported deck: manifest, markdown, presentation and
// one file per image. Object names are relative to the deck directory.
func deckObjects(d *deck.Deck) ([]object, error) {
	if d == nil || len(d.Slides) == 0 {
		return nil, ErrNotReady
	}

	manifest := Manifest{
		ID:        uuid.NewString(),
		Topic:     d.Topic,
		Language:  d.Language,
		Theme:     d.Theme,
		Usage:     d.Usage,
		CreatedAt: d.CreatedAt,
		Slides:    make([]ManifestSlide, len(d.Slides)),
	}

	var objects []object
	if d.Background != nil {
		manifest.Background = "background" + d.Background.Ext()
		objects = append(objects, object{name: manifest.Background, data: d.Background.Data, contentType: d.Background.MIMEType})
	}

	for i, s := range d.Slides {
		manifest.Slides[i] = ManifestSlide{
			Title:       s.Title,
			Content:     s.Content,
			Layout:      s.Layout,
			ImagePrompt: s.ImagePrompt,
		}
		if s.Image != nil {
			manifest.Slides[i].Image = slideImageName(i, s.Image)
			objects = append(objects, object{name: manifest.Slides[i].Image, data: s.Image.Data, contentType: s.Image.MIMEType})
		}
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	markdown := render.Markdown(d, render.Options{ImageRef: func(i int) string {
		return manifest.Slides[i].Image
	}})

	documents := []object{
		{name: manifestFile, data: data, contentType: "application/json"},
		{name: markdownFile, data: []byte(markdown), contentType: "text/markdown; charset=utf-8"},
	}

	presentation, err := render.PPTX(d)
	if err != nil {
		slog.Warn("Presentation rendering failed, exporting without it", "topic", d.Topic, "error", err)
	} else {
		documents = append(documents, object{name: pptxFile, data: presentation, contentType: PPTXContentType})
	}

	return append(documents, objects...), nil
}
