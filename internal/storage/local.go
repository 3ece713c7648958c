package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"slidegen/internal/deck"
)

type LocalStorage struct {
	outputDir string
}

func NewLocalStorage(outputDir string) *LocalStorage {
	return &LocalStorage{outputDir: outputDir}
}

// SaveDeck writes the deck into its own directory under the output dir and
// returns that directory.
func (s *LocalStorage) SaveDeck(ctx context.Context, d *deck.Deck) (string, error) {
	objects, err := deckObjects(d)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.outputDir, sessionName(d))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create deck directory: %w", err)
	}

	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := os.WriteFile(filepath.Join(dir, obj.name), obj.data, 0644); err != nil {
			return "", fmt.Errorf("write %s: %w", obj.name, err)
		}
	}

	return dir, nil
}

// ListDecks returns the exported deck directories, newest first.
func (s *LocalStorage) ListDecks(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.outputDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read output directory: %w", err)
	}

	var decks []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.outputDir, entry.Name(), manifestFile)); err == nil {
			decks = append(decks, filepath.Join(s.outputDir, entry.Name()))
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(decks)))
	return decks, nil
}

func (s *LocalStorage) EnsureDirectories() error {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

// LoadDeck reads a deck previously written by SaveDeck. Missing image files
// leave the corresponding image empty.
func LoadDeck(dir string) (*deck.Deck, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	d := &deck.Deck{
		Topic:      manifest.Topic,
		Language:   manifest.Language,
		Theme:      manifest.Theme,
		Usage:      manifest.Usage,
		CreatedAt:  manifest.CreatedAt,
		Background: loadImage(dir, manifest.Background),
		Slides:     make([]deck.Slide, len(manifest.Slides)),
	}
	for i, s := range manifest.Slides {
		d.Slides[i] = deck.Slide{
			Title:       s.Title,
			Content:     s.Content,
			Layout:      deck.ParseLayout(string(s.Layout)),
			ImagePrompt: s.ImagePrompt,
			Image:       loadImage(dir, s.Image),
		}
	}
	return d, nil
}

func loadImage(dir, name string) *deck.Image {
	if name == "" {
		return nil
	}
	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(name)))
	if err != nil {
		return nil
	}
	return &deck.Image{Data: data, MIMEType: mimeType(name)}
}

func mimeType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
