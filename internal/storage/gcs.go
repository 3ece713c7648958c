package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"slidegen/internal/deck"
)

type GCSStorage struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSStorage(ctx context.Context, bucket, prefix string) (*GCSStorage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}

	return &GCSStorage{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}

// SaveDeck uploads the deck objects and returns the gs:// location of the
// deck directory.
func (s *GCSStorage) SaveDeck(ctx context.Context, d *deck.Deck) (string, error) {
	objects, err := deckObjects(d)
	if err != nil {
		return "", err
	}

	dir := s.deckDir(sessionName(d))
	for _, obj := range objects {
		if err := s.upload(ctx, path.Join(dir, obj.name), obj); err != nil {
			return "", err
		}
	}

	return s.location(dir), nil
}

func (s *GCSStorage) upload(ctx context.Context, name string, obj object) error {
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = obj.contentType

	if _, err := w.Write(obj.data); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}

// ListDecks returns the gs:// locations of exported decks, newest first.
func (s *GCSStorage) ListDecks(ctx context.Context) ([]string, error) {
	query := &storage.Query{Prefix: s.deckDir(""), Delimiter: "/"}

	var decks []string
	it := s.client.Bucket(s.bucket).Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		if attrs.Prefix != "" {
			decks = append(decks, s.location(strings.TrimSuffix(attrs.Prefix, "/")))
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(decks)))
	return decks, nil
}

func (s *GCSStorage) deckDir(session string) string {
	if s.prefix == "" {
		return session
	}
	if session == "" {
		return s.prefix + "/"
	}
	return s.prefix + "/" + session
}

func (s *GCSStorage) location(dir string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, dir)
}
