package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/harbourstay/harbourstay/backend/cms-api/internal/content"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/metrics"
)

// Repository persists the raw content document.
type Repository interface {
	Name() string
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Service is the content store used by the HTTP layer and the seed tool.
// It holds no cached copy: every Read goes to the repository.
type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Backend names the underlying repository.
func (s *Service) Backend() string { return s.repo.Name() }

// Read returns the current document, content.ErrNotFound if none was ever
// stored, or an error wrapping content.ErrRead.
func (s *Service) Read(ctx context.Context) (content.Document, error) {
	raw, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return nil, content.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", content.ErrRead, err)
	}
	doc, err := content.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: stored document is not a JSON object", content.ErrRead)
	}
	return doc, nil
}

// Replace validates doc and overwrites the stored document with it.
// Invalid input never reaches the repository.
func (s *Service) Replace(ctx context.Context, doc content.Document) error {
	if err := content.Validate(doc); err != nil {
		metrics.ContentWrites.WithLabelValues(s.repo.Name(), "invalid").Inc()
		return err
	}
	raw, err := content.Encode(doc)
	if err != nil {
		metrics.ContentWrites.WithLabelValues(s.repo.Name(), "invalid").Inc()
		return fmt.Errorf("%w: %w", content.ErrInvalidInput, err)
	}
	if err := s.repo.Save(ctx, raw); err != nil {
		metrics.ContentWrites.WithLabelValues(s.repo.Name(), "error").Inc()
		return fmt.Errorf("%w: %w", content.ErrWrite, err)
	}
	metrics.ContentWrites.WithLabelValues(s.repo.Name(), "ok").Inc()
	return nil
}

// Ping reports whether the backend answers; a missing document counts as healthy.
func (s *Service) Ping(ctx context.Context) error {
	if _, err := s.repo.Load(ctx); err != nil && !errors.Is(err, content.ErrNotFound) {
		return err
	}
	return nil
}
