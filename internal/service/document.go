package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/starboard/internal/logger"
	"github.com/dtroode/starboard/internal/model"
)

// Document serves one remote tier: it validates incoming documents and,
// when seeding is enabled, bootstraps the default document on the first
// load of an empty tier.
type Document struct {
	name   string
	store  model.DocumentStore
	seed   bool
	now    func() time.Time
	logger *logger.Logger
}

func NewDocument(name string, store model.DocumentStore, seed bool, logger *logger.Logger) *Document {
	return &Document{
		name:   name,
		store:  store,
		seed:   seed,
		now:    time.Now,
		logger: logger,
	}
}

func (s *Document) Get(ctx context.Context) (*model.Document, error) {
	doc, err := s.store.Load(ctx)
	if err == nil {
		return doc, nil
	}

	if !errors.Is(err, model.ErrNotFound) || !s.seed {
		if !errors.Is(err, model.ErrNotFound) {
			s.logger.Error("Document service: failed to load document",
				"tier", s.name,
				"error", err.Error())
		}
		return nil, fmt.Errorf("failed to load %s document: %w", s.name, err)
	}

	doc = model.NewDefaultDocument(s.now())
	if err := s.store.Save(ctx, doc); err != nil {
		s.logger.Error("Document service: failed to seed default document",
			"tier", s.name,
			"error", err.Error())
		return nil, fmt.Errorf("failed to seed %s document: %w", s.name, err)
	}

	s.logger.Info("Document service: seeded default document",
		"tier", s.name)

	return doc, nil
}

func (s *Document) Put(ctx context.Context, doc *model.Document) error {
	if err := model.Validate(doc); err != nil {
		s.logger.Debug("Document service: rejected document",
			"tier", s.name,
			"error", err.Error())
		return err
	}

	if err := s.store.Save(ctx, doc); err != nil {
		s.logger.Error("Document service: failed to save document",
			"tier", s.name,
			"error", err.Error())
		return fmt.Errorf("failed to save %s document: %w", s.name, err)
	}

	s.logger.Debug("Document service: document saved",
		"tier", s.name,
		"classes", len(doc.Classes),
		"backup_count", doc.Metadata.BackupCount)

	return nil
}
