package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/dtroode/starboard/internal/model"
)

var _ model.DocumentStore = (*DocumentStore)(nil)

// DocumentStore keeps the legacy tier document as a single JSON object.
type DocumentStore struct {
	blobs model.BlobStorage
	key   string
}

func NewDocumentStore(blobs model.BlobStorage, key string) *DocumentStore {
	return &DocumentStore{
		blobs: blobs,
		key:   key,
	}
}

func (s *DocumentStore) Load(ctx context.Context) (*model.Document, error) {
	rc, err := s.blobs.Download(ctx, s.key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	doc, err := model.DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored document: %w", err)
	}
	return doc, nil
}

func (s *DocumentStore) Save(ctx context.Context, doc *model.Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	return s.blobs.Upload(ctx, s.key, bytes.NewReader(data))
}
