package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/starboard/internal/model"
)

var _ model.DocumentStore = (*DocumentRepository)(nil)

// DocumentRepository keeps the primary tier document as one JSONB row.
type DocumentRepository struct {
	db  querier
	key string
}

func NewDocumentRepository(db *Connection, key string) *DocumentRepository {
	return newDocumentRepository(db, key)
}

func newDocumentRepository(db querier, key string) *DocumentRepository {
	return &DocumentRepository{
		db:  db,
		key: key,
	}
}

func (r *DocumentRepository) Load(ctx context.Context) (*model.Document, error) {
	query := `SELECT body FROM documents WHERE key = $1`

	var body []byte
	err := r.db.QueryRow(ctx, query, r.key).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select document: %w", err)
	}

	doc, err := model.DecodeDocument(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored document: %w", err)
	}

	return doc, nil
}

func (r *DocumentRepository) Save(ctx context.Context, doc *model.Document) error {
	body, err := doc.Marshal()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (key, body, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.Exec(ctx, query, r.key, body); err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}
