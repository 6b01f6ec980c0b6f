package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/starboard/internal/model"
)

type fakeRow struct {
	body []byte
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.body
	return nil
}

type fakeQuerier struct {
	row      fakeRow
	execErr  error
	execSQL  string
	execArgs []any
	rowArgs  []any
}

func (q *fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.rowArgs = args
	return q.row
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.execSQL = sql
	q.execArgs = args
	if q.execErr != nil {
		return pgconn.CommandTag{}, q.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestNewDocumentRepository(t *testing.T) {
	db := &Connection{}
	repo := NewDocumentRepository(db, "starboard")

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
	assert.Equal(t, "starboard", repo.key)
}

func TestDocumentRepository_Load(t *testing.T) {
	valid, err := model.NewDefaultDocument(time.Now()).Marshal()
	require.NoError(t, err)

	tests := []struct {
		name       string
		row        fakeRow
		wantErr    error
		wantAnyErr bool
	}{
		{name: "stored document", row: fakeRow{body: valid}},
		{name: "no rows", row: fakeRow{err: pgx.ErrNoRows}, wantErr: model.ErrNotFound},
		{name: "query failure", row: fakeRow{err: errors.New("connection reset")}, wantAnyErr: true},
		{name: "invalid stored body", row: fakeRow{body: []byte(`{"classes":{}}`)}, wantErr: model.ErrInvalidDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuerier{row: tt.row}
			repo := newDocumentRepository(q, "school")

			doc, err := repo.Load(context.Background())
			assert.Equal(t, []any{"school"}, q.rowArgs)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
			case tt.wantAnyErr:
				assert.Error(t, err)
				assert.Nil(t, doc)
			default:
				require.NoError(t, err)
				assert.Equal(t, model.DefaultPassword, doc.Teachers[model.DefaultTeacher])
			}
		})
	}
}

func TestDocumentRepository_Save(t *testing.T) {
	t.Run("upserts body under key", func(t *testing.T) {
		q := &fakeQuerier{}
		repo := newDocumentRepository(q, "school")
		doc := model.NewDefaultDocument(time.Now())

		require.NoError(t, repo.Save(context.Background(), doc))

		assert.Contains(t, q.execSQL, "ON CONFLICT (key)")
		require.Len(t, q.execArgs, 2)
		assert.Equal(t, "school", q.execArgs[0])

		var stored map[string]any
		require.NoError(t, json.Unmarshal(q.execArgs[1].([]byte), &stored))
		assert.Contains(t, stored, "classes")
		assert.Contains(t, stored, "teachers")
	})

	t.Run("exec failure", func(t *testing.T) {
		q := &fakeQuerier{execErr: errors.New("disk full")}
		repo := newDocumentRepository(q, "school")

		err := repo.Save(context.Background(), model.NewDefaultDocument(time.Now()))
		assert.ErrorContains(t, err, "failed to upsert document")
	})
}
