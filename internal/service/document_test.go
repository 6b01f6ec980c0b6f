package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/starboard/internal/model"
	"github.com/dtroode/starboard/internal/testutil"
)

func TestDocumentService_Get(t *testing.T) {
	stored := model.NewDefaultDocument(time.Now())
	stored.Classes["2A"] = model.ClassRecord{Students: map[string]model.StudentRecord{}}

	tests := []struct {
		name      string
		seed      bool
		mockSetup func(*MockDocumentStore)
		wantErr   error
		wantAny   bool
		check     func(*testing.T, *model.Document)
	}{
		{
			name: "stored document",
			mockSetup: func(m *MockDocumentStore) {
				m.On("Load", mock.Anything).Return(stored, nil)
			},
			check: func(t *testing.T, doc *model.Document) {
				assert.Contains(t, doc.Classes, "2A")
			},
		},
		{
			name: "empty tier without seeding",
			mockSetup: func(m *MockDocumentStore) {
				m.On("Load", mock.Anything).Return(nil, model.ErrNotFound)
			},
			wantErr: model.ErrNotFound,
		},
		{
			name: "empty tier seeds default",
			seed: true,
			mockSetup: func(m *MockDocumentStore) {
				m.On("Load", mock.Anything).Return(nil, model.ErrNotFound)
				m.On("Save", mock.Anything, mock.MatchedBy(func(doc *model.Document) bool {
					return doc.Teachers[model.DefaultTeacher] == model.DefaultPassword
				})).Return(nil)
			},
			check: func(t *testing.T, doc *model.Document) {
				assert.Empty(t, doc.Classes)
				assert.Equal(t, model.DocumentVersion, doc.Metadata.Version)
			},
		},
		{
			name: "seed save fails",
			seed: true,
			mockSetup: func(m *MockDocumentStore) {
				m.On("Load", mock.Anything).Return(nil, model.ErrNotFound)
				m.On("Save", mock.Anything, mock.Anything).Return(errStorage)
			},
			wantErr: errStorage,
		},
		{
			name: "storage failure is not seeded over",
			seed: true,
			mockSetup: func(m *MockDocumentStore) {
				m.On("Load", mock.Anything).Return(nil, errStorage)
			},
			wantErr: errStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockDocumentStore{}
			tt.mockSetup(store)
			svc := NewDocument("primary", store, tt.seed, testutil.MakeNoopLogger())

			doc, err := svc.Get(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
			} else {
				require.NoError(t, err)
				tt.check(t, doc)
			}

			store.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Put(t *testing.T) {
	t.Run("valid document saved", func(t *testing.T) {
		store := &MockDocumentStore{}
		doc := model.NewDefaultDocument(time.Now())
		store.On("Save", mock.Anything, doc).Return(nil)

		svc := NewDocument("legacy", store, false, testutil.MakeNoopLogger())
		require.NoError(t, svc.Put(context.Background(), doc))

		store.AssertExpectations(t)
	})

	t.Run("invalid document rejected without write", func(t *testing.T) {
		store := &MockDocumentStore{}
		doc := model.NewDefaultDocument(time.Now())
		doc.Teachers = nil

		svc := NewDocument("legacy", store, false, testutil.MakeNoopLogger())
		err := svc.Put(context.Background(), doc)

		assert.ErrorIs(t, err, model.ErrInvalidDocument)
		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		store := &MockDocumentStore{}
		store.On("Save", mock.Anything, mock.Anything).Return(errStorage)

		svc := NewDocument("legacy", store, false, testutil.MakeNoopLogger())
		err := svc.Put(context.Background(), model.NewDefaultDocument(time.Now()))

		assert.ErrorIs(t, err, errStorage)
	})
}
