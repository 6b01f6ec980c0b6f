package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/starboard/internal/model"
)

// MockDocumentStore mocks the DocumentStore interface
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Load(ctx context.Context) (*model.Document, error) {
	args := m.Called(ctx)
	doc, _ := args.Get(0).(*model.Document)
	return doc, args.Error(1)
}

func (m *MockDocumentStore) Save(ctx context.Context, doc *model.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// MockSessionManager mocks the SessionManager interface
type MockSessionManager struct {
	mock.Mock
}

func (m *MockSessionManager) GenerateSessionToken(username string) (string, error) {
	args := m.Called(username)
	return args.String(0), args.Error(1)
}

func (m *MockSessionManager) ParseSessionToken(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

// memoryRepository is a model.Repository holding the document in memory.
// Save validates like the sync orchestrator does.
type memoryRepository struct {
	mu      sync.Mutex
	doc     *model.Document
	saves   int
	saveErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{doc: model.NewDefaultDocument(time.Now())}
}

func (r *memoryRepository) Data() *model.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc.Clone()
}

func (r *memoryRepository) Save(_ context.Context, doc *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := model.Validate(doc); err != nil {
		return err
	}
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.doc = doc.Clone()
	return nil
}

var errStorage = errors.New("storage unavailable")
