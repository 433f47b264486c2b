package mocks

import (
	"context"
	"sync"

	"github.com/example/lunch-orders/internal/infrastructure/store"
)

// MockReadStore is an in-memory store.ReadStoreInterface that records calls
// and lets tests inject failures.
type MockReadStore struct {
	mu   sync.RWMutex
	data map[string]map[string]any // collection -> id -> document

	// For tracking calls in tests
	GetCalls     []DocCall
	InsertCalls  []DocCall
	ReplaceCalls []DocCall
	DeleteCalls  []DocCall

	GetErr     error
	InsertErr  error
	ReplaceErr error
}

// DocCall records the target of one read store call.
type DocCall struct {
	Collection string
	ID         string
}

func NewMockReadStore() *MockReadStore {
	return &MockReadStore{
		data: make(map[string]map[string]any),
	}
}

func (m *MockReadStore) Get(_ context.Context, collection, id string) (any, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, DocCall{Collection: collection, ID: id})
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	if m.data[collection] == nil {
		return nil, false, nil
	}
	doc, ok := m.data[collection][id]
	return doc, ok, nil
}

func (m *MockReadStore) GetAll(_ context.Context, collection string) ([]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	docs := make([]any, 0, len(m.data[collection]))
	for _, doc := range m.data[collection] {
		docs = append(docs, doc)
	}
	return docs, nil
}

func (m *MockReadStore) Insert(_ context.Context, collection, id string, doc any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertCalls = append(m.InsertCalls, DocCall{Collection: collection, ID: id})
	if m.InsertErr != nil {
		return m.InsertErr
	}
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]any)
	}
	if _, exists := m.data[collection][id]; exists {
		return store.ErrDocumentExists
	}
	m.data[collection][id] = doc
	return nil
}

func (m *MockReadStore) Replace(_ context.Context, collection, id string, doc any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReplaceCalls = append(m.ReplaceCalls, DocCall{Collection: collection, ID: id})
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}
	if m.data[collection] == nil {
		return store.ErrDocumentNotFound
	}
	if _, exists := m.data[collection][id]; !exists {
		return store.ErrDocumentNotFound
	}
	m.data[collection][id] = doc
	return nil
}

func (m *MockReadStore) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, DocCall{Collection: collection, ID: id})
	if m.data[collection] != nil {
		delete(m.data[collection], id)
	}
	return nil
}

// SetData seeds a document directly without recording the call.
func (m *MockReadStore) SetData(collection, id string, doc any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]any)
	}
	m.data[collection][id] = doc
}

// Reset clears all data and recorded calls.
func (m *MockReadStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]map[string]any)
	m.GetCalls = nil
	m.InsertCalls = nil
	m.ReplaceCalls = nil
	m.DeleteCalls = nil
	m.GetErr = nil
	m.InsertErr = nil
	m.ReplaceErr = nil
}
