package store

import (
	"context"
	"sync"
)

// MemoryReadStore is an in-memory read model store for local development
// and tests.
type MemoryReadStore struct {
	mu   sync.RWMutex
	data map[string]map[string]any // collection -> id -> document
}

func NewMemoryReadStore() *MemoryReadStore {
	return &MemoryReadStore{data: make(map[string]map[string]any)}
}

func (rs *MemoryReadStore) Get(ctx context.Context, collection, id string) (any, bool, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	docs, ok := rs.data[collection]
	if !ok {
		return nil, false, nil
	}
	doc, ok := docs[id]
	return doc, ok, nil
}

func (rs *MemoryReadStore) GetAll(ctx context.Context, collection string) ([]any, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	docs := rs.data[collection]
	out := make([]any, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc)
	}
	return out, nil
}

func (rs *MemoryReadStore) Insert(ctx context.Context, collection, id string, doc any) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.data[collection] == nil {
		rs.data[collection] = make(map[string]any)
	}
	if _, ok := rs.data[collection][id]; ok {
		return ErrDocumentExists
	}
	rs.data[collection][id] = doc
	return nil
}

func (rs *MemoryReadStore) Replace(ctx context.Context, collection, id string, doc any) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.data[collection] == nil {
		return ErrDocumentNotFound
	}
	if _, ok := rs.data[collection][id]; !ok {
		return ErrDocumentNotFound
	}
	rs.data[collection][id] = doc
	return nil
}

func (rs *MemoryReadStore) Delete(ctx context.Context, collection, id string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.data[collection] != nil {
		delete(rs.data[collection], id)
	}
	return nil
}
