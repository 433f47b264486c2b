package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name string
}

// ============================================
// Document Lifecycle Tests
// ============================================

func TestMemoryReadStore_InsertGetReplaceDelete(t *testing.T) {
	rs := NewMemoryReadStore()
	ctx := context.Background()

	require.NoError(t, rs.Insert(ctx, CollectionMenus, "m1", &testDoc{Name: "v1"}))

	doc, found, err := rs.Get(ctx, CollectionMenus, "m1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v1", doc.(*testDoc).Name)

	require.NoError(t, rs.Replace(ctx, CollectionMenus, "m1", &testDoc{Name: "v2"}))
	doc, _, _ = rs.Get(ctx, CollectionMenus, "m1")
	assert.Equal(t, "v2", doc.(*testDoc).Name)

	require.NoError(t, rs.Delete(ctx, CollectionMenus, "m1"))
	_, found, err = rs.Get(ctx, CollectionMenus, "m1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryReadStore_InsertDuplicate(t *testing.T) {
	rs := NewMemoryReadStore()
	ctx := context.Background()

	require.NoError(t, rs.Insert(ctx, CollectionMenus, "m1", &testDoc{}))

	assert.ErrorIs(t, rs.Insert(ctx, CollectionMenus, "m1", &testDoc{}), ErrDocumentExists)
}

func TestMemoryReadStore_ReplaceMissing(t *testing.T) {
	rs := NewMemoryReadStore()

	err := rs.Replace(context.Background(), CollectionMenus, "missing", &testDoc{})

	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestMemoryReadStore_GetAll_ScopedToCollection(t *testing.T) {
	rs := NewMemoryReadStore()
	ctx := context.Background()

	require.NoError(t, rs.Insert(ctx, CollectionMenus, "m1", &testDoc{}))
	require.NoError(t, rs.Insert(ctx, CollectionMenus, "m2", &testDoc{}))
	require.NoError(t, rs.Insert(ctx, CollectionOrders, "o1", &testDoc{}))

	menus, err := rs.GetAll(ctx, CollectionMenus)
	require.NoError(t, err)
	assert.Len(t, menus, 2)

	empty, err := rs.GetAll(ctx, CollectionCalendars)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
