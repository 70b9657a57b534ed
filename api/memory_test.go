package api

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Seed("roles", map[string]any{"name": "Cashier"})

	created, err := m.Create(ctx, "roles", map[string]any{"name": "Auditor", "id": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "2", created.ID)

	got, err := m.Get(ctx, "roles", "2")
	require.NoError(t, err)
	assert.Equal(t, "Auditor", got.String("name"))

	updated, err := m.Update(ctx, "roles", "2", map[string]any{"name": "Senior auditor"})
	require.NoError(t, err)
	assert.Equal(t, "Senior auditor", updated.String("name"))
	assert.Equal(t, "2", updated.ID)

	list, err := m.List(ctx, "roles", url.Values{"name": {"Cashier"}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "1", list[0].ID)

	require.NoError(t, m.Delete(ctx, "roles", "1"))
	assert.ErrorIs(t, m.Delete(ctx, "roles", "1"), ErrNotFound)

	list, err = m.List(ctx, "roles", nil)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemoryDeleteDoesNotMutatePriorLists(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Seed("sales", map[string]any{"number": "a"}, map[string]any{"number": "b"}, map[string]any{"number": "c"})

	before, err := m.List(ctx, "sales", nil)
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, "sales", "1"))

	assert.Equal(t, "a", before[0].String("number"))
	assert.Len(t, before, 3)
}

func TestMemoryFailHook(t *testing.T) {
	m := NewMemory()
	boom := &Error{Message: "backend down", Status: 503}
	m.Fail = func(op, resource string) error {
		if op == "list" {
			return boom
		}
		return nil
	}

	_, err := m.List(context.Background(), "alerts", nil)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 503, apiErr.Status)
}

func TestEntityAccessors(t *testing.T) {
	e := NewEntity(map[string]any{"id": 12.0, "price": "3.50", "stock": 4.0, "is_active": "true", "tags": []any{"a"}})
	assert.Equal(t, "12", e.ID)

	price, ok := e.Float("price")
	assert.True(t, ok)
	assert.InDelta(t, 3.5, price, 1e-9)

	_, ok = e.Float("missing")
	assert.False(t, ok)

	assert.True(t, e.Bool("is_active"))
	assert.Equal(t, `["a"]`, e.String("tags"))
	assert.Equal(t, []string{"id", "is_active", "price", "stock", "tags"}, e.Keys())
}

func TestDemoSeedsEveryResource(t *testing.T) {
	m := NewDemo()
	for _, r := range []string{"products", "alerts", "categories", "roles", "customers", "expenses", "sales", "stock-counts"} {
		list, err := m.List(context.Background(), r, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, list, r)
	}
}
