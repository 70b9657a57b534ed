package api

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockAlertKind(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   string
	}{
		{"healthy", map[string]any{"stock": 10.0, "min_stock": 5.0}, ""},
		{"low", map[string]any{"stock": 4.0, "min_stock": 5.0}, AlertLowStock},
		{"at minimum", map[string]any{"stock": 5.0, "min_stock": 5.0}, ""},
		{"empty", map[string]any{"stock": 0.0, "min_stock": 5.0}, AlertOutOfStock},
		{"untracked", map[string]any{"name": "Gift card"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StockAlertKind(NewEntity(tt.fields)))
		})
	}
}

func TestGenerateStockAlertsSkipsOpenAlerts(t *testing.T) {
	ctx := context.Background()
	m := NewDemo()

	before, err := m.List(ctx, "alerts", nil)
	require.NoError(t, err)

	// Demo data already has open alerts for both low products.
	n, err := GenerateStockAlerts(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	m.Seed("products", map[string]any{"name": "Milk 1L", "stock": 1.0, "min_stock": 8.0, "is_active": true})
	n, err = GenerateStockAlerts(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	after, err := m.List(ctx, "alerts", url.Values{"product": {"Milk 1L"}})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, AlertLowStock, after[0].String("kind"))
	assert.False(t, after[0].Bool("resolved"))

	all, err := m.List(ctx, "alerts", nil)
	require.NoError(t, err)
	assert.Len(t, all, len(before)+1)
}

func TestGenerateStockAlertsStopsOnFailure(t *testing.T) {
	m := NewDemo()
	m.Fail = func(op, resource string) error {
		if op == "list" && resource == "alerts" {
			return &Error{Message: "forbidden", Status: 403}
		}
		return nil
	}
	n, err := GenerateStockAlerts(context.Background(), m)
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "forbidden", DisplayMessage(err))
}

func TestParseQuantity(t *testing.T) {
	product := NewEntity(map[string]any{"id": "2", "stock": 4.0})

	tests := []struct {
		input   string
		want    int
		wantErr string
	}{
		{"3", 3, ""},
		{" 4 ", 4, ""},
		{"", 0, "quantity is required"},
		{"1.5", 0, "quantity must be a whole number"},
		{"abc", 0, "quantity must be a whole number"},
		{"0", 0, "quantity must be greater than zero"},
		{"-2", 0, "quantity must be greater than zero"},
		{"5", 0, "only 4 in stock"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseQuantity(tt.input, product)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuickSaleCreatesSale(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Seed("products", map[string]any{"name": "Croissant", "price": 2.0, "stock": 10.0})
	product, err := m.Get(ctx, "products", "1")
	require.NoError(t, err)

	sale, err := QuickSale(ctx, m, product, 3)
	require.NoError(t, err)
	total, ok := sale.Float("total")
	require.True(t, ok)
	assert.InDelta(t, 6.0, total, 1e-9)
	assert.Equal(t, "completed", sale.String("status"))
}

func TestMemorySearchParam(t *testing.T) {
	m := NewDemo()
	got, err := m.List(context.Background(), "customers", url.Values{SearchParam: {"BRIGHT"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Brightside Cafe", got[0].String("name"))
}
