package app

import (
	"testing"

	"bizdesk/api"
	"bizdesk/cmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(f *form, values ...string) {
	for i, v := range values {
		f.inputs[i].SetValue(v)
	}
}

func TestFormSendsTextAsTyped(t *testing.T) {
	route := cmd.Route{Resource: "customers", View: cmd.NewView}
	f := newForm(route, "New", []string{"name", "phone", "sku"}, nil, api.Entity{}, false)
	fill(f, "Nan", "0044123", "1e3")

	got, err := f.payload()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Nan", "phone": "0044123", "sku": "1e3"}, got)
}

func TestFormNumericFieldsOnCreate(t *testing.T) {
	route := cmd.Route{Resource: "products", View: cmd.NewView}
	f := newForm(route, "New", []string{"name", "price"}, []string{"price"}, api.Entity{}, false)

	fill(f, "Green tea", "3.50")
	got, err := f.payload()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Green tea", "price": 3.5}, got)

	for _, bad := range []string{"NaN", "Inf", "-inf", "cheap"} {
		fill(f, "Green tea", bad)
		_, err := f.payload()
		assert.ErrorContains(t, err, "price must be a number", bad)
	}
}

func TestFormEditKeepsEntityTypes(t *testing.T) {
	entity := api.NewEntity(map[string]any{
		"id":        "7",
		"name":      "Nan",
		"sku":       "1e3",
		"stock":     4.0,
		"is_active": true,
	})
	route := cmd.Route{Resource: "products", View: cmd.EditView, ID: "7"}
	f := newForm(route, "Edit", []string{"name", "sku", "stock", "is_active"}, nil, entity, false)

	got, err := f.payload()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Nan", "sku": "1e3", "stock": 4.0, "is_active": true}, got,
		"unchanged fields go back with their original types")

	fill(f, "Nan", "1e3", "4", "maybe")
	_, err = f.payload()
	assert.ErrorContains(t, err, "is_active must be true or false")
}
