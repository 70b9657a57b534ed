package cmd

import (
	"context"
	"fmt"

	"bizdesk/api"
	"bizdesk/ui"
)

// View is the kind of screen a route points at.
type View int

const (
	ListView View = iota
	DetailView
	EditView
	NewView
)

// Route identifies a screen: a resource list, one row's detail or edit
// form, or the create form.
type Route struct {
	Resource string
	View     View
	ID       string
}

func (r Route) String() string {
	switch r.View {
	case DetailView:
		return fmt.Sprintf("/%s/%s", r.Resource, r.ID)
	case EditView:
		return fmt.Sprintf("/%s/%s/edit", r.Resource, r.ID)
	case NewView:
		return fmt.Sprintf("/%s/new", r.Resource)
	default:
		return "/" + r.Resource
	}
}

// GenerateFunc runs a resource's bulk "generate" action and returns a
// status line for the page.
type GenerateFunc func(ctx context.Context, svc api.Service) (string, error)

// Resource describes one list screen.
type Resource struct {
	ID           string
	Name         string
	Columns      []ui.Column
	SearchFields []string
	Filters      []ui.Filter
	FilterMode   ui.FilterMode

	// Fields are the editable fields shown on the create and edit forms.
	Fields []string
	// NumericFields are sent as numbers when a row is created. On edit the
	// field keeps the type the backend returned.
	NumericFields []string

	Generate  GenerateFunc
	QuickSale bool
}

func (r Resource) ListRoute() Route { return Route{Resource: r.ID, View: ListView} }
func (r Resource) NewRoute() Route  { return Route{Resource: r.ID, View: NewView} }

func (r Resource) DetailRoute(id string) Route {
	return Route{Resource: r.ID, View: DetailView, ID: id}
}

func (r Resource) EditRoute(id string) Route {
	return Route{Resource: r.ID, View: EditView, ID: id}
}

func equals(field, value string) func(api.Entity) bool {
	return func(e api.Entity) bool { return e.String(field) == value }
}

func flag(field string, want bool) func(api.Entity) bool {
	return func(e api.Entity) bool { return e.Bool(field) == want }
}

func stockIs(kind string) func(api.Entity) bool {
	return func(e api.Entity) bool { return api.StockAlertKind(e) == kind }
}

// Resources is the catalogue of list screens in tab order.
var Resources = []Resource{
	{
		ID:   "products",
		Name: "Products",
		Columns: []ui.Column{
			{Title: "Name", Field: "name", Width: 24},
			{Title: "SKU", Field: "sku", Width: 9},
			{Title: "Category", Field: "category", Width: 12},
			{Title: "Price", Field: "price", Width: 8, Right: true},
			{Title: "Stock", Field: "stock", Width: 6, Right: true},
		},
		SearchFields: []string{"name", "sku", "category"},
		Filters: []ui.Filter{
			{Digit: 1, Label: "Active", Match: flag("is_active", true)},
			// Low and out of stock are alternatives: either may match.
			{Digit: 2, Label: "Low stock", Group: "stock", Match: stockIs(api.AlertLowStock)},
			{Digit: 3, Label: "Out of stock", Group: "stock", Match: stockIs(api.AlertOutOfStock)},
		},
		FilterMode:    ui.MultiSelect,
		Fields:        []string{"name", "sku", "category", "price", "stock", "min_stock"},
		NumericFields: []string{"price", "stock", "min_stock"},
		QuickSale:     true,
	},
	{
		ID:   "alerts",
		Name: "Alerts",
		Columns: []ui.Column{
			{Title: "Product", Field: "product", Width: 20},
			{Title: "Kind", Field: "kind", Width: 13},
			{Title: "Message", Field: "message", Width: 28},
			{Title: "Resolved", Field: "resolved", Width: 8},
		},
		SearchFields: []string{"product", "message"},
		Filters: []ui.Filter{
			{Digit: 1, Label: "Open", Match: flag("resolved", false)},
			{Digit: 2, Label: "Resolved", Match: flag("resolved", true)},
			{Digit: 3, Label: "Low stock", Match: equals("kind", api.AlertLowStock)},
			{Digit: 4, Label: "Out of stock", Match: equals("kind", api.AlertOutOfStock)},
		},
		FilterMode: ui.SingleSelect,
		Fields:     []string{"product", "kind", "message"},
		Generate: func(ctx context.Context, svc api.Service) (string, error) {
			n, err := api.GenerateStockAlerts(ctx, svc)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d new alert(s)", n), nil
		},
	},
	{
		ID:   "categories",
		Name: "Categories",
		Columns: []ui.Column{
			{Title: "Name", Field: "name", Width: 18},
			{Title: "Description", Field: "description", Width: 30},
			{Title: "Active", Field: "is_active", Width: 6},
		},
		SearchFields: []string{"name", "description"},
		Filters: []ui.Filter{
			{Digit: 1, Label: "Active", Match: flag("is_active", true)},
			// Low and out of stock are alternatives: either may match.
			{Digit: 2, Label: "Inactive", Match: flag("is_active", false)},
		},
		FilterMode: ui.SingleSelect,
		Fields:     []string{"name", "description"},
	},
	{
		ID:   "roles",
		Name: "Roles",
		Columns: []ui.Column{
			{Title: "Name", Field: "name", Width: 16},
			{Title: "Description", Field: "description", Width: 32},
			{Title: "System", Field: "is_system", Width: 6},
		},
		SearchFields: []string{"name", "description"},
		Filters: []ui.Filter{
			{Digit: 1, Label: "System", Match: flag("is_system", true)},
			{Digit: 2, Label: "Custom", Match: flag("is_system", false)},
		},
		FilterMode: ui.SingleSelect,
		Fields:     []string{"name", "description"},
	},
	{
		ID:   "customers",
		Name: "Customers",
		Columns: []ui.Column{
			{Title: "Name", Field: "name", Width: 20},
			{Title: "Email", Field: "email", Width: 26},
			{Title: "Phone", Field: "phone", Width: 10},
			{Title: "Balance", Field: "balance", Width: 8, Right: true},
		},
		SearchFields: []string{"name", "email", "phone"},
		Filters: []ui.Filter{
			{Digit: 1, Label: "Active", Match: flag("is_active", true)},
			// Low and out of stock are alternatives: either may match.
			{Digit: 2, Label: "Inactive", Match: flag("is_active", false)},
			{Digit: 3, Label: "Owes money", Match: func(e api.Entity) bool {
				b, ok := e.Float("balance")
				return ok && b > 0
			}},
		},
		FilterMode: ui.SingleSelect,
		Fields:     []string{"name", "email", "phone"},
	},
	{
		ID:   "expenses",
		Name: "Expenses",
		Columns: []ui.Column{
			{Title: "Description", Field: "description", Width: 22},
			{Title: "Category", Field: "category", Width: 10},
			{Title: "Amount", Field: "amount", Width: 8, Right: true},
			{Title: "Status", Field: "status", Width: 9},
			{Title: "Date", Field: "date", Width: 10},
		},
		SearchFields: []string{"description", "category"},
		Filters: []ui.Filter{
			{Digit: 1, Label: "Pending", Match: equals("status", "pending")},
			{Digit: 2, Label: "Approved", Match: equals("status", "approved")},
			{Digit: 3, Label: "Rejected", Match: equals("status", "rejected")},
		},
		FilterMode:    ui.SingleSelect,
		Fields:        []string{"description", "category", "amount", "date"},
		NumericFields: []string{"amount"},
	},
	{
		ID:   "sales",
		Name: "Sales",
		Columns: []ui.Column{
			{Title: "Number", Field: "number", Width: 8},
			{Title: "Customer", Field: "customer", Width: 20},
			{Title: "Total", Field: "total", Width: 8, Right: true},
			{Title: "Status", Field: "status", Width: 10},
			{Title: "Date", Field: "date", Width: 10},
		},
		SearchFields: []string{"number", "customer"},
		Filters: []ui.Filter{
			{Digit: 1, Label: "Completed", Match: equals("status", "completed")},
			{Digit: 2, Label: "Pending", Match: equals("status", "pending")},
			{Digit: 3, Label: "Cancelled", Match: equals("status", "cancelled")},
		},
		FilterMode:    ui.SingleSelect,
		Fields:        []string{"customer", "total", "status"},
		NumericFields: []string{"total"},
	},
	{
		ID:   "stock-counts",
		Name: "Stock counts",
		Columns: []ui.Column{
			{Title: "Reference", Field: "reference", Width: 12},
			{Title: "Location", Field: "location", Width: 14},
			{Title: "Status", Field: "status", Width: 12},
			{Title: "Items", Field: "items", Width: 6, Right: true},
		},
		SearchFields: []string{"reference", "location"},
		Filters: []ui.Filter{
			{Digit: 1, Label: "Draft", Match: equals("status", "draft")},
			{Digit: 2, Label: "In progress", Match: equals("status", "in_progress")},
			{Digit: 3, Label: "Completed", Match: equals("status", "completed")},
		},
		FilterMode: ui.SingleSelect,
		Fields:     []string{"reference", "location"},
	},
}

// LookupResource finds a resource by id.
func LookupResource(id string) (Resource, bool) {
	i := ResourceIndex(id)
	if i < 0 {
		return Resource{}, false
	}
	return Resources[i], true
}

// ResourceIndex returns the tab position of a resource, or -1.
func ResourceIndex(id string) int {
	for i, r := range Resources {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// ResourceIDs lists the catalogue ids in tab order.
func ResourceIDs() []string {
	ids := make([]string, len(Resources))
	for i, r := range Resources {
		ids[i] = r.ID
	}
	return ids
}
