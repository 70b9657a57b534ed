package api

// NewDemo returns a Memory service with a small tenant's worth of rows so
// the client can be explored without a backend.
func NewDemo() *Memory {
	m := NewMemory()

	m.Seed("categories",
		map[string]any{"name": "Beverages", "description": "Drinks and juices", "is_active": true},
		map[string]any{"name": "Bakery", "description": "Bread and pastries", "is_active": true},
		map[string]any{"name": "Cleaning", "description": "Household supplies", "is_active": false},
	)

	m.Seed("products",
		map[string]any{"name": "Espresso beans 1kg", "sku": "BEV-001", "category": "Beverages", "price": 18.5, "stock": 42.0, "min_stock": 10.0, "is_active": true},
		map[string]any{"name": "Orange juice 1L", "sku": "BEV-002", "category": "Beverages", "price": 3.2, "stock": 4.0, "min_stock": 12.0, "is_active": true},
		map[string]any{"name": "Sourdough loaf", "sku": "BAK-001", "category": "Bakery", "price": 5.0, "stock": 0.0, "min_stock": 6.0, "is_active": true},
		map[string]any{"name": "Croissant", "sku": "BAK-002", "category": "Bakery", "price": 1.8, "stock": 36.0, "min_stock": 20.0, "is_active": true},
		map[string]any{"name": "Floor cleaner", "sku": "CLN-001", "category": "Cleaning", "price": 7.9, "stock": 15.0, "min_stock": 5.0, "is_active": false},
	)

	m.Seed("alerts",
		map[string]any{"product": "Orange juice 1L", "kind": "low_stock", "message": "Stock 4 below minimum 12", "resolved": false},
		map[string]any{"product": "Sourdough loaf", "kind": "out_of_stock", "message": "Out of stock", "resolved": false},
		map[string]any{"product": "Croissant", "kind": "low_stock", "message": "Stock recovered", "resolved": true},
	)

	m.Seed("roles",
		map[string]any{"name": "Administrator", "description": "Full tenant access", "is_system": true},
		map[string]any{"name": "Cashier", "description": "Point of sale only", "is_system": false},
		map[string]any{"name": "HR manager", "description": "Employees, payroll and leave", "is_system": false},
	)

	m.Seed("customers",
		map[string]any{"name": "Ana Torres", "email": "ana@example.com", "phone": "555-0101", "is_active": true, "balance": 0.0},
		map[string]any{"name": "Brightside Cafe", "email": "orders@brightside.example", "phone": "555-0144", "is_active": true, "balance": 120.4},
		map[string]any{"name": "Luis Ortega", "email": "luis@example.com", "phone": "555-0199", "is_active": false, "balance": 0.0},
	)

	m.Seed("expenses",
		map[string]any{"description": "Electricity March", "category": "utilities", "amount": 310.0, "status": "approved", "date": "2026-03-31"},
		map[string]any{"description": "Delivery van fuel", "category": "transport", "amount": 85.6, "status": "pending", "date": "2026-04-02"},
		map[string]any{"description": "Team lunch", "category": "staff", "amount": 142.0, "status": "rejected", "date": "2026-04-05"},
	)

	m.Seed("sales",
		map[string]any{"number": "S-1001", "customer": "Ana Torres", "total": 23.7, "status": "completed", "date": "2026-04-06"},
		map[string]any{"number": "S-1002", "customer": "Brightside Cafe", "total": 96.0, "status": "pending", "date": "2026-04-06"},
		map[string]any{"number": "S-1003", "customer": "Walk-in", "total": 5.0, "status": "cancelled", "date": "2026-04-07"},
	)

	m.Seed("stock-counts",
		map[string]any{"reference": "SC-2026-04", "location": "Main store", "status": "in_progress", "items": 48.0},
		map[string]any{"reference": "SC-2026-03", "location": "Main store", "status": "completed", "items": 51.0},
		map[string]any{"reference": "SC-2026-03B", "location": "Warehouse", "status": "draft", "items": 0.0},
	)

	return m
}
