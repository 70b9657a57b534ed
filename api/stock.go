package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Alert kinds raised for products.
const (
	AlertLowStock   = "low_stock"
	AlertOutOfStock = "out_of_stock"
)

// StockAlertKind classifies a product by stock level. It returns "" when the
// product is healthy or does not track stock.
func StockAlertKind(product Entity) string {
	stock, ok := product.Float("stock")
	if !ok {
		return ""
	}
	if stock <= 0 {
		return AlertOutOfStock
	}
	if minStock, ok := product.Float("min_stock"); ok && stock < minStock {
		return AlertLowStock
	}
	return ""
}

// GenerateStockAlerts raises an unresolved alert for every active product
// that is low or out of stock and has no open alert of the same kind. It
// makes one pass and stops at the first failed request. The number of
// alerts created before any failure is returned.
func GenerateStockAlerts(ctx context.Context, svc Service) (int, error) {
	products, err := svc.List(ctx, "products", url.Values{"is_active": {"true"}})
	if err != nil {
		return 0, fmt.Errorf("failed to list products: %w", err)
	}
	open, err := svc.List(ctx, "alerts", url.Values{"resolved": {"false"}})
	if err != nil {
		return 0, fmt.Errorf("failed to list open alerts: %w", err)
	}

	existing := make(map[string]bool, len(open))
	for _, a := range open {
		existing[a.String("product")+"\x00"+a.String("kind")] = true
	}

	created := 0
	for _, p := range products {
		kind := StockAlertKind(p)
		if kind == "" || existing[p.String("name")+"\x00"+kind] {
			continue
		}
		_, err := svc.Create(ctx, "alerts", map[string]any{
			"product":  p.String("name"),
			"kind":     kind,
			"message":  alertMessage(p, kind),
			"resolved": false,
		})
		if err != nil {
			return created, fmt.Errorf("failed to create alert for %s: %w", p.String("name"), err)
		}
		created++
	}
	return created, nil
}

func alertMessage(p Entity, kind string) string {
	if kind == AlertOutOfStock {
		return "Out of stock"
	}
	return fmt.Sprintf("Stock %s below minimum %s", p.String("stock"), p.String("min_stock"))
}

// ParseQuantity validates a quick-sale quantity: a positive whole number no
// greater than the product's stock.
func ParseQuantity(input string, product Entity) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("quantity is required")
	}
	qty, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("quantity must be a whole number")
	}
	if qty <= 0 {
		return 0, fmt.Errorf("quantity must be greater than zero")
	}
	stock, _ := product.Float("stock")
	if float64(qty) > stock {
		return 0, fmt.Errorf("only %s in stock", product.String("stock"))
	}
	return qty, nil
}

// QuickSale records a single-line sale of qty units of product.
func QuickSale(ctx context.Context, svc Service, product Entity, qty int) (Entity, error) {
	price, _ := product.Float("price")
	sale, err := svc.Create(ctx, "sales", map[string]any{
		"customer": "Walk-in",
		"status":   "completed",
		"total":    price * float64(qty),
		"items": []any{map[string]any{
			"product":  product.ID,
			"quantity": qty,
			"price":    price,
		}},
	})
	if err != nil {
		return Entity{}, fmt.Errorf("failed to record sale: %w", err)
	}
	return sale, nil
}
