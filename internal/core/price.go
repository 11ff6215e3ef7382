package core

import (
	"fmt"

	"github.com/qrmlabs/chatbot-api/internal/store"
)

// PriceDisplay renders the customer-facing price of a product: "from $X" off
// the cheapest variation when variations exist, the product's own price
// otherwise, or "Price on request" when nothing is priced.
func PriceDisplay(p store.Product) string {
	if value, ok := minVariationPrice(p); ok {
		return fmt.Sprintf("from $%.2f", value)
	}
	if value, ok := ParseCost(p.Price, 0); ok {
		return fmt.Sprintf("$%.2f", value)
	}
	return "Price on request"
}

// productSubtotal is the order-subtotal estimate a percentage fee is applied
// to: the sum of each matched product's effective price.
func productSubtotal(products []store.Product) float64 {
	var subtotal float64
	for _, p := range products {
		subtotal += effectivePrice(p)
	}
	return subtotal
}

func effectivePrice(p store.Product) float64 {
	if value, ok := minVariationPrice(p); ok {
		return value
	}
	if value, ok := ParseCost(p.Price, 0); ok {
		return value
	}
	return 0
}

func minVariationPrice(p store.Product) (float64, bool) {
	found := false
	min := 0.0
	for _, v := range p.Variations {
		value, ok := ParseCost(v.Price, 0)
		if !ok {
			continue
		}
		if !found || value < min {
			min = value
			found = true
		}
	}
	return min, found
}
