package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

type Site struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID               int64              `json:"id"`
	SiteID           int64              `json:"site_id"`
	WooID            int64              `json:"woo_id"`
	Name             string             `json:"name"`
	Slug             string             `json:"slug"`
	SKU              string             `json:"sku"`
	Price            string             `json:"price"`
	RegularPrice     string             `json:"regular_price,omitempty"`
	SalePrice        string             `json:"sale_price,omitempty"`
	Description      string             `json:"description,omitempty"`
	ShortDescription string             `json:"short_description,omitempty"`
	StockStatus      string             `json:"stock_status"`
	StockQuantity    *int64             `json:"stock_quantity,omitempty"`
	ShippingClass    string             `json:"shipping_class,omitempty"`
	Permalink        string             `json:"permalink"`
	Variations       []ProductVariation `json:"variations,omitempty"`
}

type ProductVariation struct {
	ID          int64               `json:"id"`
	ProductID   int64               `json:"-"`
	SKU         string              `json:"sku,omitempty"`
	Price       string              `json:"price"`
	StockStatus string              `json:"stock_status,omitempty"`
	Attributes  VariationAttributes `json:"attributes"`
}

// VariationAttribute is one normalized key/value pair of a variation's
// attribute bag, e.g. {Weight, 4kg Full Roll}.
type VariationAttribute struct {
	Name  string `json:"name"`
	Value string `json:"option"`
}

// VariationAttributes decodes the two attribute shapes the crawler emits:
// the list form [{"name":"Weight","option":"4kg"}] and the mapping form
// {"Weight":"4kg"}. Both normalize to an ordered attribute list; anything
// else is a decode error so the caller can skip the variation.
type VariationAttributes []VariationAttribute

func (a *VariationAttributes) UnmarshalJSON(data []byte) error {
	var list []struct {
		Name   string `json:"name"`
		Option string `json:"option"`
		Value  string `json:"value"`
	}
	if err := json.Unmarshal(data, &list); err == nil {
		out := make(VariationAttributes, 0, len(list))
		for _, item := range list {
			value := item.Option
			if value == "" {
				value = item.Value
			}
			out = append(out, VariationAttribute{Name: item.Name, Value: value})
		}
		*a = out
		return nil
	}

	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err == nil {
		keys := make([]string, 0, len(mapping))
		for k := range mapping {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(VariationAttributes, 0, len(keys))
		for _, k := range keys {
			out = append(out, VariationAttribute{Name: k, Value: mapping[k]})
		}
		*a = out
		return nil
	}

	return fmt.Errorf("variation attributes are neither a list nor a mapping: %.40s", string(data))
}

// Summary renders the attribute set for prompt excerpts, e.g. "Weight: 4kg Full Roll".
func (a VariationAttributes) Summary() string {
	out := ""
	for i, attr := range a {
		if i > 0 {
			out += ", "
		}
		out += attr.Name + ": " + attr.Value
	}
	return out
}

type Category struct {
	ID          int64  `json:"id"`
	SiteID      int64  `json:"-"`
	WooID       int64  `json:"woo_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

type ShippingZone struct {
	ID        int64            `json:"id"`
	SiteID    int64            `json:"site_id"`
	Name      string           `json:"name"`
	ZoneOrder int64            `json:"zone_order"`
	Locations []string         `json:"locations"` // postcode/region patterns; empty means rest of world
	Methods   []ShippingMethod `json:"methods"`
}

type ShippingMethod struct {
	ID          int64               `json:"id"`
	ZoneID      int64               `json:"zone_id"`
	MethodID    string              `json:"method_id"` // internal slug, e.g. "flat_rate"
	MethodTitle string              `json:"method_title"`
	Cost        string              `json:"cost"` // flat amount or [fee ...] formula
	MethodOrder int64               `json:"method_order"`
	ClassRates  []ShippingClassRate `json:"class_rates,omitempty"`
}

type ShippingClassRate struct {
	ID            int64  `json:"id"`
	MethodID      int64  `json:"-"`
	ShippingClass string `json:"shipping_class"`
	Cost          string `json:"cost"`
}

type Conversation struct {
	ID             int64     `json:"-"`
	ConversationID string    `json:"conversation_id"`
	SiteID         int64     `json:"site_id"`
	UserID         string    `json:"user_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ConversationMessage struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SiteStats struct {
	SiteName      string     `json:"site_name"`
	ProductCount  int64      `json:"product_count"`
	CategoryCount int64      `json:"category_count"`
	LastUpdated   *time.Time `json:"last_updated,omitempty"`
}
