package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/qrmlabs/chatbot-api/internal/store"
)

// ShippingOption is one quotable way to ship the matched products.
type ShippingOption struct {
	Label string  `json:"label"`
	Cost  float64 `json:"cost"`
}

type ShippingService struct {
	dbStore *store.SQLiteStore
	log     zerolog.Logger
}

func NewShippingService(db *store.SQLiteStore, log zerolog.Logger) *ShippingService {
	return &ShippingService{dbStore: db, log: log}
}

// Options resolves the shipping quotes for a set of matched products going to
// a destination postcode. The most specific matching zone wins; within it,
// each method is priced by the highest applicable shipping-class override,
// falling back to the method's base rate through the fee parser. Methods
// whose rate cannot be parsed are dropped with a warning instead of failing
// the request. Results come back cheapest first, free before paid.
func (s *ShippingService) Options(site *store.Site, products []store.Product, postcode string) ([]ShippingOption, error) {
	zones, err := s.dbStore.ShippingZones(site.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shipping zones: %w", err)
	}

	zone := matchZone(zones, postcode)
	if zone == nil {
		return nil, nil
	}

	classes := make(map[string]bool)
	for _, p := range products {
		if p.ShippingClass != "" {
			classes[p.ShippingClass] = true
		}
	}
	subtotal := productSubtotal(products)

	options := make([]ShippingOption, 0, len(zone.Methods))
	for _, method := range zone.Methods {
		cost, ok := s.methodCost(method, classes, subtotal)
		if !ok {
			s.log.Warn().
				Str("site", site.Name).
				Str("method", method.MethodTitle).
				Str("cost", method.Cost).
				Msg("unparseable shipping rate, dropping method")
			continue
		}
		if cost < 0 {
			continue
		}
		options = append(options, ShippingOption{Label: methodLabel(method), Cost: cost})
	}

	// Cheapest first; stable so a free option keeps its place ahead of a
	// paid one at the same cost.
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Cost < options[j].Cost
	})
	return options, nil
}

// methodCost picks the highest parseable class-rate override among the
// products' shipping classes. A single order carries the most expensive
// class's surcharge, so the customer is quoted the conservative rate.
func (s *ShippingService) methodCost(method store.ShippingMethod, classes map[string]bool, subtotal float64) (float64, bool) {
	overrideFound := false
	override := 0.0
	sawApplicableClass := false

	for _, rate := range method.ClassRates {
		if !classes[rate.ShippingClass] {
			continue
		}
		sawApplicableClass = true
		cost, ok := ParseCost(rate.Cost, subtotal)
		if !ok {
			s.log.Warn().
				Str("shipping_class", rate.ShippingClass).
				Str("cost", rate.Cost).
				Msg("unparseable class rate")
			continue
		}
		if !overrideFound || cost > override {
			override = cost
			overrideFound = true
		}
	}

	if overrideFound {
		return override, true
	}
	if sawApplicableClass {
		// Overrides applied but none parsed; the method's quote would be wrong.
		return 0, false
	}
	return ParseCost(method.Cost, subtotal)
}

func methodLabel(method store.ShippingMethod) string {
	if method.MethodTitle != "" {
		return method.MethodTitle
	}
	return method.MethodID
}

// matchZone picks the zone whose location pattern most specifically matches
// the postcode. A zone with no locations is the rest-of-world fallback.
func matchZone(zones []store.ShippingZone, postcode string) *store.ShippingZone {
	var best *store.ShippingZone
	bestSpecificity := -1
	var fallback *store.ShippingZone

	for i := range zones {
		zone := &zones[i]
		if len(zone.Locations) == 0 {
			if fallback == nil {
				fallback = zone
			}
			continue
		}
		for _, pattern := range zone.Locations {
			if spec, ok := matchLocation(pattern, postcode); ok && spec > bestSpecificity {
				best = zone
				bestSpecificity = spec
			}
		}
	}

	if best != nil {
		return best
	}
	return fallback
}

// matchLocation matches a postcode against a zone pattern: exact value or a
// trailing-wildcard prefix like "30*". Specificity is the literal pattern
// length so longer (more specific) patterns win.
func matchLocation(pattern, postcode string) (int, bool) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || postcode == "" {
		return 0, false
	}
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		if strings.HasPrefix(postcode, prefix) {
			return len(prefix), true
		}
		return 0, false
	}
	if strings.EqualFold(pattern, postcode) {
		return len(pattern), true
	}
	return 0, false
}
