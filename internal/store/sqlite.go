package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog"
)

// SQLiteStore reads the catalog produced by the crawler and owns the
// conversation tables. The catalog schema is created by the crawler (or the
// -migrate flag); conversation persistence is best-effort and controlled by
// a capability flag probed once at startup.
type SQLiteStore struct {
	db             *sql.DB
	log            zerolog.Logger
	historyEnabled bool
}

func NewSQLiteStore(dataSourceName string, log zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	s.historyEnabled = s.probeConversationTables()
	if !s.historyEnabled {
		log.Warn().Msg("conversation tables missing; chat history disabled")
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping reports database reachability for health checks.
func (s *SQLiteStore) Ping() error {
	return s.db.Ping()
}

func (s *SQLiteStore) probeConversationTables() bool {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('conversations', 'conversation_messages')`,
	).Scan(&n)
	return err == nil && n == 2
}

// Site methods

func (s *SQLiteStore) GetSiteByName(name string) (*Site, error) {
	var site Site
	err := s.db.QueryRow(
		"SELECT id, name, url, is_active, created_at, updated_at FROM sites WHERE name = ?", name,
	).Scan(&site.ID, &site.Name, &site.URL, &site.IsActive, &site.CreatedAt, &site.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Site not found
		}
		return nil, fmt.Errorf("failed to query site: %w", err)
	}
	return &site, nil
}

func (s *SQLiteStore) ListSites() ([]Site, error) {
	rows, err := s.db.Query("SELECT id, name, url, is_active, created_at, updated_at FROM sites ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		var site Site
		if err := rows.Scan(&site.ID, &site.Name, &site.URL, &site.IsActive, &site.CreatedAt, &site.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan site row: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

func (s *SQLiteStore) GetSiteStats(site *Site) (*SiteStats, error) {
	stats := SiteStats{SiteName: site.Name}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM products WHERE site_id = ?", site.ID).Scan(&stats.ProductCount); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM categories WHERE site_id = ?", site.ID).Scan(&stats.CategoryCount); err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	updated := site.UpdatedAt
	stats.LastUpdated = &updated
	return &stats, nil
}

// Product methods

// ProductsForScoring returns every catalog row of a site with only the text
// fields the relevance scorer reads. Variations are not loaded here.
func (s *SQLiteStore) ProductsForScoring(siteID int64) ([]Product, error) {
	rows, err := s.db.Query(`
        SELECT id, woo_id, name, COALESCE(sku, ''), COALESCE(description, ''),
               COALESCE(short_description, ''), COALESCE(shipping_class, '')
        FROM products WHERE site_id = ?`, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query products for scoring: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p := Product{SiteID: siteID}
		if err := rows.Scan(&p.ID, &p.WooID, &p.Name, &p.SKU, &p.Description, &p.ShortDescription, &p.ShippingClass); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProductsByIDs loads full product rows, variations included, preserving
// the order of ids.
func (s *SQLiteStore) GetProductsByIDs(siteID int64, ids []int64) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, siteID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.Query(fmt.Sprintf(`
        SELECT id, woo_id, name, COALESCE(slug, ''), COALESCE(sku, ''),
               COALESCE(price, ''), COALESCE(regular_price, ''), COALESCE(sale_price, ''),
               COALESCE(description, ''), COALESCE(short_description, ''),
               COALESCE(stock_status, ''), stock_quantity,
               COALESCE(shipping_class, ''), COALESCE(permalink, '')
        FROM products WHERE site_id = ? AND id IN (%s)`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*Product, len(ids))
	for rows.Next() {
		p := Product{SiteID: siteID}
		if err := rows.Scan(&p.ID, &p.WooID, &p.Name, &p.Slug, &p.SKU,
			&p.Price, &p.RegularPrice, &p.SalePrice,
			&p.Description, &p.ShortDescription,
			&p.StockStatus, &p.StockQuantity,
			&p.ShippingClass, &p.Permalink); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		byID[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for id, p := range byID {
		variations, err := s.variationsForProduct(id)
		if err != nil {
			return nil, err
		}
		p.Variations = variations
	}

	products := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (s *SQLiteStore) variationsForProduct(productID int64) ([]ProductVariation, error) {
	rows, err := s.db.Query(`
        SELECT id, COALESCE(sku, ''), COALESCE(price, ''), COALESCE(stock_status, ''), COALESCE(attributes, '')
        FROM product_variations WHERE product_id = ? ORDER BY id`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query variations: %w", err)
	}
	defer rows.Close()

	var variations []ProductVariation
	for rows.Next() {
		v := ProductVariation{ProductID: productID}
		var attrsJSON string
		if err := rows.Scan(&v.ID, &v.SKU, &v.Price, &v.StockStatus, &attrsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan variation row: %w", err)
		}
		if attrsJSON != "" {
			if err := v.Attributes.UnmarshalJSON([]byte(attrsJSON)); err != nil {
				// Malformed attribute bag narrows the result, never aborts it.
				s.log.Warn().Int64("variation_id", v.ID).Err(err).Msg("skipping variation with malformed attributes")
				continue
			}
		}
		variations = append(variations, v)
	}
	return variations, rows.Err()
}

// Category methods

func (s *SQLiteStore) CategoriesBySite(siteID int64) ([]Category, error) {
	rows, err := s.db.Query(`
        SELECT id, woo_id, name, COALESCE(slug, ''), COALESCE(description, '')
        FROM categories WHERE site_id = ? ORDER BY name`, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		c := Category{SiteID: siteID}
		if err := rows.Scan(&c.ID, &c.WooID, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Shipping methods

// ShippingZones loads a site's zones with their methods and class-rate
// overrides, ordered the way the merchant configured them.
func (s *SQLiteStore) ShippingZones(siteID int64) ([]ShippingZone, error) {
	rows, err := s.db.Query(`
        SELECT id, name, zone_order, COALESCE(locations, '')
        FROM shipping_zones WHERE site_id = ? ORDER BY zone_order, id`, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shipping zones: %w", err)
	}
	defer rows.Close()

	var zones []ShippingZone
	for rows.Next() {
		z := ShippingZone{SiteID: siteID}
		var locationsJSON string
		if err := rows.Scan(&z.ID, &z.Name, &z.ZoneOrder, &locationsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan shipping zone row: %w", err)
		}
		z.Locations = decodeLocations(locationsJSON, s.log, z.ID)
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range zones {
		methods, err := s.methodsForZone(zones[i].ID)
		if err != nil {
			return nil, err
		}
		zones[i].Methods = methods
	}
	return zones, nil
}

func (s *SQLiteStore) methodsForZone(zoneID int64) ([]ShippingMethod, error) {
	rows, err := s.db.Query(`
        SELECT id, COALESCE(method_id, ''), COALESCE(method_title, ''), COALESCE(cost, ''), method_order
        FROM shipping_methods WHERE zone_id = ? ORDER BY method_order, id`, zoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shipping methods: %w", err)
	}
	defer rows.Close()

	var methods []ShippingMethod
	for rows.Next() {
		m := ShippingMethod{ZoneID: zoneID}
		if err := rows.Scan(&m.ID, &m.MethodID, &m.MethodTitle, &m.Cost, &m.MethodOrder); err != nil {
			return nil, fmt.Errorf("failed to scan shipping method row: %w", err)
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range methods {
		rates, err := s.classRatesForMethod(methods[i].ID)
		if err != nil {
			return nil, err
		}
		methods[i].ClassRates = rates
	}
	return methods, nil
}

func (s *SQLiteStore) classRatesForMethod(methodID int64) ([]ShippingClassRate, error) {
	rows, err := s.db.Query(`
        SELECT id, shipping_class, COALESCE(cost, '')
        FROM shipping_class_rates WHERE method_id = ? ORDER BY id`, methodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shipping class rates: %w", err)
	}
	defer rows.Close()

	var rates []ShippingClassRate
	for rows.Next() {
		r := ShippingClassRate{MethodID: methodID}
		if err := rows.Scan(&r.ID, &r.ShippingClass, &r.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan class rate row: %w", err)
		}
		rates = append(rates, r)
	}
	return rates, rows.Err()
}

func decodeLocations(raw string, log zerolog.Logger, zoneID int64) []string {
	if raw == "" {
		return nil
	}
	var locations []string
	if err := json.Unmarshal([]byte(raw), &locations); err != nil {
		log.Warn().Int64("zone_id", zoneID).Err(err).Msg("unparseable zone locations, treating zone as rest of world")
		return nil
	}
	return locations
}
