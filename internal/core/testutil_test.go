package core

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/qrmlabs/chatbot-api/internal/store"
)

// newTestStore opens a migrated store on a throwaway database file, plus a
// raw handle for seeding catalog rows (the API itself never writes the
// catalog; the crawler does).
func newTestStore(t *testing.T) (*store.SQLiteStore, *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.NewSQLiteStore(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Migrate())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
		s.Close()
	})
	return s, db
}

func seedSite(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	res, err := db.Exec("INSERT INTO sites (name, url) VALUES (?, ?)", name, "https://"+name+".example.com")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

type productSeed struct {
	woo       int64
	name      string
	shortDesc string
	desc      string
	sku       string
	price     string
	class     string
	permalink string
}

func seedProduct(t *testing.T, db *sql.DB, siteID int64, p productSeed) int64 {
	t.Helper()
	res, err := db.Exec(`
        INSERT INTO products (site_id, woo_id, name, slug, sku, price, description, short_description, stock_status, shipping_class, permalink)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'instock', ?, ?)`,
		siteID, p.woo, p.name, "", p.sku, p.price, p.desc, p.shortDesc, p.class, p.permalink)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func seedVariation(t *testing.T, db *sql.DB, productID int64, sku, price, attrsJSON string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO product_variations (product_id, sku, price, stock_status, attributes) VALUES (?, ?, ?, 'instock', ?)",
		productID, sku, price, attrsJSON)
	require.NoError(t, err)
}

func seedCategory(t *testing.T, db *sql.DB, siteID int64, name string) {
	t.Helper()
	_, err := db.Exec("INSERT INTO categories (site_id, woo_id, name) VALUES (?, 0, ?)", siteID, name)
	require.NoError(t, err)
}

func seedZone(t *testing.T, db *sql.DB, siteID int64, name string, order int, locationsJSON string) int64 {
	t.Helper()
	var locations interface{}
	if locationsJSON != "" {
		locations = locationsJSON
	}
	res, err := db.Exec(
		"INSERT INTO shipping_zones (site_id, name, zone_order, locations) VALUES (?, ?, ?, ?)",
		siteID, name, order, locations)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func seedMethod(t *testing.T, db *sql.DB, zoneID int64, slug, title, cost string, order int) int64 {
	t.Helper()
	res, err := db.Exec(
		"INSERT INTO shipping_methods (zone_id, method_id, method_title, cost, method_order) VALUES (?, ?, ?, ?, ?)",
		zoneID, slug, title, cost, order)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func seedClassRate(t *testing.T, db *sql.DB, methodID int64, class, cost string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO shipping_class_rates (method_id, shipping_class, cost) VALUES (?, ?, ?)",
		methodID, class, cost)
	require.NoError(t, err)
}
