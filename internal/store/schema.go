package store

import "fmt"

const catalogSchema = `
    CREATE TABLE IF NOT EXISTS sites (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT UNIQUE NOT NULL,
        url TEXT NOT NULL,
        is_active BOOLEAN DEFAULT TRUE,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS products (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        site_id INTEGER NOT NULL,
        woo_id INTEGER NOT NULL,
        name TEXT NOT NULL,
        slug TEXT,
        sku TEXT,
        price TEXT,
        regular_price TEXT,
        sale_price TEXT,
        description TEXT,
        short_description TEXT,
        stock_status TEXT,
        stock_quantity INTEGER,
        shipping_class TEXT,
        permalink TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (site_id) REFERENCES sites (id)
    );

    CREATE TABLE IF NOT EXISTS product_variations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        product_id INTEGER NOT NULL,
        sku TEXT,
        price TEXT,
        stock_status TEXT,
        attributes TEXT, -- JSON, list or mapping form
        FOREIGN KEY (product_id) REFERENCES products (id)
    );

    CREATE TABLE IF NOT EXISTS categories (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        site_id INTEGER NOT NULL,
        woo_id INTEGER NOT NULL,
        name TEXT NOT NULL,
        slug TEXT,
        description TEXT,
        FOREIGN KEY (site_id) REFERENCES sites (id)
    );

    CREATE TABLE IF NOT EXISTS shipping_zones (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        site_id INTEGER NOT NULL,
        name TEXT NOT NULL,
        zone_order INTEGER DEFAULT 0,
        locations TEXT, -- JSON array of postcode/region patterns
        FOREIGN KEY (site_id) REFERENCES sites (id)
    );

    CREATE TABLE IF NOT EXISTS shipping_methods (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        zone_id INTEGER NOT NULL,
        method_id TEXT,
        method_title TEXT,
        cost TEXT,
        method_order INTEGER DEFAULT 0,
        FOREIGN KEY (zone_id) REFERENCES shipping_zones (id)
    );

    CREATE TABLE IF NOT EXISTS shipping_class_rates (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        method_id INTEGER NOT NULL,
        shipping_class TEXT NOT NULL,
        cost TEXT,
        FOREIGN KEY (method_id) REFERENCES shipping_methods (id)
    );
`

const conversationSchema = `
    CREATE TABLE IF NOT EXISTS conversations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        conversation_id TEXT UNIQUE NOT NULL,
        site_id INTEGER NOT NULL,
        user_id TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (site_id) REFERENCES sites (id)
    );

    CREATE TABLE IF NOT EXISTS conversation_messages (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        conversation_id INTEGER NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
        content TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (conversation_id) REFERENCES conversations (id)
    );

    CREATE INDEX IF NOT EXISTS idx_conversation_messages_conv
        ON conversation_messages (conversation_id, created_at);
`

// Migrate creates the full schema. The catalog tables normally arrive from
// the crawler; this exists for the -migrate flag and for fresh deployments.
// It re-probes the history capability so a store migrated in-process picks
// up conversation persistence immediately.
func (s *SQLiteStore) Migrate() error {
	if _, err := s.db.Exec(catalogSchema); err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}
	if _, err := s.db.Exec(conversationSchema); err != nil {
		return fmt.Errorf("failed to create conversation schema: %w", err)
	}
	s.historyEnabled = s.probeConversationTables()
	return nil
}
