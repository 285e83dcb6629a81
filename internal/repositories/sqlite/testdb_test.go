package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"store-backend-api/internal/models"
)

// setupTestDB creates a temporary SQLite database with the full schema
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	tmpDir, err := os.MkdirTemp("", "store-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to open database: %v", err)
	}

	schema := `
	CREATE TABLE profiles (
		id TEXT PRIMARY KEY,
		email TEXT,
		role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		price REAL,
		description TEXT,
		category TEXT,
		quantity INTEGER NOT NULL DEFAULT 0,
		size TEXT,
		image TEXT,
		images TEXT NOT NULL DEFAULT '[]',
		stock TEXT NOT NULL DEFAULT '{}',
		is_featured INTEGER NOT NULL DEFAULT 0,
		color TEXT,
		material TEXT,
		pattern TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE product_variants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL,
		color TEXT NOT NULL DEFAULT 'Único',
		size TEXT NOT NULL DEFAULT 'Único',
		stock_quantity INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE,
		UNIQUE (product_id, color, size)
	);

	CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		total_amount REAL NOT NULL DEFAULT 0,
		payment_method TEXT,
		installments INTEGER NOT NULL DEFAULT 1,
		mp_payment_id TEXT,
		payment_code TEXT,
		payment_url TEXT,
		payment_expiration TEXT,
		payer TEXT,
		shipping_service TEXT,
		shipping_amount REAL,
		melhor_envio_order_id TEXT,
		tracking_code TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES profiles (id)
	);

	CREATE TABLE order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		product_id INTEGER NOT NULL,
		product_name TEXT NOT NULL,
		image_url TEXT,
		quantity INTEGER NOT NULL,
		price REAL NOT NULL,
		price_at_purchase REAL NOT NULL,
		color TEXT,
		size TEXT,
		FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE
	);

	CREATE TABLE vouchers (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		amount REAL NOT NULL,
		order_id TEXT,
		valid_until DATETIME NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE SET NULL
	);

	CREATE TABLE order_refunds (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		request_type TEXT NOT NULL CHECK (request_type IN ('customer', 'backoffice')),
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'refunded', 'rejected')),
		amount REAL NOT NULL,
		order_item_ids TEXT NOT NULL DEFAULT '[]',
		refund_method TEXT,
		mp_refund_id TEXT,
		voucher_id TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE
	);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to create schema: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.RemoveAll(tmpDir)
	}

	return db, cleanup
}

// testLogger returns a quiet logger for tests
func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func stringPtr(s string) *string {
	return &s
}

func rolePtr(r models.Role) *models.Role {
	return &r
}

func float64Ptr(f float64) *float64 {
	return &f
}
