package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createAccountTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE accounts (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		mobile TEXT NOT NULL,
		business_name TEXT NOT NULL,
		business_location TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		is_verified BOOLEAN NOT NULL DEFAULT 0,
		verification_token_hash TEXT UNIQUE,
		verification_expires_at DATETIME,
		reset_token_hash TEXT UNIQUE,
		reset_expires_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createPackageTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE packages (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		account_id TEXT NOT NULL,
		pickup_address TEXT NOT NULL,
		pickup_contact_number TEXT NOT NULL,
		pickup_country TEXT NOT NULL,
		pickup_state TEXT NOT NULL,
		pickup_city TEXT NOT NULL,
		delivery_address TEXT NOT NULL,
		delivery_contact_number TEXT NOT NULL,
		delivery_country TEXT NOT NULL,
		delivery_state TEXT NOT NULL,
		delivery_city TEXT NOT NULL,
		description TEXT NOT NULL,
		weight_kg REAL NOT NULL,
		has_package_discount BOOLEAN NOT NULL DEFAULT 0,
		price INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		payment_status TEXT NOT NULL DEFAULT 'unpaid',
		payment_reference TEXT UNIQUE,
		paid_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}
