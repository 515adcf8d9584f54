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
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createLicenseTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE licenses (
		id TEXT PRIMARY KEY,
		license_key TEXT NOT NULL UNIQUE,
		product_name TEXT NOT NULL,
		customer_email TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		activation_limit INTEGER NOT NULL DEFAULT 1,
		activations INTEGER NOT NULL DEFAULT 0,
		expires DATETIME,
		transfer_limit INTEGER NOT NULL DEFAULT 1,
		domain_locked BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE key_checksums (
		id TEXT PRIMARY KEY,
		license_key TEXT NOT NULL UNIQUE,
		checksum TEXT NOT NULL,
		created_at DATETIME
	);`)
}

func createActivationTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE activations (
		id TEXT PRIMARY KEY,
		license_id TEXT NOT NULL,
		site_url TEXT NOT NULL,
		activated_at DATETIME NOT NULL,
		last_check DATETIME,
		transfer_count INTEGER NOT NULL DEFAULT 0,
		last_transfer_date DATETIME
	);`)
	mustExec(t, db, `CREATE UNIQUE INDEX idx_activations_license_site ON activations(license_id, site_url);`)
	mustExec(t, db, `CREATE UNIQUE INDEX idx_activations_site ON activations(site_url);`)
}

func createAuthAttemptTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE auth_attempts (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		ip_address TEXT NOT NULL,
		user_agent TEXT,
		status TEXT NOT NULL,
		attempt_time DATETIME NOT NULL
	);`)
}

func createApiCredentialTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE api_credentials (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		key_prefix TEXT NOT NULL,
		key_hash TEXT NOT NULL UNIQUE,
		secret_masked TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		usage_count INTEGER NOT NULL DEFAULT 0,
		last_used_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}
