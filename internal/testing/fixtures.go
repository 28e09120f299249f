package testing

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// InsertUser adds an active user with no password and returns its ID
func InsertUser(t *testing.T, db *sql.DB, email string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(
		`INSERT INTO users (email, full_name, is_active, created_at) VALUES (?, ?, 1, ?) RETURNING id`,
		email, "Test User", time.Now().Unix(),
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// InsertAsset adds an asset and returns its ID
func InsertAsset(t *testing.T, db *sql.DB, ticker, category string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(
		`INSERT INTO assets (ticker, category, name) VALUES (?, ?, ?) RETURNING id`,
		ticker, category, ticker,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// InsertTransaction records a trade with decimal amounts given as strings
func InsertTransaction(t *testing.T, db *sql.DB, userID, assetID int64, kind, qty, price string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(
		`INSERT INTO transactions (user_id, asset_id, type, quantity, price, date) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		userID, assetID, kind, qty, price, time.Now().Unix(),
	).Scan(&id)
	require.NoError(t, err)
	return id
}
