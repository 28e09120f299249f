package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/database"
	"github.com/aristath/investai/internal/domain"
)

// transactionColumns joins the asset so callers get ticker and category.
// Column order must match scanTransaction.
const transactionColumns = `t.id, t.user_id, t.asset_id, a.ticker, a.category, t.type, t.quantity, t.price, t.date`

// TransactionRepository handles transaction database operations.
// It implements domain.TransactionStore.
type TransactionRepository struct {
	db      *sql.DB
	dialect database.Dialect
	log     zerolog.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *sql.DB, dialect database.Dialect, log zerolog.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:      db,
		dialect: dialect,
		log:     log.With().Str("repo", "transaction").Logger(),
	}
}

// Create inserts a transaction and fills in its ID
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	if tx.Date.IsZero() {
		tx.Date = time.Now().UTC()
	}

	query := database.Rebind(r.dialect, `
		INSERT INTO transactions (user_id, asset_id, type, quantity, price, date)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		tx.UserID,
		tx.AssetID,
		string(tx.Kind),
		tx.Quantity,
		tx.Price,
		tx.Date.Unix(),
	).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	r.log.Info().
		Int64("user_id", tx.UserID).
		Int64("asset_id", tx.AssetID).
		Str("type", string(tx.Kind)).
		Str("quantity", tx.Quantity.String()).
		Msg("Transaction recorded")

	return nil
}

// ListTransactions returns every transaction of a user in insertion order
func (r *TransactionRepository) ListTransactions(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	query := database.Rebind(r.dialect, `
		SELECT `+transactionColumns+`
		FROM transactions t
		JOIN assets a ON a.id = t.asset_id
		WHERE t.user_id = ?
		ORDER BY t.id`)
	return r.query(ctx, query, userID)
}

// ListHistory returns a user's most recent transactions first.
// limit <= 0 returns everything.
func (r *TransactionRepository) ListHistory(ctx context.Context, userID int64, limit int) ([]domain.Transaction, error) {
	q := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN assets a ON a.id = t.asset_id
		WHERE t.user_id = ?
		ORDER BY t.date DESC, t.id DESC`
	args := []interface{}{userID}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	return r.query(ctx, database.Rebind(r.dialect, q), args...)
}

func (r *TransactionRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}

func scanTransaction(rows *sql.Rows) (domain.Transaction, error) {
	var (
		tx   domain.Transaction
		kind string
		date int64
	)
	err := rows.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.AssetID,
		&tx.Ticker,
		&tx.Category,
		&kind,
		&tx.Quantity,
		&tx.Price,
		&date,
	)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}
	tx.Kind = domain.TransactionKind(kind)
	tx.Date = time.Unix(date, 0).UTC()
	return tx, nil
}
