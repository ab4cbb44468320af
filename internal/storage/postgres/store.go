package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	interfaces "github.com/sheikh-saqib/banking-ledger/internal/interfaces" // interfaces LedgerStore, AccountStore
	"github.com/sheikh-saqib/banking-ledger/internal/models"
	"github.com/sheikh-saqib/banking-ledger/internal/storage"
)

type PostgresLedgerStore struct {
	db *sql.DB
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db: db,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

const accountColumns = `id, owner_id, balance, opening_balance`

func scanAccount(row scanner) (models.Account, error) {
	var a models.Account
	if err := row.Scan(&a.ID, &a.OwnerID, &a.Balance, &a.OpeningBalance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, storage.ErrAccountNotFound
		}
		return models.Account{}, err
	}
	return a, nil
}

func (p *PostgresLedgerStore) GetAccount(ctx context.Context, accountID string) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(p.db.QueryRowContext(ctx, query, accountID))
}

// AddAccount inserts an account unless one with the same id exists.
// OpeningBalance is taken from Balance when unset.
func (p *PostgresLedgerStore) AddAccount(ctx context.Context, account models.Account) error {
	const query = `INSERT INTO accounts (` + accountColumns + `) VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO NOTHING`

	if account.OpeningBalance == 0 {
		account.OpeningBalance = account.Balance
	}
	_, err := p.db.ExecContext(ctx, query, account.ID, account.OwnerID, account.Balance, account.OpeningBalance)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (p *PostgresLedgerStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts ORDER BY id`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (p *PostgresLedgerStore) Begin(ctx context.Context) (interfaces.UnitOfWork, error) {
	dbTx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &unitOfWork{tx: dbTx}, nil
}

func (p *PostgresLedgerStore) QueryTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionRecord, error) {
	const query = `
		SELECT t.id, t.type, t.description, t.category, t.created_at
		FROM transactions t
		WHERE ($1::text = '' OR EXISTS (
				SELECT 1 FROM entries e JOIN accounts a ON a.id = e.account_id
				WHERE e.transaction_id = t.id AND a.owner_id = $1))
		  AND ($2::text = '' OR EXISTS (
				SELECT 1 FROM entries e WHERE e.transaction_id = t.id AND e.account_id = $2))
		  AND ($3::timestamptz IS NULL OR t.created_at >= $3)
		  AND ($4::timestamptz IS NULL OR t.created_at <= $4)
		  AND (cardinality($5::text[]) = 0 OR t.type = ANY($5::text[]))
		ORDER BY t.created_at DESC, t.id DESC
	`
	types := make([]string, 0, len(filter.Types))
	for _, t := range filter.Types {
		types = append(types, string(t))
	}

	rows, err := p.db.QueryContext(ctx, query,
		filter.OwnerID, filter.AccountID,
		nullTime(filter.From), nullTime(filter.To),
		pq.Array(types),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var records []models.TransactionRecord
	var ids []string
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		records = append(records, models.TransactionRecord{Transaction: tx})
		ids = append(ids, tx.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	entries, err := p.entriesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Entries = entries[records[i].Transaction.ID]
	}
	return records, nil
}

func (p *PostgresLedgerStore) GetTransaction(ctx context.Context, transactionID string) (models.TransactionRecord, error) {
	const query = `SELECT id, type, description, category, created_at FROM transactions WHERE id = $1`

	tx, err := scanTransaction(p.db.QueryRowContext(ctx, query, transactionID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.TransactionRecord{}, storage.ErrTransactionNotFound
	}
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("failed to get transaction: %w", err)
	}

	entries, err := p.entriesFor(ctx, []string{transactionID})
	if err != nil {
		return models.TransactionRecord{}, err
	}
	return models.TransactionRecord{Transaction: tx, Entries: entries[transactionID]}, nil
}

func (p *PostgresLedgerStore) Categories(ctx context.Context, ownerID string) ([]string, error) {
	const query = `
		SELECT DISTINCT t.category
		FROM transactions t
		JOIN entries e ON e.transaction_id = t.id
		JOIN accounts a ON a.id = e.account_id
		WHERE a.owner_id = $1
		ORDER BY t.category
	`
	rows, err := p.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (p *PostgresLedgerStore) EntrySums(ctx context.Context) (map[string]int64, error) {
	const query = `
		SELECT account_id,
		       SUM(CASE WHEN entry_type = 'credit' THEN amount ELSE -amount END)::bigint
		FROM entries
		GROUP BY account_id
	`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to sum entries: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]int64)
	for rows.Next() {
		var accountID string
		var sum int64
		if err := rows.Scan(&accountID, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan entry sum: %w", err)
		}
		sums[accountID] = sum
	}
	return sums, rows.Err()
}

func (p *PostgresLedgerStore) entriesFor(ctx context.Context, transactionIDs []string) (map[string][]models.LedgerEntry, error) {
	const query = `
		SELECT id, transaction_id, account_id, amount, entry_type
		FROM entries
		WHERE transaction_id = ANY($1::text[])
		ORDER BY transaction_id, id
	`
	rows, err := p.db.QueryContext(ctx, query, pq.Array(transactionIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[string][]models.LedgerEntry, len(transactionIDs))
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountID, &e.Amount, &e.Type); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries[e.TransactionID] = append(entries[e.TransactionID], e)
	}
	return entries, rows.Err()
}

func scanTransaction(row scanner) (models.Transaction, error) {
	var tx models.Transaction
	var description sql.NullString
	if err := row.Scan(&tx.ID, &tx.Type, &description, &tx.Category, &tx.CreatedAt); err != nil {
		return models.Transaction{}, err
	}
	if description.Valid {
		tx.Description = description.String
	}
	tx.CreatedAt = tx.CreatedAt.UTC()
	return tx, nil
}

// unitOfWork is a single database transaction. Accounts read through
// LockAccount stay row-locked until Commit or Rollback.
type unitOfWork struct {
	tx *sql.Tx
}

func (u *unitOfWork) LockAccount(ctx context.Context, accountID string) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return scanAccount(u.tx.QueryRowContext(ctx, query, accountID))
}

func (u *unitOfWork) ApplyBalanceDelta(ctx context.Context, accountID string, delta int64) (models.Account, error) {
	const query = `UPDATE accounts SET balance = balance + $1 WHERE id = $2 RETURNING ` + accountColumns
	return scanAccount(u.tx.QueryRowContext(ctx, query, delta, accountID))
}

func (u *unitOfWork) InsertTransaction(ctx context.Context, tx models.Transaction) error {
	const query = `INSERT INTO transactions (id, type, description, category, created_at)
	VALUES ($1, $2, $3, $4, $5)`

	_, err := u.tx.ExecContext(ctx, query, tx.ID, string(tx.Type), nullString(tx.Description), tx.Category, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (u *unitOfWork) InsertEntry(ctx context.Context, entry models.LedgerEntry) error {
	const query = `INSERT INTO entries (id, transaction_id, account_id, amount, entry_type)
	VALUES ($1, $2, $3, $4, $5)`

	_, err := u.tx.ExecContext(ctx, query, entry.ID, entry.TransactionID, entry.AccountID, entry.Amount, string(entry.Type))
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (u *unitOfWork) Commit() error {
	if err := u.tx.Commit(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return storage.ErrUnitOfWorkClosed
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (u *unitOfWork) Rollback() error {
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var (
	_ interfaces.LedgerStore  = (*PostgresLedgerStore)(nil)
	_ interfaces.AccountStore = (*PostgresLedgerStore)(nil)
)
