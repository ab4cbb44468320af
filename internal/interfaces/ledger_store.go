package interfaces

import (
	"context"

	"github.com/sheikh-saqib/banking-ledger/internal/models"
)

// AccountStore is read access to accounts outside of a unit of work.
type AccountStore interface {
	GetAccount(ctx context.Context, accountID string) (models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
}

// UnitOfWork groups account and ledger writes that commit or roll back together.
// Nothing written through it is visible to other readers before Commit.
type UnitOfWork interface {
	// LockAccount loads an account and holds it against concurrent writers until
	// the unit of work ends.
	LockAccount(ctx context.Context, accountID string) (models.Account, error)
	ApplyBalanceDelta(ctx context.Context, accountID string, delta int64) (models.Account, error)
	InsertTransaction(ctx context.Context, tx models.Transaction) error
	InsertEntry(ctx context.Context, entry models.LedgerEntry) error
	Commit() error
	// Rollback is safe to call after Commit; it is then a no-op.
	Rollback() error
}

// LedgerStore is the append-only transaction and entry log.
type LedgerStore interface {
	Begin(ctx context.Context) (UnitOfWork, error)
	QueryTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionRecord, error)
	GetTransaction(ctx context.Context, transactionID string) (models.TransactionRecord, error)
	// Categories returns the distinct categories of transactions touching the owner's accounts.
	Categories(ctx context.Context, ownerID string) ([]string, error)
	// EntrySums returns the signed entry total per account id.
	EntrySums(ctx context.Context) (map[string]int64, error)
}
