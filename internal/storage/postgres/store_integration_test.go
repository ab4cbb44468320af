//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sheikh-saqib/banking-ledger/internal/ledger"
	"github.com/sheikh-saqib/banking-ledger/internal/models"
	"github.com/sheikh-saqib/banking-ledger/internal/storage"
)

func setupDatabase(t *testing.T, driver string) *sql.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, driver, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db), "schema is idempotent")
	return db
}

func seedAccounts(t *testing.T, store *PostgresLedgerStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.AddAccount(ctx, models.Account{ID: "A", OwnerID: "usr-1", Balance: 1000}))
	require.NoError(t, store.AddAccount(ctx, models.Account{ID: "B", OwnerID: "usr-2", Balance: 500}))
	require.NoError(t, store.AddAccount(ctx, models.Account{ID: "C", OwnerID: "usr-1", Balance: 0}))
}

func TestPostgresLedger(t *testing.T) {
	for _, driver := range []string{DriverPQ, DriverPGX} {
		t.Run(driver, func(t *testing.T) {
			db := setupDatabase(t, driver)
			store := NewPostgresLedgerStore(db)
			seedAccounts(t, store)
			l := ledger.NewLedger(store, store)
			ctx := context.Background()

			dep, err := l.Deposit(ctx, models.DepositRequest{AccountID: "A", Amount: 100, Category: "salary"})
			require.NoError(t, err)
			_, err = l.Withdraw(ctx, models.WithdrawRequest{AccountID: "A", Amount: 2000, Description: "rent"})
			require.NoError(t, err)
			tr, err := l.Transfer(ctx, models.TransferRequest{AccountID: "B", RecipientAccountID: "C", Amount: 101})
			require.NoError(t, err)

			bal := func(id string) int64 {
				b, err := l.GetBalance(ctx, id)
				require.NoError(t, err)
				return b
			}
			assert.Equal(t, int64(-900), bal("A"))
			assert.Equal(t, int64(399), bal("B"))
			assert.Equal(t, int64(101), bal("C"))

			got, err := l.GetTransaction(ctx, tr.ID)
			require.NoError(t, err)
			assert.Equal(t, "B", got.AccountID)
			assert.Equal(t, "C", got.RecipientID)
			assert.Equal(t, int64(101), got.Amount)
			assert.True(t, tr.Timestamp.Equal(got.Timestamp))

			views, err := l.GetTransactions(ctx, models.TransactionQuery{
				TransactionType: []models.TransactionType{models.TransactionDeposit},
			}, "usr-1")
			require.NoError(t, err)
			require.Len(t, views, 1)
			assert.Equal(t, dep.ID, views[0].ID)

			views, err = l.GetTransactions(ctx, models.TransactionQuery{}, "usr-1")
			require.NoError(t, err)
			assert.Len(t, views, 3)

			views, err = l.GetTransactions(ctx, models.TransactionQuery{AccountID: "C"}, "usr-1")
			require.NoError(t, err)
			require.Len(t, views, 1)
			assert.Equal(t, tr.ID, views[0].ID)

			cats, err := l.GetCategories(ctx, "usr-1")
			require.NoError(t, err)
			assert.Equal(t, []string{"salary", models.DefaultCategory}, cats)

			_, err = l.Transfer(ctx, models.TransferRequest{AccountID: "A", RecipientAccountID: "missing", Amount: 5})
			var notFound *ledger.AccountNotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, "missing", notFound.AccountID)
			assert.Equal(t, int64(-900), bal("A"))

			discrepancies, err := l.Reconcile(ctx)
			require.NoError(t, err)
			assert.Empty(t, discrepancies)
		})
	}
}

func TestPostgresUnitOfWorkRollback(t *testing.T) {
	db := setupDatabase(t, DriverPQ)
	store := NewPostgresLedgerStore(db)
	seedAccounts(t, store)
	ctx := context.Background()

	uow, err := store.Begin(ctx)
	require.NoError(t, err)
	_, err = uow.ApplyBalanceDelta(ctx, "A", -300)
	require.NoError(t, err)
	require.NoError(t, uow.InsertTransaction(ctx, models.Transaction{ID: "t1", Type: models.TransactionWithdraw, Category: "x", CreatedAt: time.Now()}))
	require.NoError(t, uow.Rollback())
	require.NoError(t, uow.Rollback())
	assert.ErrorIs(t, uow.Commit(), storage.ErrUnitOfWorkClosed)

	acc, err := store.GetAccount(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), acc.Balance)

	_, err = store.GetTransaction(ctx, "t1")
	assert.ErrorIs(t, err, storage.ErrTransactionNotFound)
	_, err = store.GetAccount(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
}

func TestPostgresConcurrentTransfers(t *testing.T) {
	db := setupDatabase(t, DriverPGX)
	store := NewPostgresLedgerStore(db)
	seedAccounts(t, store)
	ctx := context.Background()

	// separate ledgers share no in-process locks, so row locks alone serialize them
	l1 := ledger.NewLedger(store, store)
	l2 := ledger.NewLedger(store, store)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := l1.Transfer(ctx, models.TransferRequest{AccountID: "A", RecipientAccountID: "B", Amount: 3})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := l2.Transfer(ctx, models.TransferRequest{AccountID: "B", RecipientAccountID: "A", Amount: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	a, err := store.GetAccount(ctx, "A")
	require.NoError(t, err)
	b, err := store.GetAccount(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, int64(1000-2*n), a.Balance)
	assert.Equal(t, int64(500+2*n), b.Balance)

	discrepancies, err := l1.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, discrepancies)
}
