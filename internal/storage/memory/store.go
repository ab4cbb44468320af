package memory

import (
	"context" // standard Go package for request-scoped context (timeouts, cancellation)
	"fmt"
	"sort"
	"sync" // standard Go package for concurrency primitives like Mutex

	interfaces "github.com/sheikh-saqib/banking-ledger/internal/interfaces" // interfaces AccountStore, LedgerStore
	"github.com/sheikh-saqib/banking-ledger/internal/models"                // domain models
	"github.com/sheikh-saqib/banking-ledger/internal/storage"
)

// MemoryLedgerStore is an in-memory implementation of interfaces.LedgerStore and
// interfaces.AccountStore. Writes go through a unit of work and only become
// visible when it commits.
type MemoryLedgerStore struct {
	mu           sync.RWMutex                   // protects everything below
	accounts     map[string]models.Account      // account id -> account
	transactions map[string]models.Transaction  // transaction id -> transaction
	order        []string                       // transaction ids in insertion order
	entries      map[string][]models.LedgerEntry // transaction id -> entries
}

// NewMemoryLedgerStore creates and returns a new MemoryLedgerStore instance
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		accounts:     make(map[string]models.Account),
		transactions: make(map[string]models.Transaction),
		entries:      make(map[string][]models.LedgerEntry),
	}
}

// AddAccount registers an account. Account lifecycle is owned outside the
// ledger, so this is how a memory-backed deployment or a test seeds accounts.
// OpeningBalance is taken from Balance when unset.
func (m *MemoryLedgerStore) AddAccount(account models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[account.ID]; exists {
		return fmt.Errorf("account %s already exists", account.ID)
	}
	if account.OpeningBalance == 0 {
		account.OpeningBalance = account.Balance
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MemoryLedgerStore) GetAccount(ctx context.Context, accountID string) (models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[accountID]
	if !ok {
		return models.Account{}, storage.ErrAccountNotFound
	}
	return account, nil
}

func (m *MemoryLedgerStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	accounts := make([]models.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// Begin opens a unit of work. It takes no lock: writers are serialized per
// account by the ledger, and staged balance changes are applied as deltas.
func (m *MemoryLedgerStore) Begin(ctx context.Context) (interfaces.UnitOfWork, error) {
	return &unitOfWork{store: m, deltas: make(map[string]int64)}, nil
}

// QueryTransactions returns copies of the matching records, oldest first.
func (m *MemoryLedgerStore) QueryTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []models.TransactionRecord
	for _, id := range m.order {
		rec := m.recordLocked(id)
		if filter.OwnerID != "" && !m.touchesOwnerLocked(rec, filter.OwnerID) {
			continue
		}
		if !filter.Matches(rec) {
			continue
		}
		result = append(result, rec)
	}
	return result, nil
}

func (m *MemoryLedgerStore) GetTransaction(ctx context.Context, transactionID string) (models.TransactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.transactions[transactionID]; !ok {
		return models.TransactionRecord{}, storage.ErrTransactionNotFound
	}
	return m.recordLocked(transactionID), nil
}

func (m *MemoryLedgerStore) Categories(ctx context.Context, ownerID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	var categories []string
	for _, id := range m.order {
		rec := m.recordLocked(id)
		if !m.touchesOwnerLocked(rec, ownerID) {
			continue
		}
		if _, dup := seen[rec.Transaction.Category]; dup {
			continue
		}
		seen[rec.Transaction.Category] = struct{}{}
		categories = append(categories, rec.Transaction.Category)
	}
	return categories, nil
}

func (m *MemoryLedgerStore) EntrySums(ctx context.Context) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sums := make(map[string]int64)
	for _, entries := range m.entries {
		for _, e := range entries {
			sums[e.AccountID] += e.Signed()
		}
	}
	return sums, nil
}

// recordLocked copies a transaction and its entries so callers can't modify internal state.
func (m *MemoryLedgerStore) recordLocked(id string) models.TransactionRecord {
	entries := make([]models.LedgerEntry, len(m.entries[id]))
	copy(entries, m.entries[id])
	return models.TransactionRecord{Transaction: m.transactions[id], Entries: entries}
}

func (m *MemoryLedgerStore) touchesOwnerLocked(rec models.TransactionRecord, ownerID string) bool {
	for _, e := range rec.Entries {
		if m.accounts[e.AccountID].OwnerID == ownerID {
			return true
		}
	}
	return false
}

// unitOfWork stages writes until Commit applies them under the store mutex.
type unitOfWork struct {
	store        *MemoryLedgerStore
	deltas       map[string]int64
	transactions []models.Transaction
	entries      []models.LedgerEntry
	closed       bool
}

func (u *unitOfWork) LockAccount(ctx context.Context, accountID string) (models.Account, error) {
	if u.closed {
		return models.Account{}, storage.ErrUnitOfWorkClosed
	}
	account, err := u.store.GetAccount(ctx, accountID)
	if err != nil {
		return models.Account{}, err
	}
	account.Balance += u.deltas[accountID]
	return account, nil
}

func (u *unitOfWork) ApplyBalanceDelta(ctx context.Context, accountID string, delta int64) (models.Account, error) {
	if u.closed {
		return models.Account{}, storage.ErrUnitOfWorkClosed
	}
	account, err := u.store.GetAccount(ctx, accountID)
	if err != nil {
		return models.Account{}, err
	}
	u.deltas[accountID] += delta
	account.Balance += u.deltas[accountID]
	return account, nil
}

func (u *unitOfWork) InsertTransaction(ctx context.Context, tx models.Transaction) error {
	if u.closed {
		return storage.ErrUnitOfWorkClosed
	}
	u.transactions = append(u.transactions, tx)
	return nil
}

func (u *unitOfWork) InsertEntry(ctx context.Context, entry models.LedgerEntry) error {
	if u.closed {
		return storage.ErrUnitOfWorkClosed
	}
	u.entries = append(u.entries, entry)
	return nil
}

func (u *unitOfWork) Commit() error {
	if u.closed {
		return storage.ErrUnitOfWorkClosed
	}
	u.closed = true

	m := u.store
	m.mu.Lock()
	defer m.mu.Unlock()

	// validate everything before touching state so a failed commit changes nothing
	for id := range u.deltas {
		if _, ok := m.accounts[id]; !ok {
			return storage.ErrAccountNotFound
		}
	}
	for _, tx := range u.transactions {
		if _, dup := m.transactions[tx.ID]; dup {
			return fmt.Errorf("transaction %s already exists", tx.ID)
		}
	}

	for id, delta := range u.deltas {
		account := m.accounts[id]
		account.Balance += delta
		m.accounts[id] = account
	}
	for _, tx := range u.transactions {
		m.transactions[tx.ID] = tx
		m.order = append(m.order, tx.ID)
	}
	for _, e := range u.entries {
		m.entries[e.TransactionID] = append(m.entries[e.TransactionID], e)
	}
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.closed {
		return nil
	}
	u.closed = true
	u.deltas = nil
	u.transactions = nil
	u.entries = nil
	return nil
}

// Compile-time check: ensure MemoryLedgerStore implements the store interfaces
var (
	_ interfaces.LedgerStore  = (*MemoryLedgerStore)(nil)
	_ interfaces.AccountStore = (*MemoryLedgerStore)(nil)
)
