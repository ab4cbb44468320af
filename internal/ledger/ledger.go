package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	interfaces "github.com/sheikh-saqib/banking-ledger/internal/interfaces"
	"github.com/sheikh-saqib/banking-ledger/internal/models"
	"github.com/sheikh-saqib/banking-ledger/internal/models/events"
	"github.com/sheikh-saqib/banking-ledger/internal/storage"
)

// Ledger records withdrawals, deposits and transfers as double-entry postings
// and answers queries over them.
// It holds the storage layer and a mutex per account for concurrency control.
type Ledger struct {
	store     interfaces.LedgerStore
	accounts  interfaces.AccountStore
	publisher interfaces.EventPublisher // optional
	cache     interfaces.ViewCache      // optional
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	overdraft bool // reject debits that would take a balance below zero

	muMap map[string]*accountLock // lock per account id, dropped when no posting holds or waits on it
	mapMu sync.Mutex              // protects the muMap itself
}

type accountLock struct {
	mu   sync.Mutex
	refs int // postings holding or waiting on mu; guarded by Ledger.mapMu
}

type Option func(*Ledger)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithPublisher publishes a TransactionCompleted event after every commit.
func WithPublisher(p interfaces.EventPublisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

func WithViewCache(c interfaces.ViewCache) Option {
	return func(l *Ledger) { l.cache = c }
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// WithOverdraftProtection rejects withdrawals and transfers that would leave
// the debited account with a negative balance.
func WithOverdraftProtection(enabled bool) Option {
	return func(l *Ledger) { l.overdraft = enabled }
}

// NewLedger creates a Ledger over a ledger store and the account store that
// backs it (usually the same value).
func NewLedger(store interfaces.LedgerStore, accounts interfaces.AccountStore, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		accounts: accounts,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }, // storage keeps microseconds
		newID:    func() string { return uuid.New().String() },
		muMap:    make(map[string]*accountLock),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// acquireAccountLock returns the account's lock with a reference taken, so it
// stays in muMap until the matching releaseAccountLock.
func (l *Ledger) acquireAccountLock(accountID string) *accountLock {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	lock, exists := l.muMap[accountID]
	if !exists {
		lock = &accountLock{}
		l.muMap[accountID] = lock
	}
	lock.refs++
	return lock
}

func (l *Ledger) releaseAccountLock(accountID string, lock *accountLock) {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	lock.refs--
	if lock.refs == 0 {
		delete(l.muMap, accountID)
	}
}

// lockAccounts locks every given account in ascending id order to avoid
// deadlocks, and returns the matching unlock.
func (l *Ledger) lockAccounts(ids ...string) func() {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	type held struct {
		id   string
		lock *accountLock
	}
	locked := make([]held, 0, len(sorted))
	for i, id := range sorted {
		if i > 0 && sorted[i-1] == id {
			continue
		}
		lock := l.acquireAccountLock(id)
		lock.mu.Lock()
		locked = append(locked, held{id: id, lock: lock})
	}
	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].lock.mu.Unlock()
			l.releaseAccountLock(locked[i].id, locked[i].lock)
		}
	}
}

// leg is one side of a posting: the account it touches and its polarity.
type leg struct {
	accountID string
	entryType models.EntryType
}

type posting struct {
	txType      models.TransactionType
	legs        []leg // debit leg first for transfers
	amount      int64
	description string
	category    string
}

// Withdraw takes amount out of an account with a single debit entry.
func (l *Ledger) Withdraw(ctx context.Context, req models.WithdrawRequest) (models.TransactionView, error) {
	return l.post(ctx, posting{
		txType:      models.TransactionWithdraw,
		legs:        []leg{{accountID: req.AccountID, entryType: models.EntryDebit}},
		amount:      req.Amount,
		description: req.Description,
		category:    req.Category,
	})
}

// Deposit puts amount into an account with a single credit entry.
func (l *Ledger) Deposit(ctx context.Context, req models.DepositRequest) (models.TransactionView, error) {
	return l.post(ctx, posting{
		txType:      models.TransactionDeposit,
		legs:        []leg{{accountID: req.AccountID, entryType: models.EntryCredit}},
		amount:      req.Amount,
		description: req.Description,
		category:    req.Category,
	})
}

// Transfer moves amount from the sender to the recipient: a debit on the
// sender and a credit on the recipient, committed together.
func (l *Ledger) Transfer(ctx context.Context, req models.TransferRequest) (models.TransactionView, error) {
	if req.AccountID == req.RecipientAccountID {
		return models.TransactionView{}, ErrSameAccount
	}
	return l.post(ctx, posting{
		txType: models.TransactionTransfer,
		legs: []leg{
			{accountID: req.AccountID, entryType: models.EntryDebit},
			{accountID: req.RecipientAccountID, entryType: models.EntryCredit},
		},
		amount:      req.Amount,
		description: req.Description,
		category:    req.Category,
	})
}

// post writes a posting's balance changes, transaction and entries in one unit
// of work. Either all of it commits or none of it does.
func (l *Ledger) post(ctx context.Context, p posting) (view models.TransactionView, err error) {
	if p.amount <= 0 {
		return models.TransactionView{}, ErrInvalidAmount
	}
	if p.category == "" {
		p.category = models.DefaultCategory
	}

	ids := make([]string, len(p.legs))
	for i, lg := range p.legs {
		ids[i] = lg.accountID
	}
	unlock := l.lockAccounts(ids...)
	defer unlock()

	uow, err := l.store.Begin(ctx)
	if err != nil {
		return models.TransactionView{}, storageErr("begin unit of work", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := uow.Rollback(); rbErr != nil {
			l.logger.Error("rollback failed", "transaction_type", p.txType, "error", rbErr)
		}
		var se *StorageError
		if errors.As(err, &se) {
			l.logger.Error("ledger posting rolled back", "transaction_type", p.txType, "op", se.Op, "error", se.Err)
		}
	}()

	accounts, err := l.lockLegAccounts(ctx, uow, ids)
	if err != nil {
		return models.TransactionView{}, err
	}

	for _, lg := range p.legs {
		acc := accounts[lg.accountID]
		if lg.entryType == models.EntryDebit {
			if l.overdraft && acc.Balance < p.amount {
				return models.TransactionView{}, &InsufficientFundsError{AccountID: acc.ID, Balance: acc.Balance, Amount: p.amount}
			}
			if acc.Balance < math.MinInt64+p.amount {
				return models.TransactionView{}, &BalanceOverflowError{AccountID: acc.ID, Balance: acc.Balance, Delta: -p.amount}
			}
		} else if acc.Balance > math.MaxInt64-p.amount {
			return models.TransactionView{}, &BalanceOverflowError{AccountID: acc.ID, Balance: acc.Balance, Delta: p.amount}
		}
	}

	for _, lg := range p.legs {
		delta := p.amount
		if lg.entryType == models.EntryDebit {
			delta = -p.amount
		}
		if _, err = uow.ApplyBalanceDelta(ctx, lg.accountID, delta); err != nil {
			if errors.Is(err, storage.ErrAccountNotFound) {
				return models.TransactionView{}, &AccountNotFoundError{AccountID: lg.accountID}
			}
			return models.TransactionView{}, storageErr("apply balance delta", err)
		}
	}

	tx := models.Transaction{
		ID:          l.newID(),
		Type:        p.txType,
		Description: p.description,
		Category:    p.category,
		CreatedAt:   l.now(),
	}
	if err = uow.InsertTransaction(ctx, tx); err != nil {
		return models.TransactionView{}, storageErr("insert transaction", err)
	}

	entries := make([]models.LedgerEntry, 0, len(p.legs))
	for _, lg := range p.legs {
		entry := models.LedgerEntry{
			ID:            tx.ID + "-" + string(lg.entryType),
			TransactionID: tx.ID,
			AccountID:     lg.accountID,
			Amount:        p.amount,
			Type:          lg.entryType,
		}
		if err = uow.InsertEntry(ctx, entry); err != nil {
			return models.TransactionView{}, storageErr("insert entry", err)
		}
		entries = append(entries, entry)
	}

	if err = uow.Commit(); err != nil {
		return models.TransactionView{}, storageErr("commit", err)
	}

	view, err = buildView(models.TransactionRecord{Transaction: tx, Entries: entries})
	if err != nil {
		// entries were built above from legs, so this is a programming error
		return models.TransactionView{}, err
	}
	l.afterCommit(ctx, view)
	return view, nil
}

// lockLegAccounts locks accounts in ascending id order, then reports a missing
// account in leg order so a transfer names the sender before the recipient.
func (l *Ledger) lockLegAccounts(ctx context.Context, uow interfaces.UnitOfWork, ids []string) (map[string]models.Account, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	accounts := make(map[string]models.Account, len(ids))
	missing := make(map[string]bool)
	for _, id := range sorted {
		acc, err := uow.LockAccount(ctx, id)
		if errors.Is(err, storage.ErrAccountNotFound) {
			missing[id] = true
			continue
		}
		if err != nil {
			return nil, storageErr("lock account", err)
		}
		accounts[id] = acc
	}
	for _, id := range ids {
		if missing[id] {
			return nil, &AccountNotFoundError{AccountID: id}
		}
	}
	return accounts, nil
}

// afterCommit warms the view cache and publishes the completion event. Neither
// can undo the commit, so failures are only logged.
func (l *Ledger) afterCommit(ctx context.Context, view models.TransactionView) {
	if l.cache != nil {
		l.cache.Set(ctx, &view)
	}
	if l.publisher == nil {
		return
	}
	event := events.TransactionCompleted{
		TransactionID:   view.ID,
		TransactionType: string(view.TransactionType),
		AccountID:       view.AccountID,
		RecipientID:     view.RecipientID,
		Amount:          events.MajorUnits(view.Amount),
		AmountMinor:     view.Amount,
		Category:        view.Category,
		OccurredAt:      view.Timestamp,
	}
	if err := l.publisher.Publish(ctx, view.ID, event); err != nil {
		l.logger.Warn("failed to publish transaction completed event", "transaction_id", view.ID, "error", err)
	}
}

// GetBalance returns the stored balance of an account.
func (l *Ledger) GetBalance(ctx context.Context, accountID string) (int64, error) {
	acc, err := l.accounts.GetAccount(ctx, accountID)
	if errors.Is(err, storage.ErrAccountNotFound) {
		return 0, &AccountNotFoundError{AccountID: accountID}
	}
	if err != nil {
		return 0, storageErr("get account", err)
	}
	return acc.Balance, nil
}
