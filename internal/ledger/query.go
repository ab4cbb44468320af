package ledger

import (
	"context"
	"errors"
	"sort"

	"github.com/sheikh-saqib/banking-ledger/internal/models"
	"github.com/sheikh-saqib/banking-ledger/internal/storage"
)

// GetTransactions lists the views of transactions touching the owner's
// accounts, newest first. Records that can't be reconstructed are skipped and
// logged rather than failing the listing.
func (l *Ledger) GetTransactions(ctx context.Context, q models.TransactionQuery, ownerID string) ([]models.TransactionView, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}

	records, err := l.store.QueryTransactions(ctx, models.TransactionFilter{
		OwnerID:   ownerID,
		AccountID: q.AccountID,
		From:      q.RangeFrom,
		To:        q.RangeTo,
		Types:     q.TransactionType,
	})
	if err != nil {
		return nil, storageErr("query transactions", err)
	}

	views := make([]models.TransactionView, 0, len(records))
	for _, rec := range records {
		view, err := buildView(rec)
		if err != nil {
			l.logger.Warn("skipping transaction", "transaction_id", rec.Transaction.ID, "error", err)
			continue
		}
		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].Timestamp.Equal(views[j].Timestamp) {
			return views[i].Timestamp.After(views[j].Timestamp)
		}
		return views[i].ID > views[j].ID
	})
	return views, nil
}

// GetTransaction returns one transaction's view, from the cache when possible.
func (l *Ledger) GetTransaction(ctx context.Context, transactionID string) (models.TransactionView, error) {
	if l.cache != nil {
		if view, ok := l.cache.Get(ctx, transactionID); ok {
			return *view, nil
		}
	}

	rec, err := l.store.GetTransaction(ctx, transactionID)
	if errors.Is(err, storage.ErrTransactionNotFound) {
		return models.TransactionView{}, &TransactionNotFoundError{TransactionID: transactionID}
	}
	if err != nil {
		return models.TransactionView{}, storageErr("get transaction", err)
	}

	view, err := buildView(rec)
	if err != nil {
		l.logger.Warn("unreadable transaction", "transaction_id", transactionID, "error", err)
		return models.TransactionView{}, &TransactionNotFoundError{TransactionID: transactionID}
	}

	if l.cache != nil {
		l.cache.Set(ctx, &view)
	}
	return view, nil
}

// GetCategories returns the distinct categories used by the owner's transactions, sorted.
func (l *Ledger) GetCategories(ctx context.Context, ownerID string) ([]string, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}

	found, err := l.store.Categories(ctx, ownerID)
	if err != nil {
		return nil, storageErr("query categories", err)
	}

	seen := make(map[string]struct{}, len(found))
	categories := make([]string, 0, len(found))
	for _, c := range found {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}
