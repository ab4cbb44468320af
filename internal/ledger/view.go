package ledger

import (
	"errors"
	"fmt"

	"github.com/sheikh-saqib/banking-ledger/internal/models"
)

// errAnomaly marks a stored transaction whose entries don't form a valid view.
var errAnomaly = errors.New("malformed ledger record")

// buildView reconstructs the caller-facing view of a transaction from its entries.
// Single-entry transactions take account and amount from their entry. Transfers
// take them from the debit entry and the recipient from the credit entry.
func buildView(rec models.TransactionRecord) (models.TransactionView, error) {
	tx := rec.Transaction
	view := models.TransactionView{
		ID:              tx.ID,
		TransactionType: tx.Type,
		Timestamp:       tx.CreatedAt,
		Description:     tx.Description,
		Category:        tx.Category,
	}

	if len(rec.Entries) == 0 {
		return models.TransactionView{}, fmt.Errorf("%w: transaction %s has no entries", errAnomaly, tx.ID)
	}
	for _, e := range rec.Entries {
		if !e.Type.Valid() {
			return models.TransactionView{}, fmt.Errorf("%w: entry %s has unknown type %q", errAnomaly, e.ID, e.Type)
		}
	}

	switch tx.Type {
	case models.TransactionWithdraw, models.TransactionDeposit:
		entry := rec.Entries[0]
		view.AccountID = entry.AccountID
		view.Amount = entry.Amount
	case models.TransactionTransfer:
		if len(rec.Entries) < tx.Type.EntryCount() {
			return models.TransactionView{}, fmt.Errorf("%w: transfer %s has %d entries", errAnomaly, tx.ID, len(rec.Entries))
		}
		var debit, credit *models.LedgerEntry
		for i := range rec.Entries {
			switch rec.Entries[i].Type {
			case models.EntryDebit:
				debit = &rec.Entries[i]
			case models.EntryCredit:
				credit = &rec.Entries[i]
			}
		}
		if debit == nil || credit == nil {
			return models.TransactionView{}, fmt.Errorf("%w: transfer %s lacks a debit or credit entry", errAnomaly, tx.ID)
		}
		view.AccountID = debit.AccountID
		view.Amount = debit.Amount
		view.RecipientID = credit.AccountID
	default:
		return models.TransactionView{}, fmt.Errorf("%w: transaction %s has unknown type %q", errAnomaly, tx.ID, tx.Type)
	}
	return view, nil
}
