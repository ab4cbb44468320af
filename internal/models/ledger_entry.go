package models

// EntryType is the polarity of a ledger entry.
type EntryType string

const (
	// EntryDebit decreases the referenced account's balance.
	EntryDebit EntryType = "debit"
	// EntryCredit increases the referenced account's balance.
	EntryCredit EntryType = "credit"
)

func (e EntryType) Valid() bool {
	return e == EntryDebit || e == EntryCredit
}

// LedgerEntry represents a single ledger record for an account
type LedgerEntry struct {
	ID            string    // <transaction id>-debit or <transaction id>-credit
	TransactionID string    // owning transaction
	AccountID     string    // which account this entry belongs to
	Amount        int64     // always positive, smallest currency unit
	Type          EntryType // debit or credit
}

// Signed returns the entry's effect on its account's balance.
func (e LedgerEntry) Signed() int64 {
	if e.Type == EntryDebit {
		return -e.Amount
	}
	return e.Amount
}
