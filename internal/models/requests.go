package models

import "time"

// WithdrawRequest moves Amount out of AccountID.
type WithdrawRequest struct {
	AccountID   string `json:"account_id" validate:"required"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Description string `json:"description,omitempty" validate:"max=255"`
	Category    string `json:"category,omitempty" validate:"max=64"`
}

// DepositRequest moves Amount into AccountID.
type DepositRequest struct {
	AccountID   string `json:"account_id" validate:"required"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Description string `json:"description,omitempty" validate:"max=255"`
	Category    string `json:"category,omitempty" validate:"max=64"`
}

// TransferRequest moves Amount from AccountID to RecipientAccountID.
type TransferRequest struct {
	AccountID          string `json:"account_id" validate:"required"`
	RecipientAccountID string `json:"recipient_account_id" validate:"required,nefield=AccountID"`
	Amount             int64  `json:"amount" validate:"required,gt=0"`
	Description        string `json:"description,omitempty" validate:"max=255"`
	Category           string `json:"category,omitempty" validate:"max=64"`
}

// TransactionQuery narrows a transaction listing. Zero values mean "no restriction".
type TransactionQuery struct {
	AccountID       string            `json:"account_id,omitempty"`
	RangeFrom       *time.Time        `json:"range_from,omitempty"`
	RangeTo         *time.Time        `json:"range_to,omitempty"`
	TransactionType []TransactionType `json:"transaction_type,omitempty"`
}

// TransactionFilter is what a LedgerStore evaluates: a TransactionQuery scoped to an owner.
type TransactionFilter struct {
	OwnerID   string
	AccountID string
	From      *time.Time
	To        *time.Time
	Types     []TransactionType
}

// Matches reports whether rec satisfies every restriction except owner scoping,
// which needs account ownership and is left to the store.
func (f TransactionFilter) Matches(rec TransactionRecord) bool {
	tx := rec.Transaction
	if f.From != nil && tx.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && tx.CreatedAt.After(*f.To) {
		return false
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if t == tx.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.AccountID != "" {
		for _, e := range rec.Entries {
			if e.AccountID == f.AccountID {
				return true
			}
		}
		return false
	}
	return true
}
