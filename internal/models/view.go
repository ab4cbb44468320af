package models

import "time"

// TransactionView is the caller-facing projection of a transaction. Transfers are
// keyed from the sender's side with the recipient in RecipientID.
type TransactionView struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Amount          int64           `json:"amount"`
	Timestamp       time.Time       `json:"timestamp"`
	RecipientID     string          `json:"recipient_id,omitempty"`
	Description     string          `json:"description,omitempty"`
	Category        string          `json:"category"`
}
