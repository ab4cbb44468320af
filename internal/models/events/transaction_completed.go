package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCompleted is published once a ledger posting has committed.
type TransactionCompleted struct {
	TransactionID   string          `json:"transaction_id"`
	TransactionType string          `json:"transaction_type"`
	AccountID       string          `json:"account_id"`
	RecipientID     string          `json:"recipient_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`       // major units
	AmountMinor     int64           `json:"amount_minor"` // smallest currency unit
	Category        string          `json:"category"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// MinorUnitExponent converts minor units to major units (cents to whole currency).
const MinorUnitExponent = -2

// MajorUnits expresses an amount in minor units as a decimal in major units.
func MajorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, MinorUnitExponent)
}
