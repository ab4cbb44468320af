package models

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType is the kind of money movement a Transaction records.
type TransactionType string

const (
	TransactionWithdraw TransactionType = "withdraw"
	TransactionDeposit  TransactionType = "deposit"
	TransactionTransfer TransactionType = "transfer"
)

// DefaultCategory is stored when a request carries no category.
const DefaultCategory = "uncategorized"

// TransactionTypes lists every valid TransactionType.
var TransactionTypes = []TransactionType{TransactionWithdraw, TransactionDeposit, TransactionTransfer}

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionWithdraw, TransactionDeposit, TransactionTransfer:
		return true
	}
	return false
}

// EntryCount is the number of entries a well-formed transaction of this type carries.
func (t TransactionType) EntryCount() int {
	if t == TransactionTransfer {
		return 2
	}
	return 1
}

// ParseTransactionType parses a single type name.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown transaction type %q, want one of %v", s, TransactionTypes)
	}
	return t, nil
}

// ParseTransactionTypes parses a comma separated list such as "transfer,deposit".
// An empty string yields an empty set, which means no type restriction.
func ParseTransactionTypes(s string) ([]TransactionType, error) {
	var types []TransactionType
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := ParseTransactionType(part)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// Transaction is the immutable header of a ledger posting.
type Transaction struct {
	ID          string
	Type        TransactionType
	Description string
	Category    string
	CreatedAt   time.Time
}

// TransactionRecord is a Transaction together with its entries, as read back from a store.
type TransactionRecord struct {
	Transaction Transaction
	Entries     []LedgerEntry
}
