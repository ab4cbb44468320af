package models

// Account is the balance-carrying side of the ledger. Accounts are created and
// destroyed elsewhere; the ledger only mutates Balance.
type Account struct {
	ID             string
	OwnerID        string
	Balance        int64
	OpeningBalance int64
}
