package ledger

import "context"

// Discrepancy is an account whose balance movement disagrees with its entries.
type Discrepancy struct {
	AccountID      string `json:"account_id"`
	Balance        int64  `json:"balance"`
	OpeningBalance int64  `json:"opening_balance"`
	EntrySum       int64  `json:"entry_sum"`
}

// Drift is how far the stored balance is from what the entries imply.
func (d Discrepancy) Drift() int64 {
	return d.Balance - d.OpeningBalance - d.EntrySum
}

// Reconcile checks every account against its entries: balance minus opening
// balance must equal the signed sum of the account's entries.
func (l *Ledger) Reconcile(ctx context.Context) ([]Discrepancy, error) {
	accounts, err := l.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, storageErr("list accounts", err)
	}
	sums, err := l.store.EntrySums(ctx)
	if err != nil {
		return nil, storageErr("sum entries", err)
	}

	var out []Discrepancy
	for _, acc := range accounts {
		sum := sums[acc.ID]
		if acc.Balance-acc.OpeningBalance == sum {
			continue
		}
		d := Discrepancy{AccountID: acc.ID, Balance: acc.Balance, OpeningBalance: acc.OpeningBalance, EntrySum: sum}
		l.logger.Warn("balance drift", "account_id", acc.ID, "drift", d.Drift())
		out = append(out, d)
	}
	return out, nil
}
