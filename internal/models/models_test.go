package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionTypes(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []TransactionType
		wantErr bool
	}{
		{name: "empty means no restriction", in: "", want: nil},
		{name: "single", in: "deposit", want: []TransactionType{TransactionDeposit}},
		{name: "two with spaces", in: "transfer, deposit", want: []TransactionType{TransactionTransfer, TransactionDeposit}},
		{name: "all three", in: "withdraw,transfer,deposit", want: []TransactionType{TransactionWithdraw, TransactionTransfer, TransactionDeposit}},
		{name: "unknown", in: "foo", wantErr: true},
		{name: "unknown among valid", in: "withdraw,foo,deposit", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTransactionTypes(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLedgerEntrySigned(t *testing.T) {
	assert.Equal(t, int64(-50), LedgerEntry{Amount: 50, Type: EntryDebit}.Signed())
	assert.Equal(t, int64(50), LedgerEntry{Amount: 50, Type: EntryCredit}.Signed())
}

func TestTransactionFilterMatches(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	rec := TransactionRecord{
		Transaction: Transaction{ID: "t1", Type: TransactionTransfer, CreatedAt: now},
		Entries: []LedgerEntry{
			{AccountID: "a", Amount: 10, Type: EntryDebit},
			{AccountID: "b", Amount: 10, Type: EntryCredit},
		},
	}

	assert.True(t, TransactionFilter{}.Matches(rec))
	assert.True(t, TransactionFilter{AccountID: "b"}.Matches(rec))
	assert.False(t, TransactionFilter{AccountID: "c"}.Matches(rec))
	assert.True(t, TransactionFilter{From: &now, To: &now}.Matches(rec))
	assert.False(t, TransactionFilter{To: &yesterday}.Matches(rec))
	assert.True(t, TransactionFilter{From: &yesterday}.Matches(rec))
	assert.False(t, TransactionFilter{Types: []TransactionType{TransactionDeposit}}.Matches(rec))
	assert.True(t, TransactionFilter{Types: []TransactionType{TransactionDeposit, TransactionTransfer}}.Matches(rec))
}
