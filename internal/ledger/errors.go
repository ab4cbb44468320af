package ledger

import (
	"errors"
	"fmt"

	"github.com/sheikh-saqib/banking-ledger/internal/storage"
)

var (
	ErrAccountNotFound     = storage.ErrAccountNotFound
	ErrTransactionNotFound = storage.ErrTransactionNotFound
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrSameAccount         = errors.New("cannot transfer to the same account")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrBalanceOverflow     = errors.New("balance out of range")
	ErrOwnerRequired       = errors.New("owner id is required")
	ErrStorage             = errors.New("storage failure")
)

// AccountNotFoundError names the account a ledger operation could not find.
type AccountNotFoundError struct {
	AccountID string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found", e.AccountID)
}

func (e *AccountNotFoundError) Unwrap() error { return ErrAccountNotFound }

// TransactionNotFoundError is returned for a missing transaction and for one
// whose entries cannot be turned into a view.
type TransactionNotFoundError struct {
	TransactionID string
}

func (e *TransactionNotFoundError) Error() string {
	return fmt.Sprintf("transaction %s not found", e.TransactionID)
}

func (e *TransactionNotFoundError) Unwrap() error { return ErrTransactionNotFound }

type InsufficientFundsError struct {
	AccountID string
	Balance   int64
	Amount    int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in account %s: balance %d, amount %d", e.AccountID, e.Balance, e.Amount)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// BalanceOverflowError is returned when applying Delta would take the balance
// outside the int64 range.
type BalanceOverflowError struct {
	AccountID string
	Balance   int64
	Delta     int64
}

func (e *BalanceOverflowError) Error() string {
	return fmt.Sprintf("balance of account %s out of range: balance %d, change %d", e.AccountID, e.Balance, e.Delta)
}

func (e *BalanceOverflowError) Unwrap() error { return ErrBalanceOverflow }

// StorageError wraps a backend failure. The unit of work it happened in has
// been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
