// Package storage holds what every ledger backend shares.
package storage

import "errors"

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUnitOfWorkClosed    = errors.New("unit of work already committed or rolled back")
)
