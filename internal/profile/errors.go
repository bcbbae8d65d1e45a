package profile

import "errors"

var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrAddressNotFound     = errors.New("address not found")
	ErrTransactionBegin    = errors.New("failed to begin transaction")
	ErrTransactionCommit   = errors.New("failed to commit transaction")
	ErrTransactionRollback = errors.New("failed to rollback transaction")
)
