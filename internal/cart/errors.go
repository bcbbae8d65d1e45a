package cart

import "errors"

var ErrCartLoad = errors.New("failed to load cart")
var ErrCartSave = errors.New("failed to save cart")
var ErrCartDelete = errors.New("failed to delete cart")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")

var ErrMigrationAborted = errors.New("cart migration aborted")
