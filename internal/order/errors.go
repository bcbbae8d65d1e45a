package order

import "errors"

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrAccessDenied           = errors.New("access denied")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrOptimisticLock         = errors.New("order version mismatch")
	ErrCreateOrder            = errors.New("failed to create order")
	ErrCreateOrderItem        = errors.New("failed to create order item")
	ErrFailedToFindOrder      = errors.New("failed to find order")
	ErrFailedToFindOrderItems = errors.New("failed to find order items")
	ErrFailedToFindUserOrders = errors.New("failed to find user orders")
	ErrUpdateOrder            = errors.New("failed to update order")
	ErrTransactionBegin       = errors.New("failed to begin transaction")
	ErrTransactionCommit      = errors.New("failed to commit transaction")
	ErrTransactionRollback    = errors.New("failed to rollback transaction")
)
