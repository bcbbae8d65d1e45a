package shop

import "errors"

var (
	// ErrShopNotFound is returned when a shop does not exist for the given
	// ID or slug.
	ErrShopNotFound = errors.New("shop not found")
	// ErrInvalidCredentials is returned when a login/password pair does not
	// match a shop account.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
