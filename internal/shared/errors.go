package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrTradingEnded indicates the entity is closed for transactions.
	ErrTradingEnded = errors.New("trading ended")
)
