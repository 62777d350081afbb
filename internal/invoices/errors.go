package invoices

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidPhone = errors.New("invalid phone number")
)
