package catalog

import "errors"

var (
	ErrItemNotFound      = errors.New("catalog item not found")
	ErrInvalidItemKind   = errors.New("invalid item kind")
	ErrInvalidStock      = errors.New("invalid stock value")
	ErrInsufficientStock = errors.New("insufficient stock")
)
