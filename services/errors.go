package services

import "errors"

var (
	ErrJobNotFound          = errors.New("one or more jobs not found")
	ErrClientNotFound       = errors.New("client not found")
	ErrItemNotFound         = errors.New("inventory item not found")
	ErrInsufficientStock    = errors.New("insufficient stock quantity")
	ErrStockChanged         = errors.New("stock level changed, retry the movement")
	ErrInvalidMovement      = errors.New("invalid movement type")
	ErrDuplicateSKU         = errors.New("SKU already exists")
	ErrInvoiceNotPending    = errors.New("only pending invoices can be deleted")
	ErrInvoiceAlreadyPaid   = errors.New("invoice already paid")
	ErrActiveTimeEntry      = errors.New("a time entry is already running")
	ErrPaymentRejected      = errors.New("payment was not approved")
	ErrGatewayNotConfigured = errors.New("payment gateway not configured")
)
