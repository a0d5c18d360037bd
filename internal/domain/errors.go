package domain

import "errors"

var (
	// Transaction errors
	ErrDuplicateTransaction = errors.New("transaction with this hash already exists")
	ErrTransactionNotFound  = errors.New("transaction not found")

	// Payment / withdrawal errors
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrWithdrawalNotFound = errors.New("withdrawal not found")

	// Rule errors
	ErrRuleNotFound = errors.New("classification rule not found")

	// Invoice errors
	ErrInvoiceNotFound = errors.New("invoice not found")

	// Validation errors
	ErrInvalidMonth  = errors.New("reference month must be in YYYY-MM form")
	ErrInvalidOwner  = errors.New("owner must be eu or dinda")
	ErrInvalidAmount = errors.New("amount must be positive")
)
