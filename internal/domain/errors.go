package domain

import "errors"

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternalError       = errors.New("internal error")
	ErrUserNotFound        = errors.New("user not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrBudgetNotFound      = errors.New("budget not found")
	ErrAlertNotFound       = errors.New("alert not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrInvalidPeriod          = errors.New("year or month is out of range")
	ErrDuplicateBudget        = errors.New("budget already exists for this period")
	ErrCategoryTypeMismatch   = errors.New("budget category must be an expense category")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAlertThreshold  = errors.New("alert threshold is out of range")
	ErrNameRequired           = errors.New("name is required")
	ErrNameTooLong            = errors.New("name exceeds maximum length")
	ErrNotesTooLong           = errors.New("notes exceed maximum length")
	ErrReceiptNotFound        = errors.New("transaction has no receipt")
	ErrUnsupportedImage       = errors.New("unsupported image format")
)

// Validation constants
const (
	MinBudgetYear = 2020
	MaxBudgetYear = 2050

	MaxTransactionNameLength  = 255
	MaxTransactionNotesLength = 1000
)
