package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

type Transaction struct {
	ID              int32           `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"`
	Type            TransactionType `json:"type"`
	CategoryID      *int32          `json:"categoryId,omitempty"`
	TransactionDate time.Time       `json:"transactionDate"`
	Notes           *string         `json:"notes,omitempty"`
	ReceiptKey      *string         `json:"-"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// UpdateTransactionData carries the full replacement state for an edit.
type UpdateTransactionData struct {
	Name            string
	Amount          decimal.Decimal
	Type            TransactionType
	CategoryID      *int32
	TransactionDate time.Time
	Notes           *string
}

type TransactionFilters struct {
	Year  *int
	Month *int
	Type  *TransactionType
}

type TransactionRepository interface {
	Create(transaction *Transaction) (*Transaction, error)
	GetByID(userID uuid.UUID, id int32) (*Transaction, error)
	GetByUser(userID uuid.UUID, filters *TransactionFilters) ([]*Transaction, error)
	Update(userID uuid.UUID, id int32, data *UpdateTransactionData) (*Transaction, error)
	Delete(userID uuid.UUID, id int32) error
	SetReceiptKey(userID uuid.UUID, id int32, key *string) (*Transaction, error)
	ListExpenseTransactions(userID uuid.UUID, year, month int) ([]*Transaction, error)
}

// LedgerReader is the narrow read surface the budget core consumes. The
// transaction repository satisfies it; the budget side never sees the rest.
type LedgerReader interface {
	ListExpenseTransactions(userID uuid.UUID, year, month int) ([]*Transaction, error)
}
