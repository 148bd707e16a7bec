package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is a planned spending limit for one calendar month. A nil CategoryID
// marks the general budget, which covers all expense categories for the period.
// SpentAmount is a materialized view over the ledger: it is only ever written
// by the recomputation path, never set directly.
type Budget struct {
	ID            int32           `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	CategoryID    *int32          `json:"categoryId,omitempty"`
	PlannedAmount decimal.Decimal `json:"plannedAmount"`
	SpentAmount   decimal.Decimal `json:"spentAmount"`
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// IsGeneral reports whether this is the period's general budget.
func (b *Budget) IsGeneral() bool {
	return b.CategoryID == nil
}

// Remaining returns planned minus spent. Negative when over budget.
func (b *Budget) Remaining() decimal.Decimal {
	return b.PlannedAmount.Sub(b.SpentAmount)
}

// SpentPercentage returns spent as a percentage of planned, zero when nothing
// is planned.
func (b *Budget) SpentPercentage() decimal.Decimal {
	if b.PlannedAmount.IsZero() {
		return decimal.Zero
	}
	return b.SpentAmount.Div(b.PlannedAmount).Mul(decimal.NewFromInt(100))
}

// IsOverBudget reports whether spending strictly exceeds the planned amount.
func (b *Budget) IsOverBudget() bool {
	return b.SpentAmount.GreaterThan(b.PlannedAmount)
}

// IsNearLimit reports whether spending has reached the given percentage of the
// planned amount.
func (b *Budget) IsNearLimit(threshold int) bool {
	limit := b.PlannedAmount.Mul(decimal.NewFromInt(int64(threshold))).Div(decimal.NewFromInt(100))
	return b.SpentAmount.GreaterThanOrEqual(limit)
}

type BudgetRepository interface {
	Create(budget *Budget) (*Budget, error)
	GetByID(userID uuid.UUID, id int32) (*Budget, error)
	GetAllByUser(userID uuid.UUID) ([]*Budget, error)
	GetByPeriod(userID uuid.UUID, year, month int) ([]*Budget, error)
	GetGeneral(userID uuid.UUID, year, month int) (*Budget, error)
	GetByCategory(userID uuid.UUID, categoryID int32, year, month int) (*Budget, error)
	UpdatePlannedAmount(userID uuid.UUID, id int32, amount decimal.Decimal) (*Budget, error)
	Delete(userID uuid.UUID, id int32) error
}

// BudgetSpentWriter is deliberately separate from BudgetRepository: only the
// recomputation engine holds one, so no other code path can write SpentAmount.
type BudgetSpentWriter interface {
	UpdateSpentAmount(id int32, amount decimal.Decimal) error
}

// BudgetRecomputer is the narrow interface the ledger mutation path holds.
// Implementations absorb their own failures; a budget-side problem must never
// fail the triggering ledger write.
type BudgetRecomputer interface {
	OnExpenseTransactionCommitted(userID uuid.UUID, year, month int)
	OnExpenseTransactionEdited(userID uuid.UUID, oldYear, oldMonth, newYear, newMonth int)
}
