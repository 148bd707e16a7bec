package domain

import (
	"time"

	"github.com/google/uuid"
)

type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

type Category struct {
	ID        int32        `json:"id"`
	UserID    uuid.UUID    `json:"userId"`
	Name      string       `json:"name"`
	Type      CategoryType `json:"type"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// CategoryRepository is the read surface the budget core needs. Category
// management itself lives with an external collaborator.
type CategoryRepository interface {
	GetByID(userID uuid.UUID, id int32) (*Category, error)
	GetAllByUser(userID uuid.UUID) ([]*Category, error)
}
