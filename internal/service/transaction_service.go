package service

import (
	"strings"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionService handles ledger mutations. After every committed change
// that can affect an expense aggregate it notifies the recomputer; that side
// effect is synchronous but its failures are absorbed by the recomputer, so
// the ledger write itself never fails for budget-side reasons.
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
	recomputer      domain.BudgetRecomputer
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, categoryRepo domain.CategoryRepository, recomputer domain.BudgetRecomputer) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		recomputer:      recomputer,
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	Name            string
	Amount          decimal.Decimal
	Type            domain.TransactionType
	TransactionDate *time.Time
	CategoryID      *int32
	Notes           *string
}

// CreateTransaction creates a new transaction with validation
func (s *TransactionService) CreateTransaction(userID uuid.UUID, input CreateTransactionInput) (*domain.Transaction, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxTransactionNameLength {
		return nil, domain.ErrNameTooLong
	}

	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	if input.Type != domain.TransactionTypeIncome && input.Type != domain.TransactionTypeExpense {
		return nil, domain.ErrInvalidTransactionType
	}

	// Default transaction_date to today if not provided
	transactionDate := time.Now().UTC().Truncate(24 * time.Hour)
	if input.TransactionDate != nil {
		transactionDate = *input.TransactionDate
	}

	notes, err := normalizeNotes(input.Notes)
	if err != nil {
		return nil, err
	}

	// Validate category exists and belongs to the user if provided
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(userID, *input.CategoryID); err != nil {
			return nil, domain.ErrCategoryNotFound
		}
	}

	created, err := s.transactionRepo.Create(&domain.Transaction{
		UserID:          userID,
		Name:            name,
		Amount:          input.Amount,
		Type:            input.Type,
		CategoryID:      input.CategoryID,
		TransactionDate: transactionDate,
		Notes:           notes,
	})
	if err != nil {
		return nil, err
	}

	if created.Type == domain.TransactionTypeExpense {
		s.recomputer.OnExpenseTransactionCommitted(userID, created.TransactionDate.Year(), int(created.TransactionDate.Month()))
	}

	return created, nil
}

// GetTransactions retrieves transactions for a user with optional filters
func (s *TransactionService) GetTransactions(userID uuid.UUID, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	return s.transactionRepo.GetByUser(userID, filters)
}

// GetTransactionByID retrieves a transaction by ID, ownership-checked
func (s *TransactionService) GetTransactionByID(userID uuid.UUID, id int32) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(userID, id)
}

// UpdateTransactionInput holds the input for updating a transaction
type UpdateTransactionInput struct {
	Name            string
	Amount          decimal.Decimal
	Type            domain.TransactionType
	TransactionDate time.Time
	CategoryID      *int32
	Notes           *string
}

// UpdateTransaction replaces a transaction's state. If either the old or the
// new state is an expense, both the old and the new period are recomputed.
func (s *TransactionService) UpdateTransaction(userID uuid.UUID, id int32, input UpdateTransactionInput) (*domain.Transaction, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxTransactionNameLength {
		return nil, domain.ErrNameTooLong
	}

	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	if input.Type != domain.TransactionTypeIncome && input.Type != domain.TransactionTypeExpense {
		return nil, domain.ErrInvalidTransactionType
	}

	notes, err := normalizeNotes(input.Notes)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(userID, *input.CategoryID); err != nil {
			return nil, domain.ErrCategoryNotFound
		}
	}

	old, err := s.transactionRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.transactionRepo.Update(userID, id, &domain.UpdateTransactionData{
		Name:            name,
		Amount:          input.Amount,
		Type:            input.Type,
		CategoryID:      input.CategoryID,
		TransactionDate: input.TransactionDate,
		Notes:           notes,
	})
	if err != nil {
		return nil, err
	}

	if old.Type == domain.TransactionTypeExpense || updated.Type == domain.TransactionTypeExpense {
		s.recomputer.OnExpenseTransactionEdited(userID,
			old.TransactionDate.Year(), int(old.TransactionDate.Month()),
			updated.TransactionDate.Year(), int(updated.TransactionDate.Month()))
	}

	return updated, nil
}

// DeleteTransaction removes a transaction and recomputes its period when it
// was an expense.
func (s *TransactionService) DeleteTransaction(userID uuid.UUID, id int32) error {
	tx, err := s.transactionRepo.GetByID(userID, id)
	if err != nil {
		return err
	}

	if err := s.transactionRepo.Delete(userID, id); err != nil {
		return err
	}

	if tx.Type == domain.TransactionTypeExpense {
		s.recomputer.OnExpenseTransactionCommitted(userID, tx.TransactionDate.Year(), int(tx.TransactionDate.Month()))
	}

	return nil
}

func normalizeNotes(notes *string) (*string, error) {
	if notes == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > domain.MaxTransactionNotesLength {
		return nil, domain.ErrNotesTooLong
	}
	return &trimmed, nil
}
