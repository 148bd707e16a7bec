package service

import (
	"errors"
	"testing"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func expenseOn(userID uuid.UUID, amount float64, categoryID *int32, date time.Time) *domain.Transaction {
	return &domain.Transaction{
		UserID:          userID,
		Name:            "expense",
		Amount:          decimal.NewFromFloat(amount),
		Type:            domain.TransactionTypeExpense,
		CategoryID:      categoryID,
		TransactionDate: date,
	}
}

func TestComputeSpent_SumsExpensesForPeriod(t *testing.T) {
	userID := uuid.New()
	txRepo := testutil.NewMockTransactionRepository()
	aggregation := NewAggregationService(txRepo)

	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)

	txRepo.AddTransaction(expenseOn(userID, 40.00, nil, jan))
	txRepo.AddTransaction(expenseOn(userID, 60.50, nil, jan))
	txRepo.AddTransaction(expenseOn(userID, 999.99, nil, feb))
	txRepo.AddTransaction(&domain.Transaction{
		UserID:          userID,
		Name:            "salary",
		Amount:          decimal.NewFromFloat(5000),
		Type:            domain.TransactionTypeIncome,
		TransactionDate: jan,
	})

	spent, err := aggregation.ComputeSpent(userID, 2025, 1, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !spent.Equal(decimal.NewFromFloat(100.50)) {
		t.Errorf("Expected spent 100.50, got %s", spent.String())
	}
}

func TestComputeSpent_CategoryScoped(t *testing.T) {
	userID := uuid.New()
	txRepo := testutil.NewMockTransactionRepository()
	aggregation := NewAggregationService(txRepo)

	groceries := int32(1)
	transport := int32(2)
	jan := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	txRepo.AddTransaction(expenseOn(userID, 30, &groceries, jan))
	txRepo.AddTransaction(expenseOn(userID, 20, &transport, jan))
	txRepo.AddTransaction(expenseOn(userID, 10, nil, jan))

	spent, err := aggregation.ComputeSpent(userID, 2025, 1, &groceries)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !spent.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Expected spent 30, got %s", spent.String())
	}

	// Unscoped aggregation covers everything, including uncategorized
	total, err := aggregation.ComputeSpent(userID, 2025, 1, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !total.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Expected total 60, got %s", total.String())
	}
}

func TestComputeSpent_EmptyPeriodIsZero(t *testing.T) {
	userID := uuid.New()
	txRepo := testutil.NewMockTransactionRepository()
	aggregation := NewAggregationService(txRepo)

	spent, err := aggregation.ComputeSpent(userID, 2025, 6, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !spent.IsZero() {
		t.Errorf("Expected zero spent, got %s", spent.String())
	}
}

func TestComputeSpent_Deterministic(t *testing.T) {
	userID := uuid.New()
	txRepo := testutil.NewMockTransactionRepository()
	aggregation := NewAggregationService(txRepo)

	jan := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	txRepo.AddTransaction(expenseOn(userID, 12.34, nil, jan))
	txRepo.AddTransaction(expenseOn(userID, 56.78, nil, jan))

	first, err := aggregation.ComputeSpent(userID, 2025, 1, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := aggregation.ComputeSpent(userID, 2025, 1, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !first.Equal(second) {
		t.Errorf("Expected identical results, got %s and %s", first.String(), second.String())
	}
}

func TestComputeSpent_LedgerFailurePropagates(t *testing.T) {
	userID := uuid.New()
	txRepo := testutil.NewMockTransactionRepository()
	txRepo.ListExpenseTransactionsFn = func(uuid.UUID, int, int) ([]*domain.Transaction, error) {
		return nil, errors.New("connection refused")
	}
	aggregation := NewAggregationService(txRepo)

	if _, err := aggregation.ComputeSpent(userID, 2025, 1, nil); err == nil {
		t.Fatal("Expected error, got nil")
	}
}
