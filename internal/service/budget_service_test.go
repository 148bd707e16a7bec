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

type budgetFixture struct {
	userID       uuid.UUID
	userRepo     *testutil.MockUserRepository
	categoryRepo *testutil.MockCategoryRepository
	txRepo       *testutil.MockTransactionRepository
	budgetRepo   *testutil.MockBudgetRepository
	alertRepo    *testutil.MockAlertRepository
	service      *BudgetService
}

func newBudgetFixture() *budgetFixture {
	userRepo := testutil.NewMockUserRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	txRepo := testutil.NewMockTransactionRepository()
	budgetRepo := testutil.NewMockBudgetRepository()
	alertRepo := testutil.NewMockAlertRepository()

	user, _ := userRepo.CreateOrGetByAuth0ID("auth0|tester", "tester@example.com", nil)

	aggregation := NewAggregationService(txRepo)
	alerts := NewAlertService(alertRepo, categoryRepo, 0)
	sync := NewBudgetSyncService(budgetRepo, budgetRepo, aggregation, alerts)

	return &budgetFixture{
		userID:       user.ID,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		txRepo:       txRepo,
		budgetRepo:   budgetRepo,
		alertRepo:    alertRepo,
		service:      NewBudgetService(budgetRepo, categoryRepo, userRepo, aggregation, alerts, sync),
	}
}

func (f *budgetFixture) addExpenseCategory(id int32, name string) {
	f.categoryRepo.AddCategory(&domain.Category{
		ID:     id,
		UserID: f.userID,
		Name:   name,
		Type:   domain.CategoryTypeExpense,
	})
}

func TestCreateGeneralBudget_Success(t *testing.T) {
	f := newBudgetFixture()

	budget, err := f.service.CreateGeneralBudget(f.userID, decimal.NewFromInt(500), 2025, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !budget.IsGeneral() {
		t.Error("Expected a general budget")
	}
	if !budget.SpentAmount.IsZero() {
		t.Errorf("Expected zero spent, got %s", budget.SpentAmount.String())
	}
}

func TestCreateGeneralBudget_SeedsSpentFromLedger(t *testing.T) {
	f := newBudgetFixture()

	// Spending happened before the budget existed
	f.txRepo.AddTransaction(&domain.Transaction{
		UserID:          f.userID,
		Name:            "rent",
		Amount:          decimal.NewFromInt(300),
		Type:            domain.TransactionTypeExpense,
		TransactionDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	budget, err := f.service.CreateGeneralBudget(f.userID, decimal.NewFromInt(500), 2025, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !budget.SpentAmount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Expected spent 300, got %s", budget.SpentAmount.String())
	}
}

func TestCreateGeneralBudget_AlertsEvaluatedImmediately(t *testing.T) {
	f := newBudgetFixture()

	f.txRepo.AddTransaction(&domain.Transaction{
		UserID:          f.userID,
		Name:            "splurge",
		Amount:          decimal.NewFromInt(600),
		Type:            domain.TransactionTypeExpense,
		TransactionDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	if _, err := f.service.CreateGeneralBudget(f.userID, decimal.NewFromInt(500), 2025, 3); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	alerts, _ := f.alertRepo.GetAllByUser(f.userID)
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 alert for an already-exceeded budget, got %d", len(alerts))
	}
	if alerts[0].Kind != domain.AlertKindExceeded {
		t.Errorf("Expected exceeded alert, got %s", alerts[0].Kind)
	}
}

func TestCreateGeneralBudget_Duplicate(t *testing.T) {
	f := newBudgetFixture()

	if _, err := f.service.CreateGeneralBudget(f.userID, decimal.NewFromInt(500), 2025, 3); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	_, err := f.service.CreateGeneralBudget(f.userID, decimal.NewFromInt(300), 2025, 3)
	if !errors.Is(err, domain.ErrDuplicateBudget) {
		t.Fatalf("Expected ErrDuplicateBudget, got %v", err)
	}
}

func TestCreateGeneralBudget_InvalidAmount(t *testing.T) {
	f := newBudgetFixture()

	_, err := f.service.CreateGeneralBudget(f.userID, decimal.Zero, 2025, 3)
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("Expected ErrInvalidAmount, got %v", err)
	}

	_, err = f.service.CreateGeneralBudget(f.userID, decimal.NewFromInt(-10), 2025, 3)
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("Expected ErrInvalidAmount, got %v", err)
	}
}

func TestCreateGeneralBudget_InvalidPeriod(t *testing.T) {
	f := newBudgetFixture()

	cases := []struct {
		year, month int
	}{
		{2019, 5},
		{2051, 5},
		{2025, 0},
		{2025, 13},
	}
	for _, tc := range cases {
		_, err := f.service.CreateGeneralBudget(f.userID, decimal.NewFromInt(100), tc.year, tc.month)
		if !errors.Is(err, domain.ErrInvalidPeriod) {
			t.Errorf("Expected ErrInvalidPeriod for %d-%d, got %v", tc.year, tc.month, err)
		}
	}
}

func TestCreateGeneralBudget_UnknownUser(t *testing.T) {
	f := newBudgetFixture()

	_, err := f.service.CreateGeneralBudget(uuid.New(), decimal.NewFromInt(100), 2025, 3)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestCreateCategoryBudget_Success(t *testing.T) {
	f := newBudgetFixture()
	f.addExpenseCategory(1, "Groceries")

	budget, err := f.service.CreateCategoryBudget(f.userID, 1, decimal.NewFromInt(200), 2025, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if budget.CategoryID == nil || *budget.CategoryID != 1 {
		t.Error("Expected budget scoped to category 1")
	}
}

func TestCreateCategoryBudget_UnknownCategory(t *testing.T) {
	f := newBudgetFixture()

	_, err := f.service.CreateCategoryBudget(f.userID, 99, decimal.NewFromInt(200), 2025, 3)
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("Expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCreateCategoryBudget_IncomeCategoryRejected(t *testing.T) {
	f := newBudgetFixture()
	f.categoryRepo.AddCategory(&domain.Category{
		ID:     2,
		UserID: f.userID,
		Name:   "Salary",
		Type:   domain.CategoryTypeIncome,
	})

	_, err := f.service.CreateCategoryBudget(f.userID, 2, decimal.NewFromInt(200), 2025, 3)
	if !errors.Is(err, domain.ErrCategoryTypeMismatch) {
		t.Fatalf("Expected ErrCategoryTypeMismatch, got %v", err)
	}
}

func TestCreateCategoryBudget_DuplicateScope(t *testing.T) {
	f := newBudgetFixture()
	f.addExpenseCategory(1, "Groceries")

	if _, err := f.service.CreateCategoryBudget(f.userID, 1, decimal.NewFromInt(200), 2025, 3); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	_, err := f.service.CreateCategoryBudget(f.userID, 1, decimal.NewFromInt(300), 2025, 3)
	if !errors.Is(err, domain.ErrDuplicateBudget) {
		t.Fatalf("Expected ErrDuplicateBudget, got %v", err)
	}

	// Same category in a different month is a different scope
	if _, err := f.service.CreateCategoryBudget(f.userID, 1, decimal.NewFromInt(200), 2025, 4); err != nil {
		t.Fatalf("Expected no error for a different month, got %v", err)
	}
}

func TestUpdatePlannedAmount_LeavesSpentUntouched(t *testing.T) {
	f := newBudgetFixture()

	f.txRepo.AddTransaction(&domain.Transaction{
		UserID:          f.userID,
		Name:            "rent",
		Amount:          decimal.NewFromInt(300),
		Type:            domain.TransactionTypeExpense,
		TransactionDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	budget, err := f.service.CreateGeneralBudget(f.userID, decimal.NewFromInt(500), 2025, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	updated, err := f.service.UpdatePlannedAmount(f.userID, budget.ID, decimal.NewFromInt(800))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !updated.PlannedAmount.Equal(decimal.NewFromInt(800)) {
		t.Errorf("Expected planned 800, got %s", updated.PlannedAmount.String())
	}
	if !updated.SpentAmount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Expected spent to stay 300, got %s", updated.SpentAmount.String())
	}
}

func TestUpdatePlannedAmount_InvalidAmount(t *testing.T) {
	f := newBudgetFixture()

	budget, err := f.service.CreateGeneralBudget(f.userID, decimal.NewFromInt(500), 2025, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err = f.service.UpdatePlannedAmount(f.userID, budget.ID, decimal.Zero)
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("Expected ErrInvalidAmount, got %v", err)
	}
}

func TestDeleteBudget_OwnershipChecked(t *testing.T) {
	f := newBudgetFixture()

	budget, err := f.service.CreateGeneralBudget(f.userID, decimal.NewFromInt(500), 2025, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := f.service.DeleteBudget(uuid.New(), budget.ID); !errors.Is(err, domain.ErrBudgetNotFound) {
		t.Fatalf("Expected ErrBudgetNotFound for a stranger, got %v", err)
	}
	if err := f.service.DeleteBudget(f.userID, budget.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := f.service.GetBudget(f.userID, budget.ID); !errors.Is(err, domain.ErrBudgetNotFound) {
		t.Fatalf("Expected ErrBudgetNotFound after delete, got %v", err)
	}
}

func TestDeleteBudget_AlertsSurvive(t *testing.T) {
	f := newBudgetFixture()

	f.txRepo.AddTransaction(&domain.Transaction{
		UserID:          f.userID,
		Name:            "splurge",
		Amount:          decimal.NewFromInt(600),
		Type:            domain.TransactionTypeExpense,
		TransactionDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	budget, err := f.service.CreateGeneralBudget(f.userID, decimal.NewFromInt(500), 2025, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := f.service.DeleteBudget(f.userID, budget.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	alerts, _ := f.alertRepo.GetAllByUser(f.userID)
	if len(alerts) != 1 {
		t.Fatalf("Expected the alert history to survive the delete, got %d alerts", len(alerts))
	}
	if alerts[0].BudgetID != budget.ID {
		t.Fatalf("Expected the surviving alert to keep its budget reference %d, got %d", budget.ID, alerts[0].BudgetID)
	}
	if alerts[0].Kind != domain.AlertKindExceeded {
		t.Fatalf("Expected an exceeded alert, got %s", alerts[0].Kind)
	}
}

func TestRecomputePeriod_ReturnsRefreshedBudgets(t *testing.T) {
	f := newBudgetFixture()

	budget, err := f.service.CreateGeneralBudget(f.userID, decimal.NewFromInt(500), 2025, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Drift: the ledger gained an expense without a recomputation trigger
	f.txRepo.AddTransaction(&domain.Transaction{
		UserID:          f.userID,
		Name:            "groceries",
		Amount:          decimal.NewFromInt(75),
		Type:            domain.TransactionTypeExpense,
		TransactionDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	})

	budgets, err := f.service.RecomputePeriod(f.userID, 2025, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("Expected 1 budget, got %d", len(budgets))
	}
	if budgets[0].ID != budget.ID {
		t.Errorf("Expected budget %d, got %d", budget.ID, budgets[0].ID)
	}
	if !budgets[0].SpentAmount.Equal(decimal.NewFromInt(75)) {
		t.Errorf("Expected spent 75, got %s", budgets[0].SpentAmount.String())
	}
}

func TestRecomputePeriod_SurfacesLedgerFailure(t *testing.T) {
	f := newBudgetFixture()

	if _, err := f.service.CreateGeneralBudget(f.userID, decimal.NewFromInt(500), 2025, 3); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	f.txRepo.ListExpenseTransactionsFn = func(uuid.UUID, int, int) ([]*domain.Transaction, error) {
		return nil, errors.New("connection refused")
	}

	if _, err := f.service.RecomputePeriod(f.userID, 2025, 3); err == nil {
		t.Fatal("Expected the forced recomputation to surface the failure")
	}
}
