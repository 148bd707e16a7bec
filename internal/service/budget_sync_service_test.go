package service

import (
	"errors"
	"testing"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncFixture struct {
	userID     uuid.UUID
	txRepo     *testutil.MockTransactionRepository
	budgetRepo *testutil.MockBudgetRepository
	alertRepo  *testutil.MockAlertRepository
	sync       *BudgetSyncService
}

func newSyncFixture() *syncFixture {
	txRepo := testutil.NewMockTransactionRepository()
	budgetRepo := testutil.NewMockBudgetRepository()
	alertRepo := testutil.NewMockAlertRepository()
	aggregation := NewAggregationService(txRepo)
	alerts := NewAlertService(alertRepo, testutil.NewMockCategoryRepository(), 0)
	return &syncFixture{
		userID:     uuid.New(),
		txRepo:     txRepo,
		budgetRepo: budgetRepo,
		alertRepo:  alertRepo,
		sync:       NewBudgetSyncService(budgetRepo, budgetRepo, aggregation, alerts),
	}
}

func (f *syncFixture) addBudget(categoryID *int32, planned, spent float64, year, month int) *domain.Budget {
	budget := &domain.Budget{
		UserID:        f.userID,
		CategoryID:    categoryID,
		PlannedAmount: decimal.NewFromFloat(planned),
		SpentAmount:   decimal.NewFromFloat(spent),
		Year:          year,
		Month:         month,
	}
	f.budgetRepo.AddBudget(budget)
	return budget
}

func (f *syncFixture) addExpense(amount float64, categoryID *int32, year, month, day int) {
	f.txRepo.AddTransaction(&domain.Transaction{
		UserID:          f.userID,
		Name:            "expense",
		Amount:          decimal.NewFromFloat(amount),
		Type:            domain.TransactionTypeExpense,
		CategoryID:      categoryID,
		TransactionDate: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
	})
}

func TestUpdateSpentAmounts_RefreshesStaleBudget(t *testing.T) {
	f := newSyncFixture()
	budget := f.addBudget(nil, 100, 0, 2025, 3)
	f.addExpense(45.50, nil, 2025, 3, 10)

	require.NoError(t, f.sync.UpdateSpentAmounts(f.userID, 2025, 3))

	refreshed, err := f.budgetRepo.GetByID(f.userID, budget.ID)
	require.NoError(t, err)
	assert.True(t, refreshed.SpentAmount.Equal(decimal.NewFromFloat(45.50)),
		"spent = %s", refreshed.SpentAmount)
	assert.Equal(t, 1, f.budgetRepo.SpentWrites[budget.ID])
}

func TestUpdateSpentAmounts_NoWriteWhenUnchanged(t *testing.T) {
	f := newSyncFixture()
	budget := f.addBudget(nil, 100, 0, 2025, 3)
	f.addExpense(30, nil, 2025, 3, 5)

	require.NoError(t, f.sync.UpdateSpentAmounts(f.userID, 2025, 3))
	require.NoError(t, f.sync.UpdateSpentAmounts(f.userID, 2025, 3))

	assert.Equal(t, 1, f.budgetRepo.SpentWrites[budget.ID],
		"second recomputation with an unchanged ledger must not write")
}

func TestUpdateSpentAmounts_GeneralAndCategoryBothCount(t *testing.T) {
	f := newSyncFixture()
	groceries := int32(1)
	general := f.addBudget(nil, 500, 0, 2025, 3)
	scoped := f.addBudget(&groceries, 200, 0, 2025, 3)

	f.addExpense(80, &groceries, 2025, 3, 12)
	f.addExpense(40, nil, 2025, 3, 13)

	require.NoError(t, f.sync.UpdateSpentAmounts(f.userID, 2025, 3))

	refreshedGeneral, err := f.budgetRepo.GetByID(f.userID, general.ID)
	require.NoError(t, err)
	refreshedScoped, err := f.budgetRepo.GetByID(f.userID, scoped.ID)
	require.NoError(t, err)

	// The categorized expense lands in both aggregates
	assert.True(t, refreshedGeneral.SpentAmount.Equal(decimal.NewFromInt(120)),
		"general spent = %s", refreshedGeneral.SpentAmount)
	assert.True(t, refreshedScoped.SpentAmount.Equal(decimal.NewFromInt(80)),
		"scoped spent = %s", refreshedScoped.SpentAmount)
}

func TestUpdateSpentAmounts_LedgerFailureLeavesStateUntouched(t *testing.T) {
	f := newSyncFixture()
	budget := f.addBudget(nil, 100, 25, 2025, 3)
	f.txRepo.ListExpenseTransactionsFn = func(uuid.UUID, int, int) ([]*domain.Transaction, error) {
		return nil, errors.New("connection refused")
	}

	err := f.sync.UpdateSpentAmounts(f.userID, 2025, 3)
	require.Error(t, err)

	stale, getErr := f.budgetRepo.GetByID(f.userID, budget.ID)
	require.NoError(t, getErr)
	assert.True(t, stale.SpentAmount.Equal(decimal.NewFromInt(25)),
		"stale spent must survive a failed recomputation")
	assert.Zero(t, f.budgetRepo.SpentWrites[budget.ID])

	alerts, _ := f.alertRepo.GetAllByUser(f.userID)
	assert.Empty(t, alerts, "no alerts without a successful write")
}

func TestUpdateSpentAmounts_AlertFiresOnlyOnNewCrossing(t *testing.T) {
	f := newSyncFixture()
	f.addBudget(nil, 100, 0, 2025, 3)
	f.addExpense(95, nil, 2025, 3, 8)

	require.NoError(t, f.sync.UpdateSpentAmounts(f.userID, 2025, 3))
	require.NoError(t, f.sync.UpdateSpentAmounts(f.userID, 2025, 3))

	alerts, _ := f.alertRepo.GetAllByUser(f.userID)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertKindWarning, alerts[0].Kind)
}

func TestOnExpenseTransactionCommitted_AbsorbsFailure(t *testing.T) {
	f := newSyncFixture()
	f.addBudget(nil, 100, 0, 2025, 3)
	f.txRepo.ListExpenseTransactionsFn = func(uuid.UUID, int, int) ([]*domain.Transaction, error) {
		return nil, errors.New("connection refused")
	}

	// Must not panic or propagate; the ledger write already committed
	f.sync.OnExpenseTransactionCommitted(f.userID, 2025, 3)
}

func TestOnExpenseTransactionEdited_RecomputesBothPeriods(t *testing.T) {
	f := newSyncFixture()
	march := f.addBudget(nil, 100, 50, 2025, 3)
	april := f.addBudget(nil, 100, 0, 2025, 4)

	// The only expense now lives in April
	f.addExpense(50, nil, 2025, 4, 2)

	f.sync.OnExpenseTransactionEdited(f.userID, 2025, 3, 2025, 4)

	refreshedMarch, err := f.budgetRepo.GetByID(f.userID, march.ID)
	require.NoError(t, err)
	refreshedApril, err := f.budgetRepo.GetByID(f.userID, april.ID)
	require.NoError(t, err)

	assert.True(t, refreshedMarch.SpentAmount.IsZero(),
		"march spent = %s", refreshedMarch.SpentAmount)
	assert.True(t, refreshedApril.SpentAmount.Equal(decimal.NewFromInt(50)),
		"april spent = %s", refreshedApril.SpentAmount)
}

func TestOnExpenseTransactionEdited_SamePeriodRecomputesOnce(t *testing.T) {
	f := newSyncFixture()
	budget := f.addBudget(nil, 100, 0, 2025, 3)
	f.addExpense(10, nil, 2025, 3, 1)

	f.sync.OnExpenseTransactionEdited(f.userID, 2025, 3, 2025, 3)

	assert.Equal(t, 1, f.budgetRepo.SpentWrites[budget.ID])
}

func TestUpdateSpentAmounts_NonRetroactiveAlerts(t *testing.T) {
	f := newSyncFixture()
	f.addBudget(nil, 100, 0, 2025, 3)
	f.addExpense(120, nil, 2025, 3, 4)

	require.NoError(t, f.sync.UpdateSpentAmounts(f.userID, 2025, 3))

	alerts, _ := f.alertRepo.GetAllByUser(f.userID)
	require.Len(t, alerts, 1)
	require.Equal(t, domain.AlertKindExceeded, alerts[0].Kind)

	// Spending drops back under everything; the alert stays
	f.txRepo.Transactions = map[int32]*domain.Transaction{}
	require.NoError(t, f.sync.UpdateSpentAmounts(f.userID, 2025, 3))

	alerts, _ = f.alertRepo.GetAllByUser(f.userID)
	assert.Len(t, alerts, 1, "alerts are history, never retracted")
}
