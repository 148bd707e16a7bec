package service

import (
	"strings"
	"testing"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func budgetAt(userID uuid.UUID, planned, spent float64) *domain.Budget {
	return &domain.Budget{
		ID:            1,
		UserID:        userID,
		PlannedAmount: decimal.NewFromFloat(planned),
		SpentAmount:   decimal.NewFromFloat(spent),
		Year:          2025,
		Month:         3,
	}
}

func TestEvaluate_WarningAtThreshold(t *testing.T) {
	userID := uuid.New()
	alertRepo := testutil.NewMockAlertRepository()
	alertService := NewAlertService(alertRepo, testutil.NewMockCategoryRepository(), 0)

	if err := alertService.Evaluate(budgetAt(userID, 100, 90)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	alerts, _ := alertRepo.GetAllByUser(userID)
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Kind != domain.AlertKindWarning {
		t.Errorf("Expected warning alert, got %s", alerts[0].Kind)
	}
	if alerts[0].Threshold != domain.DefaultWarningThreshold {
		t.Errorf("Expected threshold 90, got %d", alerts[0].Threshold)
	}
}

func TestEvaluate_BelowThresholdNoAlert(t *testing.T) {
	userID := uuid.New()
	alertRepo := testutil.NewMockAlertRepository()
	alertService := NewAlertService(alertRepo, testutil.NewMockCategoryRepository(), 0)

	if err := alertService.Evaluate(budgetAt(userID, 100, 89.99)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	alerts, _ := alertRepo.GetAllByUser(userID)
	if len(alerts) != 0 {
		t.Fatalf("Expected no alerts, got %d", len(alerts))
	}
}

func TestEvaluate_UnreadAlertSuppressesDuplicate(t *testing.T) {
	userID := uuid.New()
	alertRepo := testutil.NewMockAlertRepository()
	alertService := NewAlertService(alertRepo, testutil.NewMockCategoryRepository(), 0)

	if err := alertService.Evaluate(budgetAt(userID, 100, 92)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// Still above the threshold, unread warning outstanding
	if err := alertService.Evaluate(budgetAt(userID, 100, 95)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	alerts, _ := alertRepo.GetAllByUser(userID)
	if len(alerts) != 1 {
		t.Fatalf("Expected exactly 1 alert, got %d", len(alerts))
	}
}

func TestEvaluate_ReadAlertAllowsRecrossing(t *testing.T) {
	userID := uuid.New()
	alertRepo := testutil.NewMockAlertRepository()
	alertService := NewAlertService(alertRepo, testutil.NewMockCategoryRepository(), 0)

	if err := alertService.Evaluate(budgetAt(userID, 100, 92)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := alertRepo.MarkAllRead(userID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Dropped under and crossed again: a fresh notification is due
	if err := alertService.Evaluate(budgetAt(userID, 100, 50)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := alertService.Evaluate(budgetAt(userID, 100, 91)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	alerts, _ := alertRepo.GetAllByUser(userID)
	if len(alerts) != 2 {
		t.Fatalf("Expected 2 alerts, got %d", len(alerts))
	}
}

func TestEvaluate_ExceededWinsOverWarning(t *testing.T) {
	userID := uuid.New()
	alertRepo := testutil.NewMockAlertRepository()
	alertService := NewAlertService(alertRepo, testutil.NewMockCategoryRepository(), 0)

	// 110% is over both thresholds; only the exceeded alert fires
	if err := alertService.Evaluate(budgetAt(userID, 100, 110)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	alerts, _ := alertRepo.GetAllByUser(userID)
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Kind != domain.AlertKindExceeded {
		t.Errorf("Expected exceeded alert, got %s", alerts[0].Kind)
	}
	if alerts[0].Threshold != domain.ExceededThreshold {
		t.Errorf("Expected threshold 100, got %d", alerts[0].Threshold)
	}
}

func TestEvaluate_SpentEqualToPlannedIsNotExceeded(t *testing.T) {
	userID := uuid.New()
	alertRepo := testutil.NewMockAlertRepository()
	alertService := NewAlertService(alertRepo, testutil.NewMockCategoryRepository(), 0)

	// Exactly at the limit: warning territory, not exceeded
	if err := alertService.Evaluate(budgetAt(userID, 100, 100)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	alerts, _ := alertRepo.GetAllByUser(userID)
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Kind != domain.AlertKindWarning {
		t.Errorf("Expected warning alert, got %s", alerts[0].Kind)
	}
}

func TestEvaluate_ExceededAfterWarningBothRemain(t *testing.T) {
	userID := uuid.New()
	alertRepo := testutil.NewMockAlertRepository()
	alertService := NewAlertService(alertRepo, testutil.NewMockCategoryRepository(), 0)

	if err := alertService.Evaluate(budgetAt(userID, 100, 95)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := alertService.Evaluate(budgetAt(userID, 100, 120)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	alerts, _ := alertRepo.GetAllByUser(userID)
	if len(alerts) != 2 {
		t.Fatalf("Expected 2 alerts, got %d", len(alerts))
	}
}

func TestEvaluate_DroppingBackRetractsNothing(t *testing.T) {
	userID := uuid.New()
	alertRepo := testutil.NewMockAlertRepository()
	alertService := NewAlertService(alertRepo, testutil.NewMockCategoryRepository(), 0)

	if err := alertService.Evaluate(budgetAt(userID, 100, 120)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// A deleted expense brings spending back under every threshold
	if err := alertService.Evaluate(budgetAt(userID, 100, 10)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	alerts, _ := alertRepo.GetAllByUser(userID)
	if len(alerts) != 1 {
		t.Fatalf("Expected the alert to remain, got %d alerts", len(alerts))
	}
}

func TestEvaluate_CategoryBudgetMessageNamesCategory(t *testing.T) {
	userID := uuid.New()
	alertRepo := testutil.NewMockAlertRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryRepo.AddCategory(&domain.Category{
		ID:     7,
		UserID: userID,
		Name:   "Groceries",
		Type:   domain.CategoryTypeExpense,
	})
	alertService := NewAlertService(alertRepo, categoryRepo, 0)

	categoryID := int32(7)
	budget := budgetAt(userID, 200, 250)
	budget.CategoryID = &categoryID

	if err := alertService.Evaluate(budget); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	alerts, _ := alertRepo.GetAllByUser(userID)
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(alerts))
	}
	if !strings.Contains(alerts[0].Message, "Groceries") {
		t.Errorf("Expected message to name the category, got %q", alerts[0].Message)
	}
}

func TestCleanupOld_KeepsUnreadAndRecent(t *testing.T) {
	userID := uuid.New()
	alertRepo := testutil.NewMockAlertRepository()
	alertService := NewAlertService(alertRepo, testutil.NewMockCategoryRepository(), 30)

	old := time.Now().UTC().AddDate(0, 0, -60)
	recent := time.Now().UTC().AddDate(0, 0, -5)

	staleRead := &domain.Alert{BudgetID: 1, UserID: userID, Kind: domain.AlertKindWarning, IsRead: true, CreatedAt: old}
	staleUnread := &domain.Alert{BudgetID: 2, UserID: userID, Kind: domain.AlertKindWarning, IsRead: false, CreatedAt: old}
	recentRead := &domain.Alert{BudgetID: 3, UserID: userID, Kind: domain.AlertKindWarning, IsRead: true, CreatedAt: recent}
	for _, a := range []*domain.Alert{staleRead, staleUnread, recentRead} {
		if _, err := alertRepo.Create(a); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	deleted, err := alertService.CleanupOld(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deletion, got %d", deleted)
	}

	alerts, _ := alertRepo.GetAllByUser(userID)
	if len(alerts) != 2 {
		t.Fatalf("Expected 2 alerts to survive, got %d", len(alerts))
	}
	for _, a := range alerts {
		if a.ID == staleRead.ID {
			t.Error("Expected the stale read alert to be deleted")
		}
	}
}
