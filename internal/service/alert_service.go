package service

import (
	"fmt"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AlertService owns alert records and the threshold deduplication policy.
type AlertService struct {
	alertRepo     domain.AlertRepository
	categoryRepo  domain.CategoryRepository
	retentionDays int
}

// NewAlertService creates a new AlertService
func NewAlertService(alertRepo domain.AlertRepository, categoryRepo domain.CategoryRepository, retentionDays int) *AlertService {
	if retentionDays <= 0 {
		retentionDays = domain.AlertRetentionDays
	}
	return &AlertService{
		alertRepo:     alertRepo,
		categoryRepo:  categoryRepo,
		retentionDays: retentionDays,
	}
}

// Evaluate applies the dedup policy to a budget whose spent amount was just
// persisted. Exceeded wins over warning; an unread alert of the same kind
// suppresses a new one; dropping back under a threshold retracts nothing.
// The dedup key is unread alerts only: once the user reads an alert, a later
// re-crossing notifies again.
func (s *AlertService) Evaluate(budget *domain.Budget) error {
	if budget.IsOverBudget() {
		exists, err := s.alertRepo.HasUnread(budget.ID, domain.AlertKindExceeded)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		return s.create(&domain.Alert{
			BudgetID:  budget.ID,
			UserID:    budget.UserID,
			Message:   s.exceededMessage(budget),
			Kind:      domain.AlertKindExceeded,
			Threshold: domain.ExceededThreshold,
		})
	}

	if budget.IsNearLimit(domain.DefaultWarningThreshold) {
		exists, err := s.alertRepo.HasUnread(budget.ID, domain.AlertKindWarning)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		return s.create(&domain.Alert{
			BudgetID:  budget.ID,
			UserID:    budget.UserID,
			Message:   s.warningMessage(budget),
			Kind:      domain.AlertKindWarning,
			Threshold: domain.DefaultWarningThreshold,
		})
	}

	return nil
}

func (s *AlertService) create(alert *domain.Alert) error {
	if err := alert.Validate(); err != nil {
		return err
	}
	_, err := s.alertRepo.Create(alert)
	return err
}

func (s *AlertService) exceededMessage(budget *domain.Budget) string {
	return fmt.Sprintf("%s for %04d-%02d exceeded: spent %s of %s",
		s.budgetLabel(budget), budget.Year, budget.Month,
		budget.SpentAmount.StringFixed(2), budget.PlannedAmount.StringFixed(2))
}

func (s *AlertService) warningMessage(budget *domain.Budget) string {
	return fmt.Sprintf("%s for %04d-%02d is at %s%%: spent %s of %s",
		s.budgetLabel(budget), budget.Year, budget.Month,
		budget.SpentPercentage().StringFixed(0),
		budget.SpentAmount.StringFixed(2), budget.PlannedAmount.StringFixed(2))
}

func (s *AlertService) budgetLabel(budget *domain.Budget) string {
	if budget.IsGeneral() {
		return "General budget"
	}
	category, err := s.categoryRepo.GetByID(budget.UserID, *budget.CategoryID)
	if err != nil {
		log.Warn().Err(err).Int32("category_id", *budget.CategoryID).Msg("Failed to resolve category for alert message")
		return "Category budget"
	}
	return fmt.Sprintf("%q budget", category.Name)
}

// GetAlerts returns all alerts for a user, newest first.
func (s *AlertService) GetAlerts(userID uuid.UUID) ([]*domain.Alert, error) {
	return s.alertRepo.GetAllByUser(userID)
}

// GetUnreadAlerts returns unread alerts for a user, newest first.
func (s *AlertService) GetUnreadAlerts(userID uuid.UUID) ([]*domain.Alert, error) {
	return s.alertRepo.GetUnreadByUser(userID)
}

// CountUnread returns the number of unread alerts for a user.
func (s *AlertService) CountUnread(userID uuid.UUID) (int64, error) {
	return s.alertRepo.CountUnread(userID)
}

// MarkRead marks one alert as read, ownership-checked.
func (s *AlertService) MarkRead(userID uuid.UUID, alertID int32) (*domain.Alert, error) {
	return s.alertRepo.MarkRead(userID, alertID)
}

// MarkAllRead marks every alert of the user as read.
func (s *AlertService) MarkAllRead(userID uuid.UUID) error {
	return s.alertRepo.MarkAllRead(userID)
}

// DeleteAlert removes one alert, ownership-checked.
func (s *AlertService) DeleteAlert(userID uuid.UUID, alertID int32) error {
	return s.alertRepo.Delete(userID, alertID)
}

// CleanupOld deletes read alerts older than the retention window. Unread
// alerts are kept regardless of age.
func (s *AlertService) CleanupOld(userID uuid.UUID) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)
	return s.alertRepo.DeleteReadOlderThan(userID, cutoff)
}
