package domain

import (
	"time"

	"github.com/google/uuid"
)

type AlertKind string

const (
	AlertKindWarning  AlertKind = "warning"
	AlertKindExceeded AlertKind = "exceeded"
)

const (
	// DefaultWarningThreshold is the spent percentage at which a warning
	// alert fires.
	DefaultWarningThreshold = 90
	// ExceededThreshold is fixed: an exceeded alert always means 100%.
	ExceededThreshold = 100

	// MinAlertThreshold and MaxAlertThreshold bound the stored threshold,
	// matching the check constraint on the alerts table.
	MinAlertThreshold = 50
	MaxAlertThreshold = 100

	// AlertRetentionDays is how long read alerts are kept before cleanup.
	// Unread alerts are never cleaned up regardless of age.
	AlertRetentionDays = 30
)

// Alert records a threshold crossing. It is history, not a live gauge: once
// created it is never retracted when spending later drops back under the
// threshold, and it survives deletion of the budget that produced it.
// BudgetID may therefore refer to a budget that no longer exists.
type Alert struct {
	ID        int32     `json:"id"`
	BudgetID  int32     `json:"budgetId"`
	UserID    uuid.UUID `json:"userId"`
	Message   string    `json:"message"`
	Kind      AlertKind `json:"kind"`
	Threshold int       `json:"threshold"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate rejects thresholds outside the allowed band before they reach
// the database.
func (a *Alert) Validate() error {
	if a.Threshold < MinAlertThreshold || a.Threshold > MaxAlertThreshold {
		return ErrInvalidAlertThreshold
	}
	return nil
}

type AlertRepository interface {
	Create(alert *Alert) (*Alert, error)
	GetByID(userID uuid.UUID, id int32) (*Alert, error)
	GetAllByUser(userID uuid.UUID) ([]*Alert, error)
	GetUnreadByUser(userID uuid.UUID) ([]*Alert, error)
	CountUnread(userID uuid.UUID) (int64, error)
	HasUnread(budgetID int32, kind AlertKind) (bool, error)
	MarkRead(userID uuid.UUID, id int32) (*Alert, error)
	MarkAllRead(userID uuid.UUID) error
	Delete(userID uuid.UUID, id int32) error
	DeleteReadOlderThan(userID uuid.UUID, before time.Time) (int64, error)
}
