package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AlertRepository implements domain.AlertRepository using PostgreSQL
type AlertRepository struct {
	pool *pgxpool.Pool
}

// NewAlertRepository creates a new AlertRepository
func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

const alertColumns = `id, budget_id, user_id, message, kind, threshold, is_read, created_at`

// Create inserts an alert, unread by default
func (r *AlertRepository) Create(alert *domain.Alert) (*domain.Alert, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO alerts (budget_id, user_id, message, kind, threshold)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+alertColumns,
		alert.BudgetID, pgUUID(alert.UserID), alert.Message, string(alert.Kind), alert.Threshold)

	return scanAlert(row)
}

// GetByID retrieves an alert by ID, scoped to its owner
func (r *AlertRepository) GetByID(userID uuid.UUID, id int32) (*domain.Alert, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+alertColumns+` FROM alerts WHERE user_id = $1 AND id = $2`,
		pgUUID(userID), id)

	alert, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAlertNotFound
		}
		return nil, err
	}
	return alert, nil
}

// GetAllByUser retrieves every alert of a user, newest first
func (r *AlertRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Alert, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+alertColumns+` FROM alerts WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		pgUUID(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// GetUnreadByUser retrieves unread alerts of a user, newest first
func (r *AlertRepository) GetUnreadByUser(userID uuid.UUID) ([]*domain.Alert, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+alertColumns+` FROM alerts WHERE user_id = $1 AND is_read = false ORDER BY created_at DESC, id DESC`,
		pgUUID(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// CountUnread counts unread alerts of a user
func (r *AlertRepository) CountUnread(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM alerts WHERE user_id = $1 AND is_read = false`,
		pgUUID(userID)).Scan(&count)
	return count, err
}

// HasUnread reports whether a budget has an unread alert of the given kind.
// This is the dedup check, keyed on unread rather than on any alert ever.
func (r *AlertRepository) HasUnread(budgetID int32, kind domain.AlertKind) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM alerts WHERE budget_id = $1 AND kind = $2 AND is_read = false)`,
		budgetID, string(kind)).Scan(&exists)
	return exists, err
}

// MarkRead marks one alert as read, scoped to its owner
func (r *AlertRepository) MarkRead(userID uuid.UUID, id int32) (*domain.Alert, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE alerts SET is_read = true WHERE user_id = $1 AND id = $2 RETURNING `+alertColumns,
		pgUUID(userID), id)

	alert, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAlertNotFound
		}
		return nil, err
	}
	return alert, nil
}

// MarkAllRead marks every alert of a user as read
func (r *AlertRepository) MarkAllRead(userID uuid.UUID) error {
	_, err := r.pool.Exec(context.Background(),
		`UPDATE alerts SET is_read = true WHERE user_id = $1 AND is_read = false`,
		pgUUID(userID))
	return err
}

// Delete removes one alert, scoped to its owner
func (r *AlertRepository) Delete(userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM alerts WHERE user_id = $1 AND id = $2`, pgUUID(userID), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

// DeleteReadOlderThan deletes read alerts created before the cutoff. Unread
// alerts are excluded regardless of age.
func (r *AlertRepository) DeleteReadOlderThan(userID uuid.UUID, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM alerts WHERE user_id = $1 AND is_read = true AND created_at < $2`,
		pgUUID(userID), before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanAlert(row pgx.Row) (*domain.Alert, error) {
	var (
		a         domain.Alert
		userID    pgtype.UUID
		kind      string
		createdAt pgtype.Timestamptz
	)

	if err := row.Scan(&a.ID, &a.BudgetID, &userID, &a.Message, &kind, &a.Threshold, &a.IsRead, &createdAt); err != nil {
		return nil, err
	}

	a.UserID = uuid.UUID(userID.Bytes)
	a.Kind = domain.AlertKind(kind)
	a.CreatedAt = createdAt.Time
	return &a, nil
}

func scanAlerts(rows pgx.Rows) ([]*domain.Alert, error) {
	alerts := []*domain.Alert{}
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}
