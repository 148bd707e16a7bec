package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/middleware"
	"github.com/centavo/centavo-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AlertHandler handles alert HTTP requests
type AlertHandler struct {
	alertService *service.AlertService
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// AlertResponse represents an alert in API responses
type AlertResponse struct {
	ID        int32  `json:"id"`
	BudgetID  int32  `json:"budgetId"`
	Message   string `json:"message"`
	Kind      string `json:"kind"`
	Threshold int    `json:"threshold"`
	IsRead    bool   `json:"isRead"`
	CreatedAt string `json:"createdAt"`
}

// UnreadCountResponse represents the unread alert count
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// CleanupResponse reports how many alerts a cleanup removed
type CleanupResponse struct {
	Deleted int64 `json:"deleted"`
}

func toAlertResponse(a *domain.Alert) AlertResponse {
	return AlertResponse{
		ID:        a.ID,
		BudgetID:  a.BudgetID,
		Message:   a.Message,
		Kind:      string(a.Kind),
		Threshold: a.Threshold,
		IsRead:    a.IsRead,
		CreatedAt: a.CreatedAt.Format(timeFormat),
	}
}

func toAlertResponses(alerts []*domain.Alert) []AlertResponse {
	response := make([]AlertResponse, len(alerts))
	for i, alert := range alerts {
		response[i] = toAlertResponse(alert)
	}
	return response
}

// GetAlerts handles GET /api/v1/alerts
func (h *AlertHandler) GetAlerts(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	alerts, err := h.alertService.GetAlerts(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list alerts")
		return NewInternalError(c, "Failed to list alerts")
	}

	return c.JSON(http.StatusOK, toAlertResponses(alerts))
}

// GetUnreadAlerts handles GET /api/v1/alerts/unread
func (h *AlertHandler) GetUnreadAlerts(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	alerts, err := h.alertService.GetUnreadAlerts(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list unread alerts")
		return NewInternalError(c, "Failed to list alerts")
	}

	return c.JSON(http.StatusOK, toAlertResponses(alerts))
}

// CountUnread handles GET /api/v1/alerts/unread/count
func (h *AlertHandler) CountUnread(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	count, err := h.alertService.CountUnread(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to count unread alerts")
		return NewInternalError(c, "Failed to count alerts")
	}

	return c.JSON(http.StatusOK, UnreadCountResponse{Count: count})
}

// MarkRead handles PATCH /api/v1/alerts/:id/read
func (h *AlertHandler) MarkRead(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid alert ID", nil)
	}

	alert, err := h.alertService.MarkRead(userID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrAlertNotFound) {
			return NewNotFoundError(c, "Alert not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("alert_id", id).Msg("Failed to mark alert read")
		return NewInternalError(c, "Failed to mark alert read")
	}

	return c.JSON(http.StatusOK, toAlertResponse(alert))
}

// MarkAllRead handles POST /api/v1/alerts/read-all
func (h *AlertHandler) MarkAllRead(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if err := h.alertService.MarkAllRead(userID); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to mark all alerts read")
		return NewInternalError(c, "Failed to mark alerts read")
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteAlert handles DELETE /api/v1/alerts/:id
func (h *AlertHandler) DeleteAlert(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid alert ID", nil)
	}

	if err := h.alertService.DeleteAlert(userID, int32(id)); err != nil {
		if errors.Is(err, domain.ErrAlertNotFound) {
			return NewNotFoundError(c, "Alert not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("alert_id", id).Msg("Failed to delete alert")
		return NewInternalError(c, "Failed to delete alert")
	}

	return c.NoContent(http.StatusNoContent)
}

// CleanupOld handles POST /api/v1/alerts/cleanup
func (h *AlertHandler) CleanupOld(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	deleted, err := h.alertService.CleanupOld(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to clean up alerts")
		return NewInternalError(c, "Failed to clean up alerts")
	}

	return c.JSON(http.StatusOK, CleanupResponse{Deleted: deleted})
}
