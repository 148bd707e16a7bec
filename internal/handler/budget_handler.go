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
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// CreateBudgetRequest represents the create budget request body. A nil
// categoryId creates the period's general budget.
type CreateBudgetRequest struct {
	CategoryID    *int32 `json:"categoryId"`
	PlannedAmount string `json:"plannedAmount"`
	Year          int    `json:"year"`
	Month         int    `json:"month"`
}

// UpdateBudgetRequest represents the update planned amount request body
type UpdateBudgetRequest struct {
	PlannedAmount string `json:"plannedAmount"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID              int32  `json:"id"`
	CategoryID      *int32 `json:"categoryId,omitempty"`
	PlannedAmount   string `json:"plannedAmount"`
	SpentAmount     string `json:"spentAmount"`
	Remaining       string `json:"remaining"`
	SpentPercentage string `json:"spentPercentage"`
	OverBudget      bool   `json:"overBudget"`
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

func toBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:              b.ID,
		CategoryID:      b.CategoryID,
		PlannedAmount:   b.PlannedAmount.StringFixed(2),
		SpentAmount:     b.SpentAmount.StringFixed(2),
		Remaining:       b.Remaining().StringFixed(2),
		SpentPercentage: b.SpentPercentage().StringFixed(1),
		OverBudget:      b.IsOverBudget(),
		Year:            b.Year,
		Month:           b.Month,
		CreatedAt:       b.CreatedAt.Format(timeFormat),
		UpdatedAt:       b.UpdatedAt.Format(timeFormat),
	}
}

// CreateBudget handles POST /api/v1/budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.PlannedAmount)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "plannedAmount", Message: "Must be a decimal number"},
		})
	}

	var budget *domain.Budget
	if req.CategoryID != nil {
		budget, err = h.budgetService.CreateCategoryBudget(userID, *req.CategoryID, amount, req.Year, req.Month)
	} else {
		budget, err = h.budgetService.CreateGeneralBudget(userID, amount, req.Year, req.Month)
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "plannedAmount", Message: "Must be greater than zero"},
			})
		case errors.Is(err, domain.ErrInvalidPeriod):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "year", Message: "Period is out of the supported range"},
			})
		case errors.Is(err, domain.ErrDuplicateBudget):
			return NewConflictError(c, "A budget already exists for this period")
		case errors.Is(err, domain.ErrCategoryTypeMismatch):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "categoryId", Message: "Budgets can only target expense categories"},
			})
		case errors.Is(err, domain.ErrCategoryNotFound):
			return NewNotFoundError(c, "Category not found")
		case errors.Is(err, domain.ErrUserNotFound):
			return NewUnauthorizedError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create budget")
		return NewInternalError(c, "Failed to create budget")
	}

	log.Info().Str("user_id", userID.String()).Int32("budget_id", budget.ID).Int("year", budget.Year).Int("month", budget.Month).Msg("Budget created")

	return c.JSON(http.StatusCreated, toBudgetResponse(budget))
}

// GetBudgets handles GET /api/v1/budgets
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	budgets, err := h.budgetService.GetBudgets(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list budgets")
		return NewInternalError(c, "Failed to list budgets")
	}

	return c.JSON(http.StatusOK, toBudgetResponses(budgets))
}

// GetBudget handles GET /api/v1/budgets/:id
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	budget, err := h.budgetService.GetBudget(userID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("budget_id", id).Msg("Failed to get budget")
		return NewInternalError(c, "Failed to get budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// GetBudgetsForPeriod handles GET /api/v1/budgets/period/:year/:month
func (h *BudgetHandler) GetBudgetsForPeriod(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year, month, ok := parsePeriodParams(c)
	if !ok {
		return NewValidationError(c, "Invalid period", nil)
	}

	budgets, err := h.budgetService.GetBudgetsForPeriod(userID, year, month)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPeriod) {
			return NewValidationError(c, "Period is out of the supported range", nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list budgets for period")
		return NewInternalError(c, "Failed to list budgets")
	}

	return c.JSON(http.StatusOK, toBudgetResponses(budgets))
}

// GetGeneralBudget handles GET /api/v1/budgets/period/:year/:month/general
func (h *BudgetHandler) GetGeneralBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year, month, ok := parsePeriodParams(c)
	if !ok {
		return NewValidationError(c, "Invalid period", nil)
	}

	budget, err := h.budgetService.GetGeneralBudget(userID, year, month)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "No general budget for this period")
		}
		if errors.Is(err, domain.ErrInvalidPeriod) {
			return NewValidationError(c, "Period is out of the supported range", nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get general budget")
		return NewInternalError(c, "Failed to get general budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// UpdateBudget handles PUT /api/v1/budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	var req UpdateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.PlannedAmount)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "plannedAmount", Message: "Must be a decimal number"},
		})
	}

	budget, err := h.budgetService.UpdatePlannedAmount(userID, int32(id), amount)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "plannedAmount", Message: "Must be greater than zero"},
			})
		}
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("budget_id", id).Msg("Failed to update budget")
		return NewInternalError(c, "Failed to update budget")
	}

	log.Info().Str("user_id", userID.String()).Int32("budget_id", budget.ID).Msg("Budget planned amount updated")
	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// DeleteBudget handles DELETE /api/v1/budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	if err := h.budgetService.DeleteBudget(userID, int32(id)); err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("budget_id", id).Msg("Failed to delete budget")
		return NewInternalError(c, "Failed to delete budget")
	}

	log.Info().Str("user_id", userID.String()).Int("budget_id", id).Msg("Budget deleted")
	return c.NoContent(http.StatusNoContent)
}

// RecomputePeriod handles POST /api/v1/budgets/period/:year/:month/recompute
func (h *BudgetHandler) RecomputePeriod(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year, month, ok := parsePeriodParams(c)
	if !ok {
		return NewValidationError(c, "Invalid period", nil)
	}

	budgets, err := h.budgetService.RecomputePeriod(userID, year, month)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPeriod) {
			return NewValidationError(c, "Period is out of the supported range", nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("year", year).Int("month", month).Msg("Forced recomputation failed")
		return NewInternalError(c, "Failed to recompute budgets")
	}

	return c.JSON(http.StatusOK, toBudgetResponses(budgets))
}

func toBudgetResponses(budgets []*domain.Budget) []BudgetResponse {
	response := make([]BudgetResponse, len(budgets))
	for i, budget := range budgets {
		response[i] = toBudgetResponse(budget)
	}
	return response
}

func parsePeriodParams(c echo.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return 0, 0, false
	}
	return year, month, true
}
