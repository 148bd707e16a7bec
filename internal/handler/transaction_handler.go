package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/middleware"
	"github.com/centavo/centavo-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const dateFormat = "2006-01-02"

// TransactionHandler handles transaction HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	receiptService     *service.ReceiptService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService, receiptService *service.ReceiptService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		receiptService:     receiptService,
	}
}

// TransactionRequest represents the create/update transaction request body
type TransactionRequest struct {
	Name            string  `json:"name"`
	Amount          string  `json:"amount"`
	Type            string  `json:"type"`
	CategoryID      *int32  `json:"categoryId"`
	TransactionDate *string `json:"transactionDate"`
	Notes           *string `json:"notes"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID              int32   `json:"id"`
	Name            string  `json:"name"`
	Amount          string  `json:"amount"`
	Type            string  `json:"type"`
	CategoryID      *int32  `json:"categoryId,omitempty"`
	TransactionDate string  `json:"transactionDate"`
	Notes           *string `json:"notes,omitempty"`
	HasReceipt      bool    `json:"hasReceipt"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ReceiptURLResponse carries a short-lived receipt download URL
type ReceiptURLResponse struct {
	URL string `json:"url"`
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		Name:            t.Name,
		Amount:          t.Amount.StringFixed(2),
		Type:            string(t.Type),
		CategoryID:      t.CategoryID,
		TransactionDate: t.TransactionDate.Format(dateFormat),
		Notes:           t.Notes,
		HasReceipt:      t.ReceiptKey != nil,
		CreatedAt:       t.CreatedAt.Format(timeFormat),
		UpdatedAt:       t.UpdatedAt.Format(timeFormat),
	}
}

func toTransactionResponses(transactions []*domain.Transaction) []TransactionResponse {
	response := make([]TransactionResponse, len(transactions))
	for i, tx := range transactions {
		response[i] = toTransactionResponse(tx)
	}
	return response
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Must be a decimal number"},
		})
	}

	var txDate *time.Time
	if req.TransactionDate != nil {
		parsed, err := time.Parse(dateFormat, *req.TransactionDate)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "transactionDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		txDate = &parsed
	}

	tx, err := h.transactionService.CreateTransaction(userID, service.CreateTransactionInput{
		Name:            req.Name,
		Amount:          amount,
		Type:            domain.TransactionType(req.Type),
		TransactionDate: txDate,
		CategoryID:      req.CategoryID,
		Notes:           req.Notes,
	})
	if err != nil {
		if resp := transactionValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	log.Info().Str("user_id", userID.String()).Int32("transaction_id", tx.ID).Str("type", string(tx.Type)).Msg("Transaction created")
	return c.JSON(http.StatusCreated, toTransactionResponse(tx))
}

// GetTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	transactions, err := h.transactionService.GetTransactions(userID, filters)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list transactions")
		return NewInternalError(c, "Failed to list transactions")
	}

	return c.JSON(http.StatusOK, toTransactionResponses(transactions))
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	tx, err := h.transactionService.GetTransactionByID(userID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(tx))
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Must be a decimal number"},
		})
	}

	if req.TransactionDate == nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "transactionDate", Message: "Is required"},
		})
	}
	txDate, err := time.Parse(dateFormat, *req.TransactionDate)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "transactionDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	tx, err := h.transactionService.UpdateTransaction(userID, int32(id), service.UpdateTransactionInput{
		Name:            req.Name,
		Amount:          amount,
		Type:            domain.TransactionType(req.Type),
		TransactionDate: txDate,
		CategoryID:      req.CategoryID,
		Notes:           req.Notes,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if resp := transactionValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("transaction_id", id).Msg("Failed to update transaction")
		return NewInternalError(c, "Failed to update transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(tx))
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.DeleteTransaction(userID, int32(id)); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("transaction_id", id).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	log.Info().Str("user_id", userID.String()).Int("transaction_id", id).Msg("Transaction deleted")
	return c.NoContent(http.StatusNoContent)
}

// AttachReceipt handles POST /api/v1/transactions/:id/receipt
func (h *TransactionHandler) AttachReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		return NewValidationError(c, "Missing receipt file", nil)
	}
	if fileHeader.Size > service.MaxReceiptSize {
		return NewValidationError(c, "Receipt exceeds the maximum size of 5MB", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return NewValidationError(c, "Unable to read receipt file", nil)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxReceiptSize+1))
	if err != nil {
		return NewValidationError(c, "Unable to read receipt file", nil)
	}

	tx, err := h.receiptService.Attach(c.Request().Context(), userID, int32(id), data, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if errors.Is(err, domain.ErrUnsupportedImage) {
			return NewValidationError(c, "Receipt must be a JPEG, PNG or WebP image under 5MB", nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("transaction_id", id).Msg("Failed to attach receipt")
		return NewInternalError(c, "Failed to attach receipt")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(tx))
}

// DetachReceipt handles DELETE /api/v1/transactions/:id/receipt
func (h *TransactionHandler) DetachReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.receiptService.Detach(c.Request().Context(), userID, int32(id)); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if errors.Is(err, domain.ErrReceiptNotFound) {
			return NewNotFoundError(c, "Transaction has no receipt")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("transaction_id", id).Msg("Failed to detach receipt")
		return NewInternalError(c, "Failed to detach receipt")
	}

	return c.NoContent(http.StatusNoContent)
}

// GetReceiptURL handles GET /api/v1/transactions/:id/receipt
func (h *TransactionHandler) GetReceiptURL(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	url, err := h.receiptService.URL(c.Request().Context(), userID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if errors.Is(err, domain.ErrReceiptNotFound) {
			return NewNotFoundError(c, "Transaction has no receipt")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("transaction_id", id).Msg("Failed to presign receipt URL")
		return NewInternalError(c, "Failed to get receipt URL")
	}

	return c.JSON(http.StatusOK, ReceiptURLResponse{URL: url})
}

// transactionValidationResponse maps ledger validation errors to problem
// details. Returns nil when the error is not a validation failure.
func transactionValidationResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Must be at most 255 characters"},
		})
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Must be greater than zero"},
		})
	case errors.Is(err, domain.ErrInvalidTransactionType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Must be income or expense"},
		})
	case errors.Is(err, domain.ErrNotesTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "notes", Message: "Must be at most 1000 characters"},
		})
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewNotFoundError(c, "Category not found")
	}
	return nil
}

func parseTransactionFilters(c echo.Context) (*domain.TransactionFilters, error) {
	filters := &domain.TransactionFilters{}

	if raw := c.QueryParam("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("invalid year filter")
		}
		filters.Year = &year
	}
	if raw := c.QueryParam("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil || month < 1 || month > 12 {
			return nil, errors.New("invalid month filter")
		}
		filters.Month = &month
	}
	if raw := c.QueryParam("type"); raw != "" {
		txType := domain.TransactionType(raw)
		if txType != domain.TransactionTypeIncome && txType != domain.TransactionTypeExpense {
			return nil, errors.New("invalid type filter")
		}
		filters.Type = &txType
	}

	return filters, nil
}
