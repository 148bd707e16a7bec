package handler

import (
	"net/http"

	"github.com/centavo/centavo-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, budgetHandler *BudgetHandler, alertHandler *AlertHandler, transactionHandler *TransactionHandler, categoryHandler *CategoryHandler) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Budget routes
	budgets := api.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/period/:year/:month", budgetHandler.GetBudgetsForPeriod)
	budgets.GET("/period/:year/:month/general", budgetHandler.GetGeneralBudget)
	budgets.POST("/period/:year/:month/recompute", budgetHandler.RecomputePeriod)

	// Alert routes
	alerts := api.Group("/alerts")
	alerts.GET("", alertHandler.GetAlerts)
	alerts.GET("/unread", alertHandler.GetUnreadAlerts)
	alerts.GET("/unread/count", alertHandler.CountUnread)
	alerts.PATCH("/:id/read", alertHandler.MarkRead)
	alerts.POST("/read-all", alertHandler.MarkAllRead)
	alerts.DELETE("/:id", alertHandler.DeleteAlert)
	alerts.POST("/cleanup", alertHandler.CleanupOld)

	// Transaction routes
	transactions := api.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/:id/receipt", transactionHandler.AttachReceipt)
	transactions.GET("/:id/receipt", transactionHandler.GetReceiptURL)
	transactions.DELETE("/:id/receipt", transactionHandler.DetachReceipt)

	// Category routes (read-only)
	categories := api.Group("/categories")
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
}
