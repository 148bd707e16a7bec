package service

import (
	"fmt"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// BudgetSyncService keeps every budget's spent amount consistent with the
// ledger. It implements domain.BudgetRecomputer: the transaction path holds
// that narrow interface, the budget side holds domain.LedgerReader, and
// neither concrete component depends on the other.
type BudgetSyncService struct {
	budgetRepo  domain.BudgetRepository
	spentWriter domain.BudgetSpentWriter
	aggregation *AggregationService
	alerts      *AlertService
	logger      zerolog.Logger
}

// NewBudgetSyncService creates a new BudgetSyncService
func NewBudgetSyncService(
	budgetRepo domain.BudgetRepository,
	spentWriter domain.BudgetSpentWriter,
	aggregation *AggregationService,
	alerts *AlertService,
) *BudgetSyncService {
	return &BudgetSyncService{
		budgetRepo:  budgetRepo,
		spentWriter: spentWriter,
		aggregation: aggregation,
		alerts:      alerts,
		logger:      log.With().Str("component", "budget_sync").Logger(),
	}
}

// UpdateSpentAmounts recomputes every budget of the user for the period. A
// budget is written back only when the fresh value differs from the stored
// one, so a redundant call produces no writes and no alert evaluation. The
// dedup policy runs after each write.
func (s *BudgetSyncService) UpdateSpentAmounts(userID uuid.UUID, year, month int) error {
	budgets, err := s.budgetRepo.GetByPeriod(userID, year, month)
	if err != nil {
		return fmt.Errorf("list budgets for %04d-%02d: %w", year, month, err)
	}

	for _, budget := range budgets {
		spent, err := s.aggregation.ComputeSpent(userID, year, month, budget.CategoryID)
		if err != nil {
			// Ledger unavailable: keep the stale value, it is still a
			// consistent snapshot of an earlier ledger state.
			return fmt.Errorf("compute spent for budget %d: %w", budget.ID, err)
		}

		if spent.Equal(budget.SpentAmount) {
			continue
		}

		if err := s.spentWriter.UpdateSpentAmount(budget.ID, spent); err != nil {
			return fmt.Errorf("persist spent for budget %d: %w", budget.ID, err)
		}
		budget.SpentAmount = spent

		if err := s.alerts.Evaluate(budget); err != nil {
			s.logger.Warn().Err(err).
				Int32("budget_id", budget.ID).
				Msg("Alert evaluation failed after spent update")
		}
	}

	return nil
}

// OnExpenseTransactionCommitted is invoked after an expense transaction is
// created or deleted. Every budget of the period is recomputed: the expense
// affects the general aggregate regardless of category and exactly one
// category aggregate.
func (s *BudgetSyncService) OnExpenseTransactionCommitted(userID uuid.UUID, year, month int) {
	s.recompute(userID, year, month)
}

// OnExpenseTransactionEdited is invoked after an edit that may have moved the
// transaction between periods. The old period is always recomputed; the new
// one too when it differs.
func (s *BudgetSyncService) OnExpenseTransactionEdited(userID uuid.UUID, oldYear, oldMonth, newYear, newMonth int) {
	s.recompute(userID, oldYear, oldMonth)
	if !util.SamePeriod(oldYear, oldMonth, newYear, newMonth) {
		s.recompute(userID, newYear, newMonth)
	}
}

// recompute absorbs failures: the triggering ledger mutation has already
// committed and must not be failed by a budget-side problem. Stale spent
// amounts self-heal on the next successful recomputation.
func (s *BudgetSyncService) recompute(userID uuid.UUID, year, month int) {
	if err := s.UpdateSpentAmounts(userID, year, month); err != nil {
		s.logger.Warn().Err(err).
			Str("user_id", userID.String()).
			Int("year", year).
			Int("month", month).
			Msg("Budget recomputation failed, spent amounts left stale")
	}
}
