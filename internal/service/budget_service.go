package service

import (
	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget business logic. SpentAmount never passes
// through here on its own: it is produced by the aggregation engine at
// creation time and by the sync service afterwards.
type BudgetService struct {
	budgetRepo   domain.BudgetRepository
	categoryRepo domain.CategoryRepository
	userRepo     domain.UserRepository
	aggregation  *AggregationService
	alerts       *AlertService
	sync         *BudgetSyncService
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(
	budgetRepo domain.BudgetRepository,
	categoryRepo domain.CategoryRepository,
	userRepo domain.UserRepository,
	aggregation *AggregationService,
	alerts *AlertService,
	sync *BudgetSyncService,
) *BudgetService {
	return &BudgetService{
		budgetRepo:   budgetRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		aggregation:  aggregation,
		alerts:       alerts,
		sync:         sync,
	}
}

// CreateGeneralBudget creates the period's general budget, covering all
// expense categories.
func (s *BudgetService) CreateGeneralBudget(userID uuid.UUID, plannedAmount decimal.Decimal, year, month int) (*domain.Budget, error) {
	if err := s.validateCreate(userID, plannedAmount, year, month); err != nil {
		return nil, err
	}

	if _, err := s.budgetRepo.GetGeneral(userID, year, month); err == nil {
		return nil, domain.ErrDuplicateBudget
	}

	return s.create(&domain.Budget{
		UserID:        userID,
		PlannedAmount: plannedAmount,
		Year:          year,
		Month:         month,
	})
}

// CreateCategoryBudget creates a budget scoped to one expense category.
func (s *BudgetService) CreateCategoryBudget(userID uuid.UUID, categoryID int32, plannedAmount decimal.Decimal, year, month int) (*domain.Budget, error) {
	if err := s.validateCreate(userID, plannedAmount, year, month); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(userID, categoryID)
	if err != nil {
		return nil, domain.ErrCategoryNotFound
	}
	if category.Type != domain.CategoryTypeExpense {
		return nil, domain.ErrCategoryTypeMismatch
	}

	if _, err := s.budgetRepo.GetByCategory(userID, categoryID, year, month); err == nil {
		return nil, domain.ErrDuplicateBudget
	}

	return s.create(&domain.Budget{
		UserID:        userID,
		CategoryID:    &categoryID,
		PlannedAmount: plannedAmount,
		Year:          year,
		Month:         month,
	})
}

func (s *BudgetService) validateCreate(userID uuid.UUID, plannedAmount decimal.Decimal, year, month int) error {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return domain.ErrUserNotFound
	}
	if plannedAmount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	return util.ValidatePeriod(year, month)
}

// create persists a budget with its spent amount seeded from the ledger, so a
// mid-month budget reflects prior spending instead of starting at zero. The
// seed counts as a spent write, so the alert policy runs immediately.
func (s *BudgetService) create(budget *domain.Budget) (*domain.Budget, error) {
	spent, err := s.aggregation.ComputeSpent(budget.UserID, budget.Year, budget.Month, budget.CategoryID)
	if err != nil {
		return nil, err
	}
	budget.SpentAmount = spent

	created, err := s.budgetRepo.Create(budget)
	if err != nil {
		return nil, err
	}

	if err := s.alerts.Evaluate(created); err != nil {
		log.Warn().Err(err).Int32("budget_id", created.ID).Msg("Alert evaluation failed for new budget")
	}

	return created, nil
}

// UpdatePlannedAmount changes the planned amount only; the spent amount is
// untouched and no alert evaluation happens here.
func (s *BudgetService) UpdatePlannedAmount(userID uuid.UUID, budgetID int32, amount decimal.Decimal) (*domain.Budget, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	return s.budgetRepo.UpdatePlannedAmount(userID, budgetID, amount)
}

// DeleteBudget removes a budget. Transactions and existing alerts are left
// alone.
func (s *BudgetService) DeleteBudget(userID uuid.UUID, budgetID int32) error {
	return s.budgetRepo.Delete(userID, budgetID)
}

// GetBudget returns one budget, ownership-checked.
func (s *BudgetService) GetBudget(userID uuid.UUID, budgetID int32) (*domain.Budget, error) {
	return s.budgetRepo.GetByID(userID, budgetID)
}

// GetBudgets returns all budgets of a user.
func (s *BudgetService) GetBudgets(userID uuid.UUID) ([]*domain.Budget, error) {
	return s.budgetRepo.GetAllByUser(userID)
}

// GetBudgetsForPeriod returns all budgets of a user for one month.
func (s *BudgetService) GetBudgetsForPeriod(userID uuid.UUID, year, month int) ([]*domain.Budget, error) {
	if err := util.ValidatePeriod(year, month); err != nil {
		return nil, err
	}
	return s.budgetRepo.GetByPeriod(userID, year, month)
}

// GetGeneralBudget returns the period's general budget if one exists.
func (s *BudgetService) GetGeneralBudget(userID uuid.UUID, year, month int) (*domain.Budget, error) {
	if err := util.ValidatePeriod(year, month); err != nil {
		return nil, err
	}
	return s.budgetRepo.GetGeneral(userID, year, month)
}

// RecomputePeriod forces a full recomputation of the period, for drift
// repair. Unlike the ledger-triggered path, failures surface to the caller.
func (s *BudgetService) RecomputePeriod(userID uuid.UUID, year, month int) ([]*domain.Budget, error) {
	if err := util.ValidatePeriod(year, month); err != nil {
		return nil, err
	}
	if err := s.sync.UpdateSpentAmounts(userID, year, month); err != nil {
		return nil, err
	}
	return s.budgetRepo.GetByPeriod(userID, year, month)
}
