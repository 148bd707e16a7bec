package postgres

import (
	"context"
	"errors"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// BudgetRepository implements domain.BudgetRepository and
// domain.BudgetSpentWriter using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

const budgetColumns = `id, user_id, category_id, planned_amount, spent_amount, year, month, created_at, updated_at`

const createBudgetQuery = `
INSERT INTO budgets (user_id, category_id, planned_amount, spent_amount, year, month)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + budgetColumns

// Create inserts a budget. Uniqueness per (user, category-or-none, year,
// month) is enforced by the database; violations map to ErrDuplicateBudget.
func (r *BudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	ctx := context.Background()

	planned, err := decimalToPgNumeric(budget.PlannedAmount)
	if err != nil {
		return nil, err
	}
	spent, err := decimalToPgNumeric(budget.SpentAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, createBudgetQuery,
		pgUUID(budget.UserID), pgInt4Ptr(budget.CategoryID), planned, spent, budget.Year, budget.Month)

	created, err := scanBudget(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateBudget
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a budget by ID, scoped to its owner
func (r *BudgetRepository) GetByID(userID uuid.UUID, id int32) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 AND id = $2`,
		pgUUID(userID), id)

	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// GetAllByUser retrieves every budget of a user, newest period first
func (r *BudgetRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY year DESC, month DESC, id`,
		pgUUID(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBudgets(rows)
}

// GetByPeriod retrieves all budgets of a user for one month
func (r *BudgetRepository) GetByPeriod(userID uuid.UUID, year, month int) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 AND year = $2 AND month = $3 ORDER BY id`,
		pgUUID(userID), year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBudgets(rows)
}

// GetGeneral retrieves the period's general budget
func (r *BudgetRepository) GetGeneral(userID uuid.UUID, year, month int) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 AND year = $2 AND month = $3 AND category_id IS NULL`,
		pgUUID(userID), year, month)

	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// GetByCategory retrieves the period's budget for one category
func (r *BudgetRepository) GetByCategory(userID uuid.UUID, categoryID int32, year, month int) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 AND category_id = $2 AND year = $3 AND month = $4`,
		pgUUID(userID), categoryID, year, month)

	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// UpdatePlannedAmount changes the planned amount, leaving spent untouched
func (r *BudgetRepository) UpdatePlannedAmount(userID uuid.UUID, id int32, amount decimal.Decimal) (*domain.Budget, error) {
	planned, err := decimalToPgNumeric(amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(),
		`UPDATE budgets SET planned_amount = $3, updated_at = now() WHERE user_id = $1 AND id = $2 RETURNING `+budgetColumns,
		pgUUID(userID), id, planned)

	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// UpdateSpentAmount persists a recomputed spent amount. Only the sync engine
// holds this method, through domain.BudgetSpentWriter.
func (r *BudgetRepository) UpdateSpentAmount(id int32, amount decimal.Decimal) error {
	spent, err := decimalToPgNumeric(amount)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(context.Background(),
		`UPDATE budgets SET spent_amount = $2, updated_at = now() WHERE id = $1`, id, spent)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

// Delete removes a budget. Its alerts stay behind as history and
// transactions are untouched.
func (r *BudgetRepository) Delete(userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM budgets WHERE user_id = $1 AND id = $2`, pgUUID(userID), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		b          domain.Budget
		userID     pgtype.UUID
		categoryID pgtype.Int4
		planned    pgtype.Numeric
		spent      pgtype.Numeric
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)

	if err := row.Scan(&b.ID, &userID, &categoryID, &planned, &spent, &b.Year, &b.Month, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	b.UserID = uuid.UUID(userID.Bytes)
	if categoryID.Valid {
		id := categoryID.Int32
		b.CategoryID = &id
	}
	b.PlannedAmount = pgNumericToDecimal(planned)
	b.SpentAmount = pgNumericToDecimal(spent)
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time
	return &b, nil
}

func scanBudgets(rows pgx.Rows) ([]*domain.Budget, error) {
	budgets := []*domain.Budget{}
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func pgInt4Ptr(v *int32) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: *v, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return num, nil
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	if n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
