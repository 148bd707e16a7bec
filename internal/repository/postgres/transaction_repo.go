package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/util"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository implements domain.TransactionRepository (and with it
// domain.LedgerReader) using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, user_id, name, amount, type, category_id, transaction_date, notes, receipt_key, created_at, updated_at`

// Create inserts a transaction
func (r *TransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	var transactionDate pgtype.Date
	transactionDate.Time = transaction.TransactionDate
	transactionDate.Valid = true

	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO transactions (user_id, name, amount, type, category_id, transaction_date, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+transactionColumns,
		pgUUID(transaction.UserID), transaction.Name, amount, string(transaction.Type),
		pgInt4Ptr(transaction.CategoryID), transactionDate, pgTextPtr(transaction.Notes))

	return scanTransaction(row)
}

// GetByID retrieves a transaction by ID, scoped to its owner
func (r *TransactionRepository) GetByID(userID uuid.UUID, id int32) (*domain.Transaction, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = $1 AND id = $2`,
		pgUUID(userID), id)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// GetByUser retrieves transactions of a user with optional filters
func (r *TransactionRepository) GetByUser(userID uuid.UUID, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{pgUUID(userID)}

	if filters != nil {
		if filters.Year != nil && filters.Month != nil {
			start, end := util.MonthInterval(*filters.Year, *filters.Month)
			query += fmt.Sprintf(" AND transaction_date >= $%d AND transaction_date < $%d", len(args)+1, len(args)+2)
			args = append(args, start, end)
		}
		if filters.Type != nil {
			query += fmt.Sprintf(" AND type = $%d", len(args)+1)
			args = append(args, string(*filters.Type))
		}
	}
	query += ` ORDER BY transaction_date DESC, id DESC`

	rows, err := r.pool.Query(context.Background(), query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// Update replaces a transaction's mutable state
func (r *TransactionRepository) Update(userID uuid.UUID, id int32, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(data.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	var transactionDate pgtype.Date
	transactionDate.Time = data.TransactionDate
	transactionDate.Valid = true

	row := r.pool.QueryRow(context.Background(),
		`UPDATE transactions
		 SET name = $3, amount = $4, type = $5, category_id = $6, transaction_date = $7, notes = $8, updated_at = now()
		 WHERE user_id = $1 AND id = $2
		 RETURNING `+transactionColumns,
		pgUUID(userID), id, data.Name, amount, string(data.Type),
		pgInt4Ptr(data.CategoryID), transactionDate, pgTextPtr(data.Notes))

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM transactions WHERE user_id = $1 AND id = $2`, pgUUID(userID), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// SetReceiptKey attaches or clears the receipt object key
func (r *TransactionRepository) SetReceiptKey(userID uuid.UUID, id int32, key *string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE transactions SET receipt_key = $3, updated_at = now() WHERE user_id = $1 AND id = $2 RETURNING `+transactionColumns,
		pgUUID(userID), id, pgTextPtr(key))

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// ListExpenseTransactions returns the committed expense transactions of a
// user dated within the calendar month. This is the ledger snapshot the
// aggregation engine reads.
func (r *TransactionRepository) ListExpenseTransactions(userID uuid.UUID, year, month int) ([]*domain.Transaction, error) {
	start, end := util.MonthInterval(year, month)

	rows, err := r.pool.Query(context.Background(),
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = $1 AND type = 'expense' AND transaction_date >= $2 AND transaction_date < $3
		 ORDER BY id`,
		pgUUID(userID), start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t               domain.Transaction
		userID          pgtype.UUID
		amount          pgtype.Numeric
		txType          string
		categoryID      pgtype.Int4
		transactionDate pgtype.Date
		notes           pgtype.Text
		receiptKey      pgtype.Text
		createdAt       pgtype.Timestamptz
		updatedAt       pgtype.Timestamptz
	)

	if err := row.Scan(&t.ID, &userID, &t.Name, &amount, &txType, &categoryID, &transactionDate, &notes, &receiptKey, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	t.UserID = uuid.UUID(userID.Bytes)
	t.Amount = pgNumericToDecimal(amount)
	t.Type = domain.TransactionType(txType)
	if categoryID.Valid {
		id := categoryID.Int32
		t.CategoryID = &id
	}
	t.TransactionDate = transactionDate.Time
	if notes.Valid {
		t.Notes = &notes.String
	}
	if receiptKey.Valid {
		t.ReceiptKey = &receiptKey.String
	}
	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time
	return &t, nil
}

func scanTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	transactions := []*domain.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func pgTextPtr(v *string) pgtype.Text {
	if v == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *v, Valid: true}
}
