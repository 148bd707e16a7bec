package service

import (
	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregationService computes a budget's spent amount from the ledger. It is
// a pure function of the ledger snapshot it reads: calling it twice without an
// intervening ledger mutation returns identical results.
type AggregationService struct {
	ledger domain.LedgerReader
}

// NewAggregationService creates a new AggregationService
func NewAggregationService(ledger domain.LedgerReader) *AggregationService {
	return &AggregationService{ledger: ledger}
}

// ComputeSpent sums the expense transactions for the user's period. With a nil
// categoryID it covers every expense category (the general budget aggregates
// all spending, independent of any category budgets over the same rows).
func (s *AggregationService) ComputeSpent(userID uuid.UUID, year, month int, categoryID *int32) (decimal.Decimal, error) {
	transactions, err := s.ledger.ListExpenseTransactions(userID, year, month)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, tx := range transactions {
		if categoryID != nil {
			if tx.CategoryID == nil || *tx.CategoryID != *categoryID {
				continue
			}
		}
		total = total.Add(tx.Amount)
	}
	return total, nil
}
