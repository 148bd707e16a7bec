package util

import (
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
)

// ValidatePeriod checks that a budget period falls inside the supported range.
func ValidatePeriod(year, month int) error {
	if year < domain.MinBudgetYear || year > domain.MaxBudgetYear {
		return domain.ErrInvalidPeriod
	}
	if month < 1 || month > 12 {
		return domain.ErrInvalidPeriod
	}
	return nil
}

// MonthInterval returns the half-open [start, end) interval covering the given
// calendar month in UTC.
func MonthInterval(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// SamePeriod reports whether two year/month pairs name the same calendar month.
func SamePeriod(aYear, aMonth, bYear, bMonth int) bool {
	return aYear == bYear && aMonth == bMonth
}
