package util

import (
	"testing"
	"time"
)

func TestValidatePeriod(t *testing.T) {
	valid := [][2]int{{2020, 1}, {2050, 12}, {2026, 6}}
	for _, p := range valid {
		if err := ValidatePeriod(p[0], p[1]); err != nil {
			t.Errorf("expected %d-%d to be valid, got: %v", p[0], p[1], err)
		}
	}

	invalid := [][2]int{{2019, 12}, {2051, 1}, {2026, 0}, {2026, 13}, {2026, -1}}
	for _, p := range invalid {
		if err := ValidatePeriod(p[0], p[1]); err == nil {
			t.Errorf("expected %d-%d to be invalid", p[0], p[1])
		}
	}
}

func TestMonthInterval(t *testing.T) {
	start, end := MonthInterval(2026, 2)

	if !start.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start: %v", start)
	}
	if !end.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end: %v", end)
	}
}

func TestMonthInterval_DecemberRollsOver(t *testing.T) {
	_, end := MonthInterval(2026, 12)
	if !end.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end: %v", end)
	}
}

func TestSamePeriod(t *testing.T) {
	if !SamePeriod(2026, 3, 2026, 3) {
		t.Error("expected same period")
	}
	if SamePeriod(2026, 3, 2026, 4) {
		t.Error("expected different period")
	}
	if SamePeriod(2025, 3, 2026, 3) {
		t.Error("expected different period")
	}
}
