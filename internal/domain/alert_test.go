package domain

import (
	"errors"
	"testing"
)

func TestAlertValidate(t *testing.T) {
	a := &Alert{Kind: AlertKindWarning, Threshold: DefaultWarningThreshold}
	if err := a.Validate(); err != nil {
		t.Errorf("expected threshold %d to be valid, got %v", a.Threshold, err)
	}

	a.Threshold = MinAlertThreshold
	if err := a.Validate(); err != nil {
		t.Errorf("expected threshold %d to be valid, got %v", a.Threshold, err)
	}

	a.Threshold = MaxAlertThreshold
	if err := a.Validate(); err != nil {
		t.Errorf("expected threshold %d to be valid, got %v", a.Threshold, err)
	}
}

func TestAlertValidate_OutOfRange(t *testing.T) {
	a := &Alert{Kind: AlertKindWarning, Threshold: MinAlertThreshold - 1}
	if err := a.Validate(); !errors.Is(err, ErrInvalidAlertThreshold) {
		t.Errorf("expected ErrInvalidAlertThreshold below the band, got %v", err)
	}

	a.Threshold = MaxAlertThreshold + 1
	if err := a.Validate(); !errors.Is(err, ErrInvalidAlertThreshold) {
		t.Errorf("expected ErrInvalidAlertThreshold above the band, got %v", err)
	}

	a.Threshold = 0
	if err := a.Validate(); !errors.Is(err, ErrInvalidAlertThreshold) {
		t.Errorf("expected ErrInvalidAlertThreshold for an unset threshold, got %v", err)
	}
}
