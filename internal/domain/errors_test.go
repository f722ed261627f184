package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestCommissionError_Is(t *testing.T) {
	err := NewCommissionError(KindInvalidAmount, "item-1", fmt.Errorf("%w: subtotal 0", ErrInvalidAmount))

	if !errors.Is(err, ErrInvalidAmount) {
		t.Error("expected error to match ErrInvalidAmount")
	}

	if errors.Is(err, ErrAlreadyProcessed) {
		t.Error("did not expect error to match ErrAlreadyProcessed")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	cerr, ok := AsCommissionError(wrapped)
	if !ok || cerr.Kind != KindInvalidAmount {
		t.Fatalf("expected to extract commission error, got %v", wrapped)
	}
}

func TestCommissionError_DefaultsToSentinel(t *testing.T) {
	err := NewCommissionError(KindAlreadyProcessed, "item-1", nil)

	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Errorf("expected sentinel, got %v", err.Err)
	}

	if !err.Soft() {
		t.Error("expected already processed to be soft")
	}
}

func TestErrorKind_Classification(t *testing.T) {
	tests := []struct {
		kind      ErrorKind
		soft      bool
		retryable bool
	}{
		{KindAlreadyProcessed, true, false},
		{KindNoEligibleSeller, true, false},
		{KindInvalidAmount, false, false},
		{KindSellerNotFound, false, false},
		{KindSellerInactive, false, false},
		{KindInvalidCommissionAmount, false, false},
		{KindStoreFailure, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.Soft(); got != tt.soft {
				t.Errorf("Soft() = %v, want %v", got, tt.soft)
			}

			if got := tt.kind.Retryable(); got != tt.retryable {
				t.Errorf("Retryable() = %v, want %v", got, tt.retryable)
			}
		})
	}
}
