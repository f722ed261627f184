package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/gocommission/internal/adapter/http/dto"
	"github.com/iho/gocommission/internal/domain"
	"github.com/iho/gocommission/internal/usecase"
)

type stubLedgerService struct {
	report *usecase.ConsistencyReport
	err    error
}

func (s *stubLedgerService) CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error) {
	return s.report, s.err
}

func TestLedgerHandler_CheckConsistency(t *testing.T) {
	violation := &domain.ConservationViolation{
		SaleItemID:            "sale-1",
		TotalCommissionAmount: decimal.NewFromInt(205),
		EntriesTotal:          decimal.NewFromInt(125),
	}

	tests := []struct {
		name       string
		svc        *stubLedgerService
		expected   int
		consistent bool
	}{
		{
			name:       "consistent",
			svc:        &stubLedgerService{report: &usecase.ConsistencyReport{Consistent: true}},
			expected:   http.StatusOK,
			consistent: true,
		},
		{
			name: "inconsistent",
			svc: &stubLedgerService{
				report: &usecase.ConsistencyReport{Violations: []*domain.ConservationViolation{violation}},
				err:    usecase.ErrInconsistentLedger,
			},
			expected: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			NewLedgerHandler(tt.svc).CheckConsistency(rr, httptest.NewRequest(http.MethodGet, "/ledger/consistency", nil))

			if rr.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rr.Code)
			}

			var resp dto.ConsistencyResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Consistent != tt.consistent {
				t.Fatalf("expected consistent=%v, got %+v", tt.consistent, resp)
			}
		})
	}
}

func TestLedgerHandler_CheckConsistencyStoreError(t *testing.T) {
	rr := httptest.NewRecorder()
	svc := &stubLedgerService{err: errors.New("db down")}
	NewLedgerHandler(svc).CheckConsistency(rr, httptest.NewRequest(http.MethodGet, "/ledger/consistency", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	ok := PingerFunc(func(ctx context.Context) error { return nil })
	down := PingerFunc(func(ctx context.Context) error { return errors.New("down") })

	tests := []struct {
		name     string
		postgres Pinger
		redis    Pinger
		expected int
	}{
		{"all healthy", ok, ok, http.StatusOK},
		{"redis optional", ok, nil, http.StatusOK},
		{"postgres down", down, ok, http.StatusServiceUnavailable},
		{"redis down", ok, down, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.postgres, tt.redis)

			rr := httptest.NewRecorder()
			h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
			if rr.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rr.Code)
			}

			rr = httptest.NewRecorder()
			h.Liveness(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
			if rr.Code != http.StatusOK {
				t.Fatalf("liveness should always be 200, got %d", rr.Code)
			}
		})
	}
}
