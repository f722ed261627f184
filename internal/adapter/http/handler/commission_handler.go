package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/mo"

	"github.com/iho/gocommission/internal/adapter/http/dto"
	"github.com/iho/gocommission/internal/domain"
	"github.com/iho/gocommission/internal/usecase"
)

// CommissionService processes a single sale item.
type CommissionService interface {
	ProcessCommission(ctx context.Context, saleItemID string) mo.Result[*domain.Receipt]
}

// BatchService processes pending sale items.
type BatchService interface {
	ProcessPending(ctx context.Context, limit int) (*usecase.BatchSummary, error)
}

// CommissionHandler handles commission processing requests.
type CommissionHandler struct {
	commissions CommissionService
	batch       BatchService
}

// NewCommissionHandler creates a new CommissionHandler.
func NewCommissionHandler(commissions CommissionService, batch BatchService) *CommissionHandler {
	return &CommissionHandler{commissions: commissions, batch: batch}
}

// Process runs the commission for one sale item.
func (h *CommissionHandler) Process(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := domain.ValidateID(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid sale item ID", err.Error())
		return
	}

	receipt, err := h.commissions.ProcessCommission(r.Context(), id).Get()
	if err != nil {
		writeCommissionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReceiptFromDomain(receipt))
}

// ProcessBatch processes up to ?limit unprocessed sale items.
func (h *CommissionHandler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", domain.DefaultPageSize)
	if limit <= 0 {
		writeError(w, http.StatusBadRequest, "invalid limit", "limit must be positive")
		return
	}

	summary, err := h.batch.ProcessPending(r.Context(), limit)
	if err != nil {
		writeError(w, mapDomainError(err), "batch failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchSummaryFromUseCase(summary))
}
