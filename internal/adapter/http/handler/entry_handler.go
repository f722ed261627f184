package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gocommission/internal/adapter/http/dto"
	"github.com/iho/gocommission/internal/domain"
	"github.com/iho/gocommission/internal/usecase"
)

// EntryService reads ledger entries and receipts.
type EntryService interface {
	GetEntriesByBeneficiary(ctx context.Context, input usecase.GetEntriesByBeneficiaryInput) ([]*domain.LedgerEntry, error)
	GetEntriesBySaleItem(ctx context.Context, saleItemID string) ([]*domain.LedgerEntry, error)
	GetBeneficiaryBalance(ctx context.Context, beneficiaryID string) (decimal.Decimal, error)
	GetReceipt(ctx context.Context, saleItemID string) (*domain.Receipt, error)
}

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	entries EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entries EntryService) *EntryHandler {
	return &EntryHandler{entries: entries}
}

// ListByBeneficiary lists entries credited to a beneficiary, newest first.
func (h *EntryHandler) ListByBeneficiary(w http.ResponseWriter, r *http.Request) {
	beneficiaryID := chi.URLParam(r, "id")
	if err := domain.ValidateID(beneficiaryID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid beneficiary ID", err.Error())
		return
	}

	entries, err := h.entries.GetEntriesByBeneficiary(r.Context(), usecase.GetEntriesByBeneficiaryInput{
		BeneficiaryID: beneficiaryID,
		Limit:         parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset:        parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// ListBySaleItem lists entries created for a sale item.
func (h *EntryHandler) ListBySaleItem(w http.ResponseWriter, r *http.Request) {
	saleItemID := chi.URLParam(r, "id")
	if err := domain.ValidateID(saleItemID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid sale item ID", err.Error())
		return
	}

	entries, err := h.entries.GetEntriesBySaleItem(r.Context(), saleItemID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// GetBalance returns a beneficiary's commission balance.
func (h *EntryHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	beneficiaryID := chi.URLParam(r, "id")
	if err := domain.ValidateID(beneficiaryID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid beneficiary ID", err.Error())
		return
	}

	balance, err := h.entries.GetBeneficiaryBalance(r.Context(), beneficiaryID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		BeneficiaryID: beneficiaryID,
		Balance:       balance,
	})
}

// GetReceipt returns the receipt of a processed sale item.
func (h *EntryHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	saleItemID := chi.URLParam(r, "id")
	if err := domain.ValidateID(saleItemID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid sale item ID", err.Error())
		return
	}

	receipt, err := h.entries.GetReceipt(r.Context(), saleItemID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get receipt", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReceiptFromDomain(receipt))
}
