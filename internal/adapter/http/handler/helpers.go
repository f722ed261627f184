package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/gocommission/internal/adapter/http/dto"
	"github.com/iho/gocommission/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeCommissionError writes a failed commission attempt with its kind.
func writeCommissionError(w http.ResponseWriter, err error) {
	resp := dto.ErrorResponse{Error: "commission failed", Message: err.Error()}
	if cerr, ok := domain.AsCommissionError(err); ok {
		resp.Kind = string(cerr.Kind)
	}

	writeJSON(w, mapDomainError(err), resp)
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindAlreadyProcessed:        http.StatusConflict,
	domain.KindNoEligibleSeller:        http.StatusUnprocessableEntity,
	domain.KindSaleItemNotFound:        http.StatusNotFound,
	domain.KindInvalidAmount:           http.StatusUnprocessableEntity,
	domain.KindSellerNotFound:          http.StatusUnprocessableEntity,
	domain.KindSellerInactive:          http.StatusUnprocessableEntity,
	domain.KindInvalidCommissionAmount: http.StatusUnprocessableEntity,
	domain.KindStoreFailure:            http.StatusServiceUnavailable,
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	if cerr, ok := domain.AsCommissionError(err); ok {
		return kindStatus[cerr.Kind]
	}

	switch {
	case errors.Is(err, domain.ErrInvalidIDFormat):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSaleItemNotFound),
		errors.Is(err, domain.ErrBeneficiaryNotFound),
		errors.Is(err, domain.ErrLedgerEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyProcessed),
		errors.Is(err, domain.ErrSaleItemNotProcessed),
		errors.Is(err, domain.ErrConservationViolated):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
