package transport

import (
	"errors"
	"net/http"
	"strconv"

	"vending-inventory/internal/domain"
	"vending-inventory/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Error codes carried in the response envelope, one per failure kind
const (
	codeInvalidInput     = "invalid_input"
	codeDuplicateName    = "duplicate_name"
	codeNotFound         = "not_found"
	codeAlreadyStocked   = "already_stocked"
	codeProductInUse     = "product_in_use"
	codeStoreUnavailable = "store_unavailable"
	codeInternal         = "internal_error"
)

const alreadyStockedMessage = "product already exists in stocks, please edit or delete"

// respondWithDomainError maps a failure kind to its status and code. Store
// failures are logged in full but reach the client as a generic message.
func respondWithDomainError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var invalid *domain.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		middleware.RespondWithErrorCode(w, http.StatusBadRequest, codeInvalidInput, err.Error(), map[string]interface{}{
			"field": invalid.Field,
			"rule":  invalid.Rule,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		middleware.RespondWithErrorCode(w, http.StatusBadRequest, codeInvalidInput, err.Error(), nil)
	case errors.Is(err, domain.ErrDuplicateName):
		middleware.RespondWithErrorCode(w, http.StatusConflict, codeDuplicateName, err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		middleware.RespondWithErrorCode(w, http.StatusNotFound, codeNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrAlreadyStocked):
		middleware.RespondWithErrorCode(w, http.StatusConflict, codeAlreadyStocked, alreadyStockedMessage, nil)
	case errors.Is(err, domain.ErrProductInUse):
		middleware.RespondWithErrorCode(w, http.StatusConflict, codeProductInUse, err.Error(), nil)
	case errors.Is(err, domain.ErrStoreUnavailable):
		logger.Error("Store unavailable", zap.Error(err))
		middleware.RespondWithErrorCode(w, http.StatusServiceUnavailable, codeStoreUnavailable, domain.ErrStoreUnavailable.Error(), nil)
	default:
		logger.Error("Unexpected error", zap.Error(err))
		middleware.RespondWithErrorCode(w, http.StatusInternalServerError, codeInternal, "internal server error", nil)
	}
}

// respondWithDecodeError answers a body that failed to decode or validate
func respondWithDecodeError(w http.ResponseWriter, err error) {
	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	middleware.RespondWithErrorCode(w, http.StatusBadRequest, codeInvalidInput, "invalid request body", nil)
}

// idParam reads a positive integer path parameter
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		middleware.RespondWithErrorCode(w, http.StatusBadRequest, codeInvalidInput, "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

// MessageResponse acknowledges an operation that has no entity to return
type MessageResponse struct {
	Message string `json:"message"`
}
