package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"eventease/internal/domain"
)

// WriteServiceError maps a service error to its HTTP status and envelope.
// Unexpected errors are logged and answered with a generic 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		conflict *domain.ConflictError
		blocked  *domain.DeletionBlockedError
		badRef   *domain.InvalidReferenceError
	)
	switch {
	case errors.As(err, &conflict):
		writeAPIError(w, http.StatusConflict, &APIError{
			Code:                 ErrCodeConflict,
			Message:              conflict.Error(),
			ConflictingBookingID: conflict.BookingID,
		})
	case errors.As(err, &blocked):
		WriteJSONError(w, http.StatusConflict, ErrCodeDeletionBlocked, blocked.Error())
	case errors.As(err, &badRef):
		WriteJSONError(w, http.StatusUnprocessableEntity, ErrCodeInvalidReference, badRef.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidReference):
		WriteJSONError(w, http.StatusUnprocessableEntity, ErrCodeInvalidReference, err.Error())
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicateEmail):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrDeletionBlocked):
		WriteJSONError(w, http.StatusConflict, ErrCodeDeletionBlocked, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}

// PathUUID reads the named path value and checks it is a UUID.
// On failure it writes a 400 and returns false.
func PathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "missing "+name)
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, name+" must be a valid UUID")
		return "", false
	}
	return id.String(), true
}
