package httpx

import (
	"errors"
	"net/http"

	"github.com/meridian-fin/meridian/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Validation failures are client errors; exhausted store retries map to
// service-unavailable so callers know the request itself was well-formed.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidCursor):
		Problem(w, http.StatusBadRequest, "Invalid Cursor", err.Error())
	case errors.Is(err, shared.ErrUnsupportedEntity):
		Problem(w, http.StatusBadRequest, "Unsupported Entity", err.Error())
	case errors.Is(err, shared.ErrInvalidRange):
		Problem(w, http.StatusUnprocessableEntity, "Invalid Range", err.Error())
	case errors.Is(err, shared.ErrStoreTimeout):
		Problem(w, http.StatusGatewayTimeout, "Store Timeout", "the data store did not respond in time")
	case errors.Is(err, shared.ErrStoreUnavailable):
		Problem(w, http.StatusServiceUnavailable, "Store Unavailable", "the data store is temporarily unavailable")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
