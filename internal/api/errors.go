package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fastprodman/battlearena/internal/oracle"
	"github.com/fastprodman/battlearena/internal/services/arena"
)

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, arena.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, arena.ErrAuthRequired):
		writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, arena.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, arena.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, arena.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, oracle.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "price oracle unavailable")
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
