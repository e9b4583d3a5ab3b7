package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/mkoskinen/laskutus/finance"
	"github.com/mkoskinen/laskutus/models"
)

// Response is the standard JSON envelope for all API responses.
type Response struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

// DB is the shared database connection used by all handlers.
var DB *sql.DB

// Engine is the shared financial document engine.
var Engine *finance.Service

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Data: data})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Error: msg})
}

// writeEngineError maps the engine's error taxonomy to HTTP statuses.
// Business-rule failures surface verbatim so the caller can act on the
// entity id or document number in the message.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, finance.ErrCustomerNotFound),
		errors.Is(err, finance.ErrItemNotFound),
		errors.Is(err, finance.ErrInvoiceNotFound),
		errors.Is(err, finance.ErrOrderNotFound),
		errors.Is(err, finance.ErrInvoiceLineNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, finance.ErrInvalidTransition),
		errors.Is(err, finance.ErrOrderNotOpen),
		errors.Is(err, finance.ErrAlreadyCredited),
		errors.Is(err, finance.ErrCreditNoteOfCreditNote),
		errors.Is(err, finance.ErrCreditNoteImmutable),
		errors.Is(err, finance.ErrCreditExceedsLine),
		errors.Is(err, finance.ErrNumberConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, finance.ErrInvalidReferenceInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, finance.ErrSellerProfileIncomplete):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrDivisionByZero):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// BasicAuth is middleware that enforces HTTP Basic Authentication.
func BasicAuth(next http.Handler) http.Handler {
	user := os.Getenv("AUTH_USER")
	pass := os.Getenv("AUTH_PASS")

	// If no credentials are configured, skip auth
	if user == "" && pass == "" {
		slog.Warn("AUTH_USER and AUTH_PASS not set, API is unauthenticated")
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="laskutus"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
