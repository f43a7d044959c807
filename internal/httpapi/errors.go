package httpapi

import (
	"errors"
	"net/http"

	"github.com/kasbuku/kasbuku/internal/errs"
	"github.com/kasbuku/kasbuku/internal/service/account"
	"github.com/kasbuku/kasbuku/internal/service/inventory"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }
func notFound(w http.ResponseWriter)               { writeErr(w, http.StatusNotFound, "not_found", "not_found") }
func conflict(w http.ResponseWriter, msg, code string) {
	writeErr(w, http.StatusConflict, msg, code)
}
func unprocessable(w http.ResponseWriter, msg, code string) {
	writeErr(w, http.StatusUnprocessableEntity, msg, code)
}

// respondErr maps domain errors onto HTTP statuses. Unknown errors are treated
// as storage failures: logged with the request context, surfaced as an opaque
// 500 so internal error text never reaches the caller.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		notFound(w)
	case errors.Is(err, account.ErrCodeExists), errors.Is(err, inventory.ErrCodeExists):
		conflict(w, err.Error(), "code_exists")
	case errors.Is(err, errs.ErrAccountInUse):
		conflict(w, "account is referenced by journal entries", "account_in_use")
	case errors.Is(err, errs.ErrInsufficientStock):
		conflict(w, "insufficient stock", "insufficient_stock")
	case errors.Is(err, errs.ErrConflict):
		conflict(w, "conflict", "conflict")
	case errors.Is(err, errs.ErrUnbalanced):
		unprocessable(w, "sum(debits) must equal sum(credits)", "unbalanced_entry")
	case errors.Is(err, errs.ErrNoLines):
		unprocessable(w, "at least 1 line is required", "no_lines")
	case errors.Is(err, errs.ErrImmutable):
		unprocessable(w, "account identity is frozen once entries reference it", "immutable")
	case errors.Is(err, errs.ErrUnprocessable):
		unprocessable(w, "validation_error", "validation_error")
	case errors.Is(err, errs.ErrInvalid):
		badRequest(w, err.Error())
	default:
		s.log.Error("storage failure", "path", r.URL.Path, "err", err)
		writeErr(w, http.StatusInternalServerError, "internal_error", "internal_error")
	}
}
