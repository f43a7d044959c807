// Transaction handlers: atomic posting, windowed listing, fetch and delete.
package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kasbuku/kasbuku/internal/ledger"
)

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	v := r.Context().Value(ctxKeyPostTransaction)
	in, ok := v.(validatedTransaction)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated request missing"})
		return
	}
	trx, err := s.journalSvc.Post(r.Context(), in.trx, in.movements)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	resp, err := toTransactionResponse(trx)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, resp)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	v := r.Context().Value(ctxKeyDateRange)
	dr, ok := v.(ledger.DateRange)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated query missing"})
		return
	}
	trxs, err := s.journalSvc.List(r.Context(), dr)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	out := make([]transactionResponse, 0, len(trxs))
	for _, trx := range trxs {
		resp, err := toTransactionResponse(trx)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		out = append(out, resp)
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid transaction id")
		return
	}
	trx, err := s.journalSvc.Get(r.Context(), id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	resp, err := toTransactionResponse(trx)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, resp)
}

// deleteTransaction removes the transaction and its entries. Stock is not
// re-derived; correcting inventory after a deletion is an explicit follow-up
// movement.
func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid transaction id")
		return
	}
	if err := s.journalSvc.Delete(r.Context(), id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
