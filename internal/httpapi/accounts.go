// Account handlers: chart-of-accounts CRUD.
package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kasbuku/kasbuku/internal/ledger"
)

func (s *Server) postAccount(w http.ResponseWriter, r *http.Request) {
	v := r.Context().Value(ctxKeyPostAccount)
	in, ok := v.(ledger.Account)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated request missing"})
		return
	}
	acc, err := s.accountSvc.Create(r.Context(), in)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, toAccountResponse(acc))
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accs, err := s.accountSvc.List(r.Context())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	out := make([]accountResponse, 0, len(accs))
	for _, a := range accs {
		out = append(out, toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	acc, err := s.accountSvc.Get(r.Context(), id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(acc))
}

// updateAccount applies a partial update. Fields absent from the payload keep
// their current value; identity fields are frozen once entries reference the
// account.
func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	var req accountUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	acc, err := s.accountSvc.Get(r.Context(), id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if req.Code != nil {
		acc.Code = *req.Code
	}
	if req.Name != nil {
		acc.Name = *req.Name
	}
	if req.Category != nil {
		acc.Category = ledger.Category(*req.Category)
	}
	if req.NormalBalance != nil {
		acc.NormalBalance = ledger.Side(*req.NormalBalance)
	}
	if req.Control != nil {
		acc.Control = ledger.ControlRole(*req.Control)
		if acc.Control == "" {
			acc.Control = ledger.ControlNone
		}
	}
	updated, err := s.accountSvc.Update(r.Context(), acc)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(updated))
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	if err := s.accountSvc.Delete(r.Context(), id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
