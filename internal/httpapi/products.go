// Product handlers: registry plus the standalone movement endpoint.
package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kasbuku/kasbuku/internal/ledger"
)

func (s *Server) postProduct(w http.ResponseWriter, r *http.Request) {
	v := r.Context().Value(ctxKeyPostProduct)
	in, ok := v.(ledger.Product)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated request missing"})
		return
	}
	prod, err := s.inventorySvc.Create(r.Context(), in)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	resp, err := toProductResponse(prod)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, resp)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	prods, err := s.inventorySvc.List(r.Context())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	out := make([]productResponse, 0, len(prods))
	for _, p := range prods {
		resp, err := toProductResponse(p)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		out = append(out, resp)
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid product id")
		return
	}
	prod, err := s.inventorySvc.Get(r.Context(), id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	resp, err := toProductResponse(prod)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, resp)
}

// postMovement applies a standalone stock movement and returns the recosted
// product.
func (s *Server) postMovement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid product id")
		return
	}
	var req movementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := s.toMovement(id, req)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	prod, err := s.inventorySvc.Apply(r.Context(), m)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	resp, err := toProductResponse(prod)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, resp)
}
