package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kasbuku/kasbuku/internal/ledger"
)

type ctxKey string

const (
	ctxKeyPostAccount     ctxKey = "validatedPostAccount"
	ctxKeyPostProduct     ctxKey = "validatedPostProduct"
	ctxKeyPostTransaction ctxKey = "validatedPostTransaction"
	ctxKeyDateRange       ctxKey = "validatedDateRange"
)

// validatedTransaction carries a converted, pre-validated posting through the
// request context.
type validatedTransaction struct {
	trx       ledger.Transaction
	movements []ledger.InventoryMovement
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !requireJSON(w, r) {
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// validatePostAccount decodes and validates the POST /v1/accounts payload and
// stores the domain account in the request context for the handler to use.
func (s *Server) validatePostAccount() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req accountRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			a := toAccount(req)
			if a.Control == "" {
				a.Control = ledger.ControlNone
			}
			if err := s.accountSvc.ValidateCreate(a); err != nil {
				badRequest(w, err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostAccount, a)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validatePostProduct decodes and validates the POST /v1/products payload.
func (s *Server) validatePostProduct() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req productRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			p := ledger.Product{Code: req.Code, Name: req.Name}
			if err := s.inventorySvc.ValidateCreate(p); err != nil {
				badRequest(w, err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostProduct, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validatePostTransaction decodes the POST /v1/transactions payload, converts
// it to the domain shape and runs the full posting validation, including the
// debit/credit balance invariant and account/product existence.
func (s *Server) validatePostTransaction() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req postTransactionRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			trx, movements, err := s.toTransaction(req)
			if err != nil {
				badRequest(w, err.Error())
				return
			}
			if err := s.journalSvc.ValidatePost(r.Context(), trx, movements); err != nil {
				s.respondErr(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostTransaction, validatedTransaction{trx: trx, movements: movements})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validateDateRange parses optional start/end query params (YYYY-MM-DD,
// inclusive) and stores the resulting range in the request context. A start
// after end is allowed: the flow window is simply empty, while report
// balance-sheet totals only depend on end.
func (s *Server) validateDateRange() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var dr ledger.DateRange
			q := r.URL.Query()
			if v := q.Get("start"); v != "" {
				d, err := time.Parse(ledger.DateFormat, v)
				if err != nil {
					badRequest(w, "start must be YYYY-MM-DD")
					return
				}
				dr.Start = &d
			}
			if v := q.Get("end"); v != "" {
				d, err := time.Parse(ledger.DateFormat, v)
				if err != nil {
					badRequest(w, "end must be YYYY-MM-DD")
					return
				}
				dr.End = &d
			}
			ctx := context.WithValue(r.Context(), ctxKeyDateRange, dr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
