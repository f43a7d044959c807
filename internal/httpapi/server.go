// Package httpapi wires the HTTP surface of the bookkeeping service.
// It keeps handlers thin, delegating business rules to the service layer.
package httpapi

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kasbuku/kasbuku/internal/proofs"
	"github.com/kasbuku/kasbuku/internal/service/account"
	"github.com/kasbuku/kasbuku/internal/service/inventory"
	"github.com/kasbuku/kasbuku/internal/service/journal"
	"github.com/kasbuku/kasbuku/internal/service/report"
)

// Server wires handlers and middleware using Chi.
// It composes read (repo) and write (writer) dependencies through services.
type Server struct {
	accountSvc   account.Service
	inventorySvc inventory.Service
	journalSvc   journal.Service
	reportSvc    report.Service
	proofStore   *proofs.Store
	store        Repository
	currency     string
	log          *slog.Logger
	rt           *chi.Mux
}

// New constructs the HTTP server with routes and middleware. The currency is
// the single book currency every amount is denominated in.
func New(store Repository, proofStore *proofs.Store, logger *slog.Logger, currency string) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{
		accountSvc:   account.New(store, store),
		inventorySvc: inventory.New(store, store, currency),
		journalSvc:   journal.New(store, store),
		reportSvc:    report.New(store, currency),
		proofStore:   proofStore,
		store:        store,
		currency:     currency,
		log:          logger,
		rt:           r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route middleware.
func (s *Server) routes() {
	// Accounts (v1)
	s.rt.With(s.validatePostAccount()).Post("/v1/accounts", s.postAccount)
	s.rt.Get("/v1/accounts", s.listAccounts)
	s.rt.Get("/v1/accounts/{id}", s.getAccount)
	s.rt.Patch("/v1/accounts/{id}", s.updateAccount)
	s.rt.Delete("/v1/accounts/{id}", s.deleteAccount)
	// Products and inventory movements (v1)
	s.rt.With(s.validatePostProduct()).Post("/v1/products", s.postProduct)
	s.rt.Get("/v1/products", s.listProducts)
	s.rt.Get("/v1/products/{id}", s.getProduct)
	s.rt.Post("/v1/products/{id}/movements", s.postMovement)
	// Transactions (v1)
	s.rt.With(s.validatePostTransaction()).Post("/v1/transactions", s.postTransaction)
	s.rt.With(s.validateDateRange()).Get("/v1/transactions", s.listTransactions)
	s.rt.Get("/v1/transactions/{id}", s.getTransaction)
	s.rt.Delete("/v1/transactions/{id}", s.deleteTransaction)
	// Reports (v1)
	s.rt.With(s.validateDateRange()).Get("/v1/reports", s.getReport)
	// Proof documents (v1)
	s.rt.Post("/v1/proofs", s.postProof)
	s.rt.Get("/v1/proofs/{ref}", s.getProof)
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
