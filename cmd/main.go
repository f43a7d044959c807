package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/kasbuku/kasbuku/internal/dictionary"
	"github.com/kasbuku/kasbuku/internal/httpapi"
	"github.com/kasbuku/kasbuku/internal/ledger"
	"github.com/kasbuku/kasbuku/internal/proofs"
	"github.com/kasbuku/kasbuku/internal/storage/memory"
	pgstore "github.com/kasbuku/kasbuku/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional .env for local dev; real deployments set the environment.
	_ = godotenv.Load()

	// Logger (slog to stdout). Level via LOG_LEVEL; format via LOG_FORMAT (json|text, default json)
	logger := buildLoggerFromEnv()
	slog.SetDefault(logger)

	currency := strings.TrimSpace(os.Getenv("CURRENCY"))
	if currency == "" {
		currency = "IDR"
	}
	addr := strings.TrimSpace(os.Getenv("ADDR"))
	if addr == "" {
		addr = ":8080"
	}
	proofDir := strings.TrimSpace(os.Getenv("PROOF_DIR"))
	if proofDir == "" {
		proofDir = "data/proofs"
	}

	proofStore, err := proofs.New(proofDir)
	if err != nil {
		logger.Error("failed to open proof store", "dir", proofDir, "err", err)
		os.Exit(1)
	}

	var store httpapi.Repository
	var closeFn func()

	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		// Use Postgres store when DATABASE_URL is provided
		pg, err := pgstore.Open(ctx, dsn, currency)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		closeFn = func() { pg.Close() }
		// Optional dev seed for compose/local
		if devSeedWanted() {
			accs, prods, err := pg.SeedDev(ctx)
			if err != nil {
				logger.Error("dev seed failed", "err", err)
			} else {
				logDevSeed(logger, "postgres", accs, prods)
				printDevSeedBanner(accs, prods)
			}
		}
		store = pg
		logger.Info("storage backend: postgres")
	} else {
		// Default to in-memory store with the starter chart
		mem := memory.New()
		if devSeedWanted() {
			accs, prods := seedMemory(mem, currency)
			logDevSeed(logger, "memory", accs, prods)
			printDevSeedBanner(accs, prods)
		}
		store = mem
		logger.Info("storage backend: memory")
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.New(store, proofStore, logger, currency).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("kasbuku service listening", "addr", srv.Addr, "currency", currency)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

func devSeedWanted() bool {
	dev := strings.ToLower(strings.TrimSpace(os.Getenv("DEV_SEED")))
	return dev == "1" || dev == "true" || dev == "yes"
}

// seedMemory loads the default chart and sample products into a fresh store.
func seedMemory(store *memory.Store, currency string) ([]ledger.Account, []ledger.Product) {
	accs := make([]ledger.Account, 0, len(dictionary.DefaultChart))
	for _, def := range dictionary.DefaultChart {
		a := ledger.Account{
			ID:            uuid.New(),
			Code:          def.Code,
			Name:          def.Name,
			Category:      def.Category,
			NormalBalance: def.NormalBalance,
			Control:       def.Control,
		}
		if a.Control == "" {
			a.Control = ledger.ControlNone
		}
		store.SeedAccount(a)
		accs = append(accs, a)
	}
	prods := make([]ledger.Product, 0, len(dictionary.DefaultProducts))
	for _, def := range dictionary.DefaultProducts {
		p := ledger.Product{
			ID:      uuid.New(),
			Code:    def.Code,
			Name:    def.Name,
			AvgCost: ledger.ZeroAmount(currency),
		}
		store.SeedProduct(p)
		prods = append(prods, p)
	}
	return accs, prods
}

// logDevSeed emits structured logs with useful IDs
func logDevSeed(l *slog.Logger, backend string, accs []ledger.Account, prods []ledger.Product) {
	ids := map[string]string{}
	for _, a := range accs {
		ids[a.Code] = a.ID.String()
	}
	for _, p := range prods {
		ids[p.Code] = p.ID.String()
	}
	l.Info("DEV seed ("+backend+")", "ids", ids)
}

// printDevSeedBanner prints a simple banner to stdout for easy copy/paste of IDs
func printDevSeedBanner(accs []ledger.Account, prods []ledger.Product) {
	fmt.Println("==================== DEV SEED ====================")
	for _, a := range accs {
		fmt.Printf("%s %s: %s\n", a.Code, a.Name, a.ID.String())
	}
	for _, p := range prods {
		fmt.Printf("%s %s: %s\n", p.Code, p.Name, p.ID.String())
	}
	fmt.Println("==================================================")
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLoggerFromEnv() *slog.Logger {
	level := parseLogLevel(os.Getenv("LOG_LEVEL"))
	format := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
