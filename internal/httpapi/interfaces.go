package httpapi

import (
	"context"

	"github.com/kasbuku/kasbuku/internal/service/account"
	"github.com/kasbuku/kasbuku/internal/service/inventory"
	"github.com/kasbuku/kasbuku/internal/service/journal"
	"github.com/kasbuku/kasbuku/internal/service/report"
)

// Repository composes the read and write operations the API needs from its
// storage backend. Both the in-memory store and the Postgres store satisfy it.
type Repository interface {
	account.Repo
	account.Writer
	inventory.Repo
	inventory.Writer
	journal.Repo
	journal.Writer
	report.Repo
}

// ReadyChecker is optionally implemented by stores to indicate readiness.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}
