package memory

import (
	"github.com/kasbuku/kasbuku/internal/service/account"
	"github.com/kasbuku/kasbuku/internal/service/inventory"
	"github.com/kasbuku/kasbuku/internal/service/journal"
	"github.com/kasbuku/kasbuku/internal/service/report"
)

// Compile-time interface assertions documenting which interfaces Store satisfies.
var (
	_ account.Repo     = (*Store)(nil)
	_ account.Writer   = (*Store)(nil)
	_ inventory.Repo   = (*Store)(nil)
	_ inventory.Writer = (*Store)(nil)
	_ journal.Repo     = (*Store)(nil)
	_ journal.Writer   = (*Store)(nil)
	_ report.Repo      = (*Store)(nil)
)
