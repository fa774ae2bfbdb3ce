package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/audit"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/auth"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/platform/db"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/records"
)

// Stores bundles the three persistent stores for the configured driver.
type Stores struct {
	Users   auth.Repository
	Records records.Repository
	Audit   audit.Repository
	close   func()
}

// Close releases the database pool, if any.
func (s *Stores) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// OpenStores opens the stores selected by STORE_DRIVER.
func OpenStores(ctx context.Context, cfg *Config, logger *slog.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case StorePostgres:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("using postgres stores")
		return &Stores{
			Users:   auth.NewRepository(pool),
			Records: records.NewRepository(pool),
			Audit:   audit.NewRepository(pool),
			close:   pool.Close,
		}, nil
	case StoreCSV, "":
		usersRepo, err := auth.NewCSVRepository(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		recordsRepo, err := records.NewCSVRepository(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		auditRepo, err := audit.NewCSVRepository(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		logger.Info("using csv stores", slog.String("dir", cfg.DataDir))
		return &Stores{Users: usersRepo, Records: recordsRepo, Audit: auditRepo}, nil
	default:
		return nil, fmt.Errorf("app: unknown store driver %q", cfg.StoreDriver)
	}
}
