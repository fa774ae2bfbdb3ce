package main

import (
	"context"
	"io"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/audit"
)

// exportAudit dumps the whole audit trail as CSV. It reads the store
// directly, so it is an operator tool and not a gated operation.
func exportAudit(ctx context.Context, svc *audit.Service, w io.Writer) error {
	entries, err := svc.ReadAll(ctx)
	if err != nil {
		return err
	}
	return audit.WriteCSV(w, entries)
}
