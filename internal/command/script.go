package command

import (
	"context"
	"strings"

	"github.com/johndauphine/sqlcsv/internal/apperr"
	"github.com/johndauphine/sqlcsv/internal/logging"
)

// runScript hands script to the driver unchanged in a single Exec call.
// Drivers that accept multi-statement text run every statement in it. A blank
// script is a no-op.
func runScript(ctx context.Context, q queryer, label, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}
	logging.Debug("%s: %s", label, script)
	if _, err := q.ExecContext(ctx, script); err != nil {
		return apperr.Engine(label+" failed", err)
	}
	logging.Info("Executed %s", label)
	return nil
}
