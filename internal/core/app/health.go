package app

import (
	"context"
	"fmt"

	"sweepq/internal/shared/observability"
)

// Health reports component status for the /health endpoint. The queue is
// always up; the scanner and defaults store may degrade it.
func (a *App) Health(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:     "up",
		Components: make(map[string]string),
	}

	status.Components["queue"] = fmt.Sprintf("ok (%d entries)", a.Queue.Len())

	if a.Scanner.Available() {
		status.Components["scanner"] = "ok"
	} else {
		status.Status = "degraded"
		status.Components["scanner"] = "unavailable"
	}

	switch {
	case a.Defaults != nil:
		status.Components["defaults"] = "ok"
	case a.Config.Defaults.Enabled:
		status.Status = "degraded"
		status.Components["defaults"] = "missing but enabled in config"
	default:
		status.Components["defaults"] = "disabled"
	}

	return status
}
