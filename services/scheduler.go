package services

import (
	"log/slog"
	"time"
)

// StartScheduler runs the recurring background sweeps: overdue contribution
// marking, starting tours whose scheduled date has arrived, and revoking
// delegations whose validity window has ended. Each sweep is idempotent, so
// overlapping or repeated runs are harmless.
func StartScheduler(
	penaltyService *PenaltyService,
	tourService *TourService,
	delegationService *DelegationService,
	interval time.Duration,
) chan<- struct{} {
	stop := make(chan struct{})
	go func() {
		slog.Info("scheduler started", "interval", interval)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				slog.Info("scheduler stopped")
				return
			case <-ticker.C:
				now := time.Now()
				runSweeps(penaltyService, tourService, delegationService, now)
			}
		}
	}()
	return stop
}

func runSweeps(
	penaltyService *PenaltyService,
	tourService *TourService,
	delegationService *DelegationService,
	now time.Time,
) {
	result, err := penaltyService.Sweep(now)
	if err != nil {
		slog.Error("penalty sweep failed", "error", err)
	} else if result.Marked > 0 {
		slog.Info("penalty sweep done", "evaluated", result.Evaluated, "marked", result.Marked)
	}

	started, err := tourService.StartDueTours(now)
	if err != nil {
		slog.Error("tour start sweep failed", "error", err)
	} else if started > 0 {
		slog.Info("tours started", "count", started)
	}

	revoked, err := delegationService.ExpireDelegations(now)
	if err != nil {
		slog.Error("delegation expiry sweep failed", "error", err)
	} else if revoked > 0 {
		slog.Info("expired delegations revoked", "count", revoked)
	}
}
