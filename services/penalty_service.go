package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sahelpay/tontine-backend/repository"
)

// PenaltyService evaluates overdue contributions against their group's
// grace-period rules and marks them late.
type PenaltyService struct {
	contributionRepo *repository.ContributionRepository
	notifier         Notifier
}

// NewPenaltyService creates a new penalty service
func NewPenaltyService(contributionRepo *repository.ContributionRepository, notifier Notifier) *PenaltyService {
	return &PenaltyService{
		contributionRepo: contributionRepo,
		notifier:         notifier,
	}
}

// IsOverdue reports whether a contribution due on dueDate with the given
// grace period has run out of time as of asOf: dueDate + graceDays < asOf.
func IsOverdue(dueDate time.Time, graceDays int, asOf time.Time) bool {
	deadline := dueDate.AddDate(0, 0, graceDays)
	return deadline.Before(asOf.Truncate(24 * time.Hour))
}

// SweepResult reports the outcome of one penalty sweep
type SweepResult struct {
	Evaluated int
	Marked    int
	Failures  []error
}

// Sweep marks every open contribution past its grace period as LATE,
// applying the group's late penalty exactly once per contribution. A failure
// on one contribution never aborts the sweep for the rest.
func (s *PenaltyService) Sweep(asOf time.Time) (*SweepResult, error) {
	overdue, err := s.contributionRepo.ListOverdueContributions(asOf)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Evaluated: len(overdue)}
	for _, o := range overdue {
		if !IsOverdue(o.Contribution.DueDate, o.GraceDays, asOf) {
			continue
		}
		marked, err := s.contributionRepo.MarkLateIf(o.Contribution.ID, o.Penalty)
		if err != nil {
			result.Failures = append(result.Failures,
				fmt.Errorf("contribution %s: %w", o.Contribution.ID, err))
			continue
		}
		if marked {
			result.Marked++
			s.notifier.Notify(o.Contribution.MemberID, NotifyContributionLate, map[string]string{
				"contributionId": o.Contribution.ID,
				"penalty":        o.Penalty.String(),
			})
		}
	}

	if len(result.Failures) > 0 {
		slog.Warn("penalty sweep finished with failures",
			"evaluated", result.Evaluated,
			"marked", result.Marked,
			"failures", len(result.Failures),
		)
	}
	return result, nil
}
