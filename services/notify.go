package services

import "log/slog"

// NotificationType identifies a notification template
type NotificationType string

const (
	NotifyToursGenerated      NotificationType = "TOURS_GENERATED"
	NotifyPaymentReceived     NotificationType = "PAYMENT_RECEIVED"
	NotifyPaymentValidated    NotificationType = "PAYMENT_VALIDATED"
	NotifyContributionLate    NotificationType = "CONTRIBUTION_LATE"
	NotifyContributionWaived  NotificationType = "CONTRIBUTION_WAIVED"
	NotifyPayoutSent          NotificationType = "PAYOUT_SENT"
	NotifyDelegationReviewed  NotificationType = "DELEGATION_REVIEWED"
	NotifyJoinRequestReviewed NotificationType = "JOIN_REQUEST_REVIEWED"
)

// Notifier dispatches a notification to a person. Implementations are
// fire-and-forget: delivery failures must never roll back ledger mutations,
// so Notify returns nothing.
type Notifier interface {
	Notify(personID string, template NotificationType, vars map[string]string)
}

// AuditSink records who did what to which entity. Best-effort only.
type AuditSink interface {
	Record(actorID, action, entityType, entityID string, details map[string]string)
}

// LogNotifier is the default Notifier; it writes notifications to the
// structured log where a delivery worker can pick them up.
type LogNotifier struct{}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(personID string, template NotificationType, vars map[string]string) {
	slog.Info("notification dispatched",
		"person_id", personID,
		"template", string(template),
		"vars", vars,
	)
}

// LogAuditSink is the default AuditSink backed by the structured log.
type LogAuditSink struct{}

// NewLogAuditSink creates a new LogAuditSink
func NewLogAuditSink() *LogAuditSink {
	return &LogAuditSink{}
}

func (a *LogAuditSink) Record(actorID, action, entityType, entityID string, details map[string]string) {
	slog.Info("audit",
		"actor_id", actorID,
		"action", action,
		"entity_type", entityType,
		"entity_id", entityID,
		"details", details,
	)
}
