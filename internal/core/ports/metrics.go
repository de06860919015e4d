package ports

// Claim and rejection outcomes reported to DispatchMetrics.
const (
	OutcomeWon      = "won"
	OutcomeConflict = "conflict"
	OutcomeNotFound = "not_found"
	OutcomeApplied  = "applied"
	OutcomeError    = "error"
)

// DispatchMetrics receives counters from the dispatch services.
type DispatchMetrics interface {
	ClaimAttempted(outcome string)
	RejectionAttempted(outcome string)
	OrderCreated(candidates int)
	PendingBacklog(count int64)
}
