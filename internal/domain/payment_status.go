package domain

// PaymentStatus is the canonical lifecycle of money for a booking or ledger entry.
//
//	PENDING -> PROCESSING -> {COMPLETED, FAILED}
//	COMPLETED -> REFUNDED
//
// Transitions only move forward. Writers express them as conditional updates
// restricted to AllowedFrom(target) so replays and stale notifications are no-ops.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentCompleted  PaymentStatus = "COMPLETED"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	default:
		return false
	}
}

// AllowedFrom lists the states a record may be in for a transition to `to`
// to be applied. PENDING is the initial state and is never a target.
func AllowedFrom(to PaymentStatus) []PaymentStatus {
	switch to {
	case PaymentProcessing:
		return []PaymentStatus{PaymentPending}
	case PaymentCompleted, PaymentFailed:
		return []PaymentStatus{PaymentPending, PaymentProcessing}
	case PaymentRefunded:
		return []PaymentStatus{PaymentCompleted}
	default:
		return nil
	}
}

func CanTransition(from, to PaymentStatus) bool {
	for _, s := range AllowedFrom(to) {
		if s == from {
			return true
		}
	}
	return false
}
