package payment

import (
	"petcare/internal/domain"
	"petcare/internal/gateway"
)

// MapGatewayStatus translates the gateway vocabulary into the canonical
// payment status. Unknown statuses map to PENDING with known=false; callers
// log those as policy exceptions.
func MapGatewayStatus(status string) (mapped domain.PaymentStatus, known bool) {
	switch status {
	case gateway.StatusApproved:
		return domain.PaymentCompleted, true
	case gateway.StatusPending:
		return domain.PaymentPending, true
	case gateway.StatusInProcess, gateway.StatusAuthorized, gateway.StatusInMediation:
		return domain.PaymentProcessing, true
	case gateway.StatusRejected, gateway.StatusCancelled:
		return domain.PaymentFailed, true
	case gateway.StatusRefunded, gateway.StatusChargedBack:
		return domain.PaymentRefunded, true
	default:
		return domain.PaymentPending, false
	}
}
