package booking

import "time"

type PaymentSummary struct {
	BookingID            string        `json:"bookingId"`
	Status               string        `json:"status" example:"CONFIRMED"`
	PaymentStatus        string        `json:"paymentStatus" example:"COMPLETED"`
	PaymentMethod        string        `json:"paymentMethod,omitempty" example:"visa"`
	PaymentTransactionID string        `json:"paymentTransactionId,omitempty" example:"1319112345"`
	TotalPrice           string        `json:"totalPrice" example:"1000"`
	Currency             string        `json:"currency" example:"ARS"`
	ConfirmedAt          *time.Time    `json:"confirmedAt,omitempty"`
	CancelledAt          *time.Time    `json:"cancelledAt,omitempty"`
	CancellationReason   string        `json:"cancellationReason,omitempty"`
	Transactions         []LedgerEntry `json:"transactions"`
}

type LedgerEntry struct {
	ID                    string     `json:"id"`
	ExternalTransactionID string     `json:"externalTransactionId"`
	Status                string     `json:"status"`
	Country               string     `json:"country"`
	Amount                string     `json:"amount" example:"1000"`
	Currency              string     `json:"currency"`
	PlatformCommission    string     `json:"platformCommission" example:"150"`
	ProviderAmount        string     `json:"providerAmount" example:"850"`
	ProcessingFee         string     `json:"processingFee" example:"41.5"`
	CreatedAt             time.Time  `json:"createdAt"`
	CompletedAt           *time.Time `json:"completedAt,omitempty"`
}
