package payment

import (
	"encoding/json"
	"time"
)

type CreatePreferenceRequest struct {
	BookingID string `json:"bookingId" binding:"required" example:"6f1c2d3e-4b5a-4c6d-8e7f-901234567890"`
}

type CreatePreferenceResponse struct {
	PreferenceID string `json:"preferenceId" example:"123456789-abcd-ef01-2345-6789abcdef01"`
	InitPoint    string `json:"initPoint" example:"https://www.mercadopago.com.ar/checkout/v1/redirect?pref_id=123456789"`
}

type ProcessPaymentRequest struct {
	BookingID       string `json:"bookingId" binding:"required" example:"6f1c2d3e-4b5a-4c6d-8e7f-901234567890"`
	PaymentMethodID string `json:"paymentMethodId" binding:"required" example:"visa"`
	Token           string `json:"token" example:"ff8080814c11e237014c1ff593b57b4d"`
	PayerEmail      string `json:"payerEmail" binding:"required,email" example:"client@example.com"`
	Description     string `json:"description" example:"Dog walking, 1h"`
	Installments    int    `json:"installments" binding:"omitempty,min=1" example:"1"`

	// IdempotencyKey comes from the X-Idempotency-Key header.
	IdempotencyKey string `json:"-"`
}

type PaymentResponse struct {
	ID                    string     `json:"id" example:"1319112345"`
	Status                string     `json:"status" example:"COMPLETED"`
	StatusDetail          string     `json:"statusDetail" example:"accredited"`
	TransactionAmount     float64    `json:"transactionAmount" example:"1000"`
	Currency              string     `json:"currency" example:"ARS"`
	ExternalTransactionID string     `json:"externalTransactionId" example:"1319112345"`
	PlatformCommission    float64    `json:"platformCommission" example:"150"`
	ProviderAmount        float64    `json:"providerAmount" example:"850"`
	Description           string     `json:"description,omitempty" example:"Dog walking, 1h"`
	CreatedAt             *time.Time `json:"createdAt,omitempty"`
}

type PublicKeyResponse struct {
	PublicKey string `json:"publicKey" example:"APP_USR-7f1b3c4d-0000-0000-0000-000000000000"`
	Country   string `json:"country" example:"AR"`
}

// WebhookNotification accepts both the webhook shape (type, action, data.id)
// and the IPN shape (topic, resource id in id).
type WebhookNotification struct {
	ID       resourceID `json:"id,omitempty"`
	Type     string     `json:"type,omitempty"`
	Topic    string     `json:"topic,omitempty"`
	Action   string     `json:"action,omitempty"`
	LiveMode bool       `json:"live_mode,omitempty"`
	Data     struct {
		ID resourceID `json:"id"`
	} `json:"data"`
}

type WebhookResponse struct {
	Status  string `json:"status" example:"ok"`
	Message string `json:"message,omitempty" example:"invalid signature"`
}

// resourceID accepts ids sent either as JSON strings or as JSON numbers.
type resourceID string

func (r *resourceID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = resourceID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*r = resourceID(n.String())
	return nil
}
