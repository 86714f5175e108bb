package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Payment statuses reported by the gateway.
const (
	StatusApproved    = "approved"
	StatusAuthorized  = "authorized"
	StatusPending     = "pending"
	StatusInProcess   = "in_process"
	StatusInMediation = "in_mediation"
	StatusRejected    = "rejected"
	StatusCancelled   = "cancelled"
	StatusRefunded    = "refunded"
	StatusChargedBack = "charged_back"
)

var (
	ErrTimeout       = errors.New("gateway request timed out")
	ErrNotFound      = errors.New("gateway resource not found")
	ErrNotConfigured = errors.New("gateway not configured for country")
)

// APIError is a non-2xx answer from the gateway.
type APIError struct {
	StatusCode int
	Message    string
	Cause      string
}

func (e *APIError) Error() string {
	if e.Cause != "" {
		return fmt.Sprintf("gateway error %d: %s (%s)", e.StatusCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("gateway error %d: %s", e.StatusCode, e.Message)
}

type Payer struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type PaymentRequest struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Token             string  `json:"token,omitempty"`
	Description       string  `json:"description,omitempty"`
	Installments      int     `json:"installments,omitempty"`
	PaymentMethodID   string  `json:"payment_method_id"`
	Payer             Payer   `json:"payer"`
	ExternalReference string  `json:"external_reference"`
	NotificationURL   string  `json:"notification_url,omitempty"`
}

type FeeDetail struct {
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	FeePayer string  `json:"fee_payer"`
}

type Payment struct {
	ID                int64       `json:"id"`
	Status            string      `json:"status"`
	StatusDetail      string      `json:"status_detail"`
	TransactionAmount float64     `json:"transaction_amount"`
	CurrencyID        string      `json:"currency_id"`
	DateCreated       *time.Time  `json:"date_created"`
	ExternalReference string      `json:"external_reference"`
	PaymentMethodID   string      `json:"payment_method_id"`
	Description       string      `json:"description"`
	FeeDetails        []FeeDetail `json:"fee_details"`

	// Raw is the body as returned by the gateway.
	Raw json.RawMessage `json:"-"`
}

func (p *Payment) IDString() string {
	return strconv.FormatInt(p.ID, 10)
}

// TotalFees sums the fees charged to the collector.
func (p *Payment) TotalFees() float64 {
	var total float64
	for _, f := range p.FeeDetails {
		if f.FeePayer == "" || f.FeePayer == "collector" {
			total += f.Amount
		}
	}
	return total
}

type PreferenceItem struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	CurrencyID  string  `json:"currency_id"`
}

type BackURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	Payer             Payer            `json:"payer"`
	BackURLs          *BackURLs        `json:"back_urls,omitempty"`
	AutoReturn        string           `json:"auto_return,omitempty"`
	NotificationURL   string           `json:"notification_url,omitempty"`
	ExternalReference string           `json:"external_reference"`
}

type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// PaymentClient submits and reads payments for one gateway account.
type PaymentClient interface {
	CreatePayment(ctx context.Context, req PaymentRequest, idempotencyKey string) (*Payment, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
}

// PreferenceClient creates hosted checkout preferences for one gateway account.
type PreferenceClient interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
}
