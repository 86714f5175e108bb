package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// CancellationPaymentFailed marks bookings cancelled by reconciliation, as
// opposed to bookings cancelled by a person. Only these may be re-confirmed
// by a later successful payment attempt.
const CancellationPaymentFailed = "payment_failed"

type Booking struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	ProviderID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"provider_id"`
	ServiceName          string          `gorm:"type:varchar(120)" json:"service_name"`
	TotalPrice           decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_price"`
	Currency             string          `gorm:"type:varchar(3)" json:"currency"`
	Status               BookingStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PaymentStatus        PaymentStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"payment_status"`
	PaymentMethod        string          `gorm:"type:varchar(40)" json:"payment_method,omitempty"`
	PaymentTransactionID string          `gorm:"type:varchar(64);index" json:"payment_transaction_id,omitempty"`
	ConfirmedAt          *time.Time      `json:"confirmed_at,omitempty"`
	CancelledAt          *time.Time      `json:"cancelled_at,omitempty"`
	CancellationReason   string          `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`

	Client   *User `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Provider *User `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = BookingPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = PaymentPending
	}
	return nil
}
