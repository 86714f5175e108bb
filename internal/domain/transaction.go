package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionPayment TransactionType = "PAYMENT"
	TransactionRefund  TransactionType = "REFUND"
)

const GatewayMercadoPago = "mercadopago"

// Transaction is a ledger entry for one gateway payment. ExternalTransactionID
// is unique: reconciliation updates the row, it never inserts a second one.
type Transaction struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"booking_id"`
	Type                  TransactionType `gorm:"type:varchar(16);not null;default:'PAYMENT'" json:"type"`
	Amount                decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency              string          `gorm:"type:varchar(3);not null" json:"currency"`
	ProviderAmount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"provider_amount"`
	PlatformCommission    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"platform_commission"`
	ProcessingFee         decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"processing_fee"`
	Gateway               string          `gorm:"type:varchar(32);not null" json:"gateway"`
	ExternalTransactionID string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"external_transaction_id"`
	Country               string          `gorm:"type:varchar(2);index" json:"country"`
	Status                PaymentStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	Metadata              datatypes.JSON  `json:"metadata,omitempty"`
	CompletedAt           *time.Time      `json:"completed_at,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }

func (t *Transaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Type == "" {
		t.Type = TransactionPayment
	}
	return nil
}

// TransactionMetadata is the shape stored in Transaction.Metadata.
type TransactionMetadata struct {
	PaymentMethodID string `json:"payment_method_id,omitempty"`
	Country         string `json:"country,omitempty"`
	StatusDetail    string `json:"status_detail,omitempty"`
	GatewayStatus   string `json:"gateway_status,omitempty"`
	PayerEmail      string `json:"payer_email,omitempty"`
}
