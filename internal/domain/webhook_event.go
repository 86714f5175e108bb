package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type WebhookOutcome string

const (
	WebhookReceived       WebhookOutcome = "received"
	WebhookIgnored        WebhookOutcome = "ignored"
	WebhookProcessed      WebhookOutcome = "processed"
	WebhookIrreconcilable WebhookOutcome = "irreconcilable"
	WebhookRejected       WebhookOutcome = "rejected"
	WebhookFailed         WebhookOutcome = "failed"
)

// WebhookEvent journals every gateway notification with its raw payload and
// what reconciliation made of it, for manual follow-up.
type WebhookEvent struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Topic       string         `gorm:"type:varchar(64);index" json:"topic"`
	Action      string         `gorm:"type:varchar(64)" json:"action,omitempty"`
	ResourceID  string         `gorm:"type:varchar(64);index" json:"resource_id"`
	RequestID   string         `gorm:"type:varchar(128)" json:"request_id,omitempty"`
	Country     string         `gorm:"type:varchar(2)" json:"country,omitempty"`
	Payload     datatypes.JSON `json:"payload"`
	Outcome     WebhookOutcome `gorm:"type:varchar(20);not null;default:'received';index" json:"outcome"`
	Detail      string         `gorm:"type:text" json:"detail,omitempty"`
	ReceivedAt  time.Time      `gorm:"not null;index" json:"received_at"`
	ProcessedAt *time.Time     `json:"processed_at,omitempty"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }

func (e *WebhookEvent) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Outcome == "" {
		e.Outcome = WebhookReceived
	}
	return nil
}
