package admin

import (
	"encoding/json"
	"time"
)

type WebhookEventResponse struct {
	ID          string          `json:"id"`
	Topic       string          `json:"topic" example:"payment"`
	Action      string          `json:"action,omitempty" example:"payment.updated"`
	ResourceID  string          `json:"resourceId" example:"1319112345"`
	RequestID   string          `json:"requestId,omitempty"`
	Country     string          `json:"country,omitempty" example:"AR"`
	Outcome     string          `json:"outcome" example:"irreconcilable"`
	Detail      string          `json:"detail,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty" swaggertype:"object"`
	ReceivedAt  time.Time       `json:"receivedAt"`
	ProcessedAt *time.Time      `json:"processedAt,omitempty"`
}
