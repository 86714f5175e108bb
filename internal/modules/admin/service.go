package admin

import (
	"context"
	"encoding/json"
	"strings"

	"petcare/internal/domain"
)

// Service exposes the webhook journal for manual reconciliation.
type Service struct {
	journal WebhookJournal
}

func NewService(journal WebhookJournal) *Service {
	return &Service{journal: journal}
}

// WebhookEvents lists the journal for one gateway resource, or the newest
// unsettled notifications when resourceID is empty.
func (s *Service) WebhookEvents(ctx context.Context, resourceID string, limit int) ([]WebhookEventResponse, error) {
	var (
		events []domain.WebhookEvent
		err    error
	)
	if resourceID = strings.TrimSpace(resourceID); resourceID != "" {
		events, err = s.journal.ListByResource(ctx, resourceID)
	} else {
		events, err = s.journal.ListUnsettled(ctx, limit)
	}
	if err != nil {
		return nil, err
	}

	out := make([]WebhookEventResponse, 0, len(events))
	for _, e := range events {
		item := WebhookEventResponse{
			ID:          e.ID.String(),
			Topic:       e.Topic,
			Action:      e.Action,
			ResourceID:  e.ResourceID,
			RequestID:   e.RequestID,
			Country:     e.Country,
			Outcome:     string(e.Outcome),
			Detail:      e.Detail,
			ReceivedAt:  e.ReceivedAt,
			ProcessedAt: e.ProcessedAt,
		}
		if len(e.Payload) > 0 {
			item.Payload = json.RawMessage(e.Payload)
		}
		out = append(out, item)
	}
	return out, nil
}
