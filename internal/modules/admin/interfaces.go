package admin

import (
	"context"

	"petcare/internal/domain"
)

type WebhookJournal interface {
	ListByResource(ctx context.Context, resourceID string) ([]domain.WebhookEvent, error)
	ListUnsettled(ctx context.Context, limit int) ([]domain.WebhookEvent, error)
}
