package repository

import (
	"context"
	"time"

	"petcare/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) Record(ctx context.Context, e *domain.WebhookEvent) error {
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *WebhookEventRepository) Finish(ctx context.Context, id uuid.UUID, outcome domain.WebhookOutcome, country, detail string) error {
	updates := map[string]interface{}{
		"outcome":      outcome,
		"detail":       detail,
		"processed_at": time.Now().UTC(),
	}
	if country != "" {
		updates["country"] = country
	}
	return r.db.WithContext(ctx).Model(&domain.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *WebhookEventRepository) ListByResource(ctx context.Context, resourceID string) ([]domain.WebhookEvent, error) {
	var out []domain.WebhookEvent
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("received_at ASC").
		Find(&out).Error
	return out, err
}

// ListUnsettled returns the newest events reconciliation could not apply.
func (r *WebhookEventRepository) ListUnsettled(ctx context.Context, limit int) ([]domain.WebhookEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []domain.WebhookEvent
	err := r.db.WithContext(ctx).
		Where("outcome IN ?", []domain.WebhookOutcome{domain.WebhookIrreconcilable, domain.WebhookFailed, domain.WebhookRejected}).
		Order("received_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// PurgeBefore removes settled journal entries received before t. Entries that
// still need manual follow-up are kept.
func (r *WebhookEventRepository) PurgeBefore(ctx context.Context, t time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("received_at < ? AND outcome IN ?", t, []domain.WebhookOutcome{domain.WebhookProcessed, domain.WebhookIgnored}).
		Delete(&domain.WebhookEvent{})
	return res.RowsAffected, res.Error
}
