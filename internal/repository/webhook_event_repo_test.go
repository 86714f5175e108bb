package repository

import (
	"context"
	"testing"
	"time"

	"petcare/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestWebhookEventRepository_RecordAndFinish(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWebhookEventRepository(db)
	ctx := context.Background()

	e := &domain.WebhookEvent{Topic: "payment", Action: "payment.updated", ResourceID: "9001", Payload: datatypes.JSON(`{"type":"payment"}`)}
	require.NoError(t, repo.Record(ctx, e))
	assert.Equal(t, domain.WebhookReceived, e.Outcome)
	assert.False(t, e.ReceivedAt.IsZero())

	require.NoError(t, repo.Finish(ctx, e.ID, domain.WebhookProcessed, "AR", "gateway_status=approved"))

	events, err := repo.ListByResource(ctx, "9001")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.WebhookProcessed, events[0].Outcome)
	assert.Equal(t, "AR", events[0].Country)
	assert.Equal(t, "gateway_status=approved", events[0].Detail)
	assert.NotNil(t, events[0].ProcessedAt)
	assert.JSONEq(t, `{"type":"payment"}`, string(events[0].Payload))
}

func TestWebhookEventRepository_PurgeKeepsUnsettled(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWebhookEventRepository(db)
	ctx := context.Background()
	old := time.Now().UTC().Add(-90 * 24 * time.Hour)

	outcomes := []domain.WebhookOutcome{
		domain.WebhookProcessed,
		domain.WebhookIgnored,
		domain.WebhookIrreconcilable,
		domain.WebhookFailed,
	}
	for _, o := range outcomes {
		e := &domain.WebhookEvent{Topic: "payment", ResourceID: "old-" + string(o), ReceivedAt: old}
		require.NoError(t, repo.Record(ctx, e))
		require.NoError(t, repo.Finish(ctx, e.ID, o, "", ""))
	}
	fresh := &domain.WebhookEvent{Topic: "payment", ResourceID: "fresh"}
	require.NoError(t, repo.Record(ctx, fresh))
	require.NoError(t, repo.Finish(ctx, fresh.ID, domain.WebhookProcessed, "", ""))

	deleted, err := repo.PurgeBefore(ctx, time.Now().UTC().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var left []domain.WebhookEvent
	require.NoError(t, db.Order("resource_id").Find(&left).Error)
	ids := make([]string, 0, len(left))
	for _, e := range left {
		ids = append(ids, e.ResourceID)
	}
	assert.Equal(t, []string{"fresh", "old-failed", "old-irreconcilable"}, ids)
}

func TestUserRepository_UpsertKeepsIdentity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := &domain.User{Email: " Ana@Example.com ", FirstName: "Ana", Role: domain.RoleClient, Country: "ar"}
	require.NoError(t, repo.Upsert(ctx, first))
	assert.Equal(t, "ana@example.com", first.Email)
	assert.Equal(t, "AR", first.Country)

	second := &domain.User{Email: "ana@example.com", FirstName: "Ana Maria", Role: domain.RoleClient, Country: "CO"}
	require.NoError(t, repo.Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", got.FirstName)
	assert.Equal(t, "CO", got.Country)
}
