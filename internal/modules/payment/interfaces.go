package payment

import (
	"context"
	"time"

	"petcare/internal/domain"
	"petcare/internal/gateway"
	"petcare/internal/messaging"
	"petcare/internal/repository"

	"github.com/google/uuid"
)

type bookingReader interface {
	GetWithParties(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
}

type ledger interface {
	GetByExternalID(ctx context.Context, externalID string) (*domain.Transaction, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Transaction, error)
	ApplyPaymentUpdate(ctx context.Context, u repository.PaymentUpdate) (*repository.PaymentUpdateResult, error)
}

type webhookJournal interface {
	Record(ctx context.Context, e *domain.WebhookEvent) error
	Finish(ctx context.Context, id uuid.UUID, outcome domain.WebhookOutcome, country, detail string) error
}

type accountRegistry interface {
	ClientFor(country string) (*gateway.Account, error)
	Countries() []string
	PublicKey(country string) (string, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event messaging.Event) error
}

type clock func() time.Time
