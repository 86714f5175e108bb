package booking

import (
	"context"

	"petcare/internal/domain"

	"github.com/google/uuid"
)

type BookingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
}

type TransactionRepository interface {
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Transaction, error)
}
