package repository

import (
	"context"
	"errors"

	"petcare/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, "booking", id.String())
	}
	return &b, nil
}

// GetWithParties loads the booking with its client and provider profiles.
func (r *BookingRepository) GetWithParties(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Provider").
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, mapNotFound(err, "booking", id.String())
	}
	return &b, nil
}

func mapNotFound(err error, resource, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError{Resource: resource, ID: id, Err: err}
	}
	return err
}
