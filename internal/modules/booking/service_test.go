package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"petcare/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Transaction, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func confirmedBooking() *domain.Booking {
	confirmed := time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC)
	return &domain.Booking{
		ID:                   uuid.New(),
		ClientID:             uuid.New(),
		ProviderID:           uuid.New(),
		TotalPrice:           decimal.NewFromInt(1000),
		Currency:             "ARS",
		Status:               domain.BookingConfirmed,
		PaymentStatus:        domain.PaymentCompleted,
		PaymentMethod:        "visa",
		PaymentTransactionID: "1001",
		ConfirmedAt:          &confirmed,
	}
}

func TestGetPaymentSummary_Client(t *testing.T) {
	bookings := new(MockBookingRepository)
	txs := new(MockTransactionRepository)
	svc := NewService(bookings, txs)

	b := confirmedBooking()
	bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
	txs.On("ListByBooking", mock.Anything, b.ID).Return([]domain.Transaction{{
		ID:                    uuid.New(),
		BookingID:             b.ID,
		ExternalTransactionID: "1001",
		Status:                domain.PaymentCompleted,
		Country:               "AR",
		Amount:                decimal.NewFromInt(1000),
		Currency:              "ARS",
		PlatformCommission:    decimal.NewFromInt(150),
		ProviderAmount:        decimal.NewFromInt(850),
		ProcessingFee:         decimal.RequireFromString("41.5"),
	}}, nil)

	summary, err := svc.GetPaymentSummary(context.Background(), b.ID.String(), Viewer{UserID: b.ClientID.String(), Role: "client"})
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", summary.Status)
	assert.Equal(t, "COMPLETED", summary.PaymentStatus)
	assert.Equal(t, "1000", summary.TotalPrice)
	require.Len(t, summary.Transactions, 1)
	assert.Equal(t, "150", summary.Transactions[0].PlatformCommission)
	assert.Equal(t, "850", summary.Transactions[0].ProviderAmount)
	assert.Equal(t, "41.5", summary.Transactions[0].ProcessingFee)
}

func TestGetPaymentSummary_Access(t *testing.T) {
	bookings := new(MockBookingRepository)
	txs := new(MockTransactionRepository)
	svc := NewService(bookings, txs)

	b := confirmedBooking()
	bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
	txs.On("ListByBooking", mock.Anything, b.ID).Return([]domain.Transaction{}, nil)

	_, err := svc.GetPaymentSummary(context.Background(), b.ID.String(), Viewer{UserID: uuid.NewString(), Role: "client"})
	assert.True(t, errors.Is(err, ErrForbidden))

	summary, err := svc.GetPaymentSummary(context.Background(), b.ID.String(), Viewer{UserID: b.ProviderID.String(), Role: "provider"})
	require.NoError(t, err)
	assert.Empty(t, summary.Transactions)

	_, err = svc.GetPaymentSummary(context.Background(), b.ID.String(), Viewer{UserID: uuid.NewString(), Role: "admin"})
	assert.NoError(t, err)
}

func TestGetPaymentSummary_Errors(t *testing.T) {
	bookings := new(MockBookingRepository)
	txs := new(MockTransactionRepository)
	svc := NewService(bookings, txs)

	_, err := svc.GetPaymentSummary(context.Background(), "42", Viewer{Role: "admin"})
	assert.True(t, domain.IsBadRequest(err))

	missing := uuid.New()
	bookings.On("GetByID", mock.Anything, missing).Return(nil, domain.NotFoundError{Resource: "booking", ID: missing.String()})
	_, err = svc.GetPaymentSummary(context.Background(), missing.String(), Viewer{Role: "admin"})
	assert.True(t, domain.IsNotFound(err))
	txs.AssertNotCalled(t, "ListByBooking", mock.Anything, mock.Anything)
}
