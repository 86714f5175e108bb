package booking

import (
	"context"
	"strings"

	"petcare/internal/domain"

	"github.com/google/uuid"
)

type Service struct {
	bookings     BookingRepository
	transactions TransactionRepository
}

func NewService(bookings BookingRepository, transactions TransactionRepository) *Service {
	return &Service{bookings: bookings, transactions: transactions}
}

// Viewer is the authenticated caller asking for a booking.
type Viewer struct {
	UserID string
	Role   string
}

// GetPaymentSummary returns the payment state of a booking with its ledger.
// Only the booking's client, its provider or an admin may read it.
func (s *Service) GetPaymentSummary(ctx context.Context, rawID string, viewer Viewer) (*PaymentSummary, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, domain.BadRequestError{Msg: "invalid booking id", Err: err}
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(b, viewer) {
		return nil, ErrForbidden
	}

	txs, err := s.transactions.ListByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	out := &PaymentSummary{
		BookingID:            b.ID.String(),
		Status:               string(b.Status),
		PaymentStatus:        string(b.PaymentStatus),
		PaymentMethod:        b.PaymentMethod,
		PaymentTransactionID: b.PaymentTransactionID,
		TotalPrice:           b.TotalPrice.String(),
		Currency:             b.Currency,
		ConfirmedAt:          b.ConfirmedAt,
		CancelledAt:          b.CancelledAt,
		CancellationReason:   b.CancellationReason,
		Transactions:         make([]LedgerEntry, 0, len(txs)),
	}
	for _, t := range txs {
		out.Transactions = append(out.Transactions, LedgerEntry{
			ID:                    t.ID.String(),
			ExternalTransactionID: t.ExternalTransactionID,
			Status:                string(t.Status),
			Country:               t.Country,
			Amount:                t.Amount.String(),
			Currency:              t.Currency,
			PlatformCommission:    t.PlatformCommission.String(),
			ProviderAmount:        t.ProviderAmount.String(),
			ProcessingFee:         t.ProcessingFee.String(),
			CreatedAt:             t.CreatedAt,
			CompletedAt:           t.CompletedAt,
		})
	}
	return out, nil
}

func canView(b *domain.Booking, v Viewer) bool {
	if v.Role == string(domain.RoleAdmin) {
		return true
	}
	return v.UserID != "" && (v.UserID == b.ClientID.String() || v.UserID == b.ProviderID.String())
}
