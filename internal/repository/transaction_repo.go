package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"petcare/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := r.db.WithContext(ctx).Where("external_transaction_id = ?", externalID).First(&t).Error; err != nil {
		return nil, mapNotFound(err, "transaction", externalID)
	}
	return &t, nil
}

func (r *TransactionRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// PaymentUpdate is one observation of a gateway payment applied to the
// booking and the ledger.
type PaymentUpdate struct {
	BookingID     uuid.UUID
	ExternalID    string
	Status        domain.PaymentStatus
	PaymentMethod string
	// Transaction is inserted when no ledger row exists for ExternalID yet.
	// Nil means update only.
	Transaction *domain.Transaction
	// CancelOnFailure cancels a still pending booking when Status is FAILED.
	CancelOnFailure bool
	At              time.Time
}

type PaymentUpdateResult struct {
	TransactionCreated   bool
	TransactionUpdated   bool
	PaymentStatusChanged bool
	Confirmed            bool
	Cancelled            bool
}

// ApplyPaymentUpdate writes booking and ledger state in one database
// transaction. Every write is conditional on the current state, so replays
// and stale observations affect zero rows.
func (r *TransactionRepository) ApplyPaymentUpdate(ctx context.Context, u PaymentUpdate) (*PaymentUpdateResult, error) {
	if u.At.IsZero() {
		u.At = time.Now().UTC()
	}
	res := &PaymentUpdateResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if u.Transaction != nil {
			created, err := insertTransaction(tx, u)
			if err != nil {
				return err
			}
			res.TransactionCreated = created
		}
		if !res.TransactionCreated {
			updated, err := advanceTransaction(tx, u)
			if err != nil {
				return err
			}
			res.TransactionUpdated = updated
		}

		changed, err := advanceBookingPayment(tx, u)
		if err != nil {
			return err
		}
		res.PaymentStatusChanged = changed && u.Status != domain.PaymentPending

		switch u.Status {
		case domain.PaymentCompleted:
			confirmed, err := confirmBooking(tx, u)
			if err != nil {
				return err
			}
			res.Confirmed = confirmed
		case domain.PaymentFailed:
			if u.CancelOnFailure {
				cancelled, err := cancelBooking(tx, u)
				if err != nil {
					return err
				}
				res.Cancelled = cancelled
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func insertTransaction(tx *gorm.DB, u PaymentUpdate) (bool, error) {
	t := u.Transaction
	t.BookingID = u.BookingID
	t.ExternalTransactionID = u.ExternalID
	t.Status = u.Status
	if u.Status == domain.PaymentCompleted && t.CompletedAt == nil {
		at := u.At
		t.CompletedAt = &at
	}

	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_transaction_id"}},
		DoNothing: true,
	}).Create(t)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func advanceTransaction(tx *gorm.DB, u PaymentUpdate) (bool, error) {
	allowed := domain.AllowedFrom(u.Status)
	if len(allowed) == 0 {
		return false, nil
	}
	updates := map[string]interface{}{
		"status":     u.Status,
		"updated_at": u.At,
	}
	if u.Status == domain.PaymentCompleted {
		updates["completed_at"] = u.At
	}
	result := tx.Model(&domain.Transaction{}).
		Where("external_transaction_id = ? AND status IN ?", u.ExternalID, allowed).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// advanceBookingPayment moves the booking's payment status forward. A booking
// whose earlier attempt failed may still be completed by a different payment.
func advanceBookingPayment(tx *gorm.DB, u PaymentUpdate) (bool, error) {
	q := tx.Model(&domain.Booking{}).Where("id = ?", u.BookingID)

	allowed := domain.AllowedFrom(u.Status)
	switch {
	case u.Status == domain.PaymentCompleted:
		q = q.Where("(payment_status IN ? OR (payment_status = ? AND payment_transaction_id <> ?))",
			allowed, domain.PaymentFailed, u.ExternalID)
	case len(allowed) > 0:
		q = q.Where("payment_status IN ?", allowed)
	default:
		// PENDING is never a transition target; only the reference is refreshed.
		q = q.Where("payment_status = ?", domain.PaymentPending)
	}

	updates := map[string]interface{}{
		"payment_status":         u.Status,
		"payment_transaction_id": u.ExternalID,
		"updated_at":             u.At,
	}
	if u.PaymentMethod != "" {
		updates["payment_method"] = u.PaymentMethod
	}
	result := q.Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func confirmBooking(tx *gorm.DB, u PaymentUpdate) (bool, error) {
	result := tx.Model(&domain.Booking{}).
		Where("id = ? AND payment_status = ? AND payment_transaction_id = ?", u.BookingID, domain.PaymentCompleted, u.ExternalID).
		Where("(status = ? OR (status = ? AND cancellation_reason = ?))",
			domain.BookingPending, domain.BookingCancelled, domain.CancellationPaymentFailed).
		Updates(map[string]interface{}{
			"status":              domain.BookingConfirmed,
			"confirmed_at":        u.At,
			"cancelled_at":        nil,
			"cancellation_reason": "",
			"updated_at":          u.At,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func cancelBooking(tx *gorm.DB, u PaymentUpdate) (bool, error) {
	result := tx.Model(&domain.Booking{}).
		Where("id = ? AND status = ? AND payment_status = ? AND payment_transaction_id = ?",
			u.BookingID, domain.BookingPending, domain.PaymentFailed, u.ExternalID).
		Updates(map[string]interface{}{
			"status":              domain.BookingCancelled,
			"cancelled_at":        u.At,
			"cancellation_reason": domain.CancellationPaymentFailed,
			"updated_at":          u.At,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
