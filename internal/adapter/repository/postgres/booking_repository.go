package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eventtribe/ticketing/internal/core/domain"
)

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	b.id, b.event_id, b.user_id, COALESCE(b.payment_status, 'pending'), b.payment_phone,
	b.qr_code, b.checked_in_at, b.final_price, b.checkout_request_id, b.payment_initiated_at, b.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner, extra ...any) (*domain.Booking, error) {
	var b domain.Booking
	var status string
	var phone, qr, checkoutID sql.NullString
	var checkedInAt, initiatedAt sql.NullTime
	var finalPrice sql.NullFloat64

	dest := []any{
		&b.ID, &b.EventID, &b.UserID, &status, &phone,
		&qr, &checkedInAt, &finalPrice, &checkoutID, &initiatedAt, &b.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	b.PaymentStatus = domain.PaymentStatus(status)
	if phone.Valid {
		b.PaymentPhone = &phone.String
	}
	if qr.Valid {
		b.QRCode = &qr.String
	}
	if checkedInAt.Valid {
		b.CheckedInAt = &checkedInAt.Time
	}
	if finalPrice.Valid {
		b.FinalPrice = &finalPrice.Float64
	}
	if checkoutID.Valid {
		b.CheckoutRequestID = &checkoutID.String
	}
	if initiatedAt.Valid {
		b.PaymentInitiatedAt = &initiatedAt.Time
	}

	return &b, nil
}

func notFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || isInvalidID(err)
}

func (r *BookingRepository) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	query := `SELECT` + bookingColumns + `
	FROM bookings b
	WHERE b.id = $1
	`

	b, err := scanBooking(r.db.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking %s: %w", bookingID, err)
	}

	return b, nil
}

func (r *BookingRepository) GetPaymentTarget(ctx context.Context, bookingID string) (*domain.PaymentTarget, error) {
	query := `SELECT` + bookingColumns + `,
		e.title, e.price, COALESCE(e.is_free, false)
	FROM bookings b
	JOIN events e ON e.id = b.event_id
	WHERE b.id = $1
	`

	var title string
	var price sql.NullFloat64
	var free bool

	b, err := scanBooking(r.db.QueryRowContext(ctx, query, bookingID), &title, &price, &free)
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking %s with event: %w", bookingID, err)
	}

	target := &domain.PaymentTarget{Booking: *b, EventTitle: title, EventFree: free}
	if price.Valid {
		target.EventPrice = &price.Float64
	}

	return target, nil
}

func (r *BookingRepository) RecordPaymentInitiation(ctx context.Context, bookingID string, phone string, checkoutRequestID string, at time.Time) error {
	query := `
	UPDATE bookings
	SET payment_phone = $1,
		checkout_request_id = $2,
		payment_initiated_at = $3
	WHERE id = $4 AND COALESCE(payment_status, 'pending') = 'pending'
	`

	if _, err := r.db.ExecContext(ctx, query, phone, checkoutRequestID, at, bookingID); err != nil {
		return fmt.Errorf("failed to record payment initiation for booking %s: %w", bookingID, err)
	}

	return nil
}

func (r *BookingRepository) BookingIDByCheckoutRequest(ctx context.Context, checkoutRequestID string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM bookings WHERE checkout_request_id = $1`, checkoutRequestID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrBookingNotFound
		}
		return "", fmt.Errorf("failed to find booking for checkout request %s: %w", checkoutRequestID, err)
	}

	return id, nil
}

func (r *BookingRepository) CompletePayment(ctx context.Context, bookingID string, qrCode string) (bool, error) {
	query := `
	UPDATE bookings
	SET payment_status = 'completed',
		qr_code = $1
	WHERE id = $2 AND COALESCE(payment_status, 'pending') = 'pending'
	`

	return r.execConditional(ctx, query, qrCode, bookingID)
}

func (r *BookingRepository) FailPayment(ctx context.Context, bookingID string) (bool, error) {
	query := `
	UPDATE bookings
	SET payment_status = 'failed'
	WHERE id = $1 AND COALESCE(payment_status, 'pending') = 'pending'
	`

	return r.execConditional(ctx, query, bookingID)
}

func (r *BookingRepository) ListUnresolvedPayments(ctx context.Context, initiatedBefore time.Time, limit int) ([]domain.PendingPayment, error) {
	query := `
	SELECT id, checkout_request_id, payment_initiated_at
	FROM bookings
	WHERE COALESCE(payment_status, 'pending') = 'pending'
		AND checkout_request_id IS NOT NULL
		AND payment_initiated_at < $1
	ORDER BY payment_initiated_at
	LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, initiatedBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved payments: %w", err)
	}

	defer rows.Close()

	var pending []domain.PendingPayment
	for rows.Next() {
		var p domain.PendingPayment
		if err := rows.Scan(&p.BookingID, &p.CheckoutRequestID, &p.PaymentInitiatedAt); err != nil {
			return nil, err
		}

		pending = append(pending, p)
	}

	return pending, rows.Err()
}

func (r *BookingRepository) FindAttendee(ctx context.Context, bookingID string, eventID string) (*domain.Attendee, error) {
	query := `
	SELECT b.id, b.event_id, COALESCE(p.username, ''), COALESCE(b.payment_status, 'pending'), b.checked_in_at
	FROM bookings b
	LEFT JOIN profiles p ON p.id = b.user_id
	WHERE b.id = $1 AND b.event_id = $2
	`

	var a domain.Attendee
	var status string
	var checkedInAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, bookingID, eventID).Scan(
		&a.BookingID,
		&a.EventID,
		&a.UserName,
		&status,
		&checkedInAt,
	)
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find attendee for booking %s: %w", bookingID, err)
	}

	a.PaymentStatus = domain.PaymentStatus(status)
	if checkedInAt.Valid {
		a.CheckedInAt = &checkedInAt.Time
	}

	return &a, nil
}

func (r *BookingRepository) MarkCheckedIn(ctx context.Context, bookingID string, eventID string, at time.Time) (bool, error) {
	query := `
	UPDATE bookings
	SET checked_in_at = $1
	WHERE id = $2 AND event_id = $3
		AND payment_status = 'completed'
		AND checked_in_at IS NULL
	`

	return r.execConditional(ctx, query, at, bookingID, eventID)
}

// execConditional runs a guarded UPDATE and reports whether it matched a row.
func (r *BookingRepository) execConditional(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isInvalidID(err) {
			return false, nil
		}
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
