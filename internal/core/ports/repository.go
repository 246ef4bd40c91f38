package ports

import (
	"context"
	"time"

	"github.com/eventtribe/ticketing/internal/core/domain"
)

type BookingRepository interface {
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	GetPaymentTarget(ctx context.Context, bookingID string) (*domain.PaymentTarget, error)
	RecordPaymentInitiation(ctx context.Context, bookingID string, phone string, checkoutRequestID string, at time.Time) error
	BookingIDByCheckoutRequest(ctx context.Context, checkoutRequestID string) (string, error)
	// CompletePayment and FailPayment only touch pending bookings; the bool
	// reports whether a row was transitioned.
	CompletePayment(ctx context.Context, bookingID string, qrCode string) (bool, error)
	FailPayment(ctx context.Context, bookingID string) (bool, error)
	ListUnresolvedPayments(ctx context.Context, initiatedBefore time.Time, limit int) ([]domain.PendingPayment, error)
	FindAttendee(ctx context.Context, bookingID string, eventID string) (*domain.Attendee, error)
	// MarkCheckedIn stamps checked_in_at only if it is still null.
	MarkCheckedIn(ctx context.Context, bookingID string, eventID string, at time.Time) (bool, error)
}

type EventRepository interface {
	CanManageEvent(ctx context.Context, eventID string, userID string) (bool, error)
}
