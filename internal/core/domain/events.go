package domain

import "time"

type BookingEventType string

const (
	EventPaymentCompleted BookingEventType = "booking.payment_completed"
	EventPaymentFailed    BookingEventType = "booking.payment_failed"
	EventCheckedIn        BookingEventType = "booking.checked_in"
)

// BookingEvent is published on every applied booking transition so that
// readers holding cached booking state can invalidate it.
type BookingEvent struct {
	Type       BookingEventType `json:"event"`
	Version    int              `json:"version"`
	BookingID  string           `json:"booking_id"`
	EventID    string           `json:"event_id,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

func NewBookingEvent(t BookingEventType, bookingID, eventID string, at time.Time) BookingEvent {
	return BookingEvent{
		Type:       t,
		Version:    1,
		BookingID:  bookingID,
		EventID:    eventID,
		OccurredAt: at.UTC(),
	}
}
