package domain

import (
	"time"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// IsTerminal reports whether no further payment transition is allowed.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentCompleted || s == PaymentFailed
}

type Booking struct {
	ID                 string
	EventID            string
	UserID             string
	PaymentStatus      PaymentStatus
	PaymentPhone       *string
	QRCode             *string
	CheckedInAt        *time.Time
	FinalPrice         *float64
	CheckoutRequestID  *string
	PaymentInitiatedAt *time.Time
	CreatedAt          time.Time
}

func (b *Booking) IsCheckedIn() bool {
	return b.CheckedInAt != nil
}

// PaymentTarget is a booking joined with the event fields needed to charge for it.
type PaymentTarget struct {
	Booking    Booking
	EventTitle string
	EventPrice *float64
	EventFree  bool
}

// Price returns the amount owed before rounding: the discounted final price
// when one was recorded, otherwise the event's list price.
func (t *PaymentTarget) Price() float64 {
	if t.Booking.FinalPrice != nil {
		return *t.Booking.FinalPrice
	}
	if t.EventFree || t.EventPrice == nil {
		return 0
	}
	return *t.EventPrice
}

// Attendee is what a check-in station sees for a booking.
type Attendee struct {
	BookingID     string
	EventID       string
	UserName      string
	PaymentStatus PaymentStatus
	CheckedInAt   *time.Time
}

// PendingPayment is a booking whose STK Push was sent but never resolved.
type PendingPayment struct {
	BookingID          string
	CheckoutRequestID  string
	PaymentInitiatedAt time.Time
}
