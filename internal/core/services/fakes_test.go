package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/eventtribe/ticketing/internal/core/domain"
	"github.com/eventtribe/ticketing/internal/core/ports"
)

// memoryStore is a BookingRepository with the same conditional-write rules
// as the Postgres adapter.
type memoryStore struct {
	mu        sync.Mutex
	bookings  map[string]*domain.Booking
	usernames map[string]string
	lookups   int
}

var _ ports.BookingRepository = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{
		bookings:  map[string]*domain.Booking{},
		usernames: map[string]string{},
	}
}

func (m *memoryStore) add(b domain.Booking, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := b
	m.bookings[b.ID] = &cp
	m.usernames[b.UserID] = username
}

func (m *memoryStore) get(id string) domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.bookings[id]
}

func (m *memoryStore) GetBooking(_ context.Context, bookingID string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memoryStore) GetPaymentTarget(ctx context.Context, bookingID string) (*domain.PaymentTarget, error) {
	b, err := m.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	price := 100.0
	return &domain.PaymentTarget{Booking: *b, EventTitle: "Test Event", EventPrice: &price}, nil
}

func (m *memoryStore) RecordPaymentInitiation(_ context.Context, bookingID, phone, checkoutRequestID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok || b.PaymentStatus != domain.PaymentPending {
		return nil
	}
	b.PaymentPhone = &phone
	b.CheckoutRequestID = &checkoutRequestID
	b.PaymentInitiatedAt = &at
	return nil
}

func (m *memoryStore) BookingIDByCheckoutRequest(_ context.Context, checkoutRequestID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, b := range m.bookings {
		if b.CheckoutRequestID != nil && *b.CheckoutRequestID == checkoutRequestID {
			return id, nil
		}
	}
	return "", domain.ErrBookingNotFound
}

func (m *memoryStore) CompletePayment(_ context.Context, bookingID, qrCode string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok || b.PaymentStatus != domain.PaymentPending {
		return false, nil
	}
	b.PaymentStatus = domain.PaymentCompleted
	b.QRCode = &qrCode
	return true, nil
}

func (m *memoryStore) FailPayment(_ context.Context, bookingID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok || b.PaymentStatus != domain.PaymentPending {
		return false, nil
	}
	b.PaymentStatus = domain.PaymentFailed
	return true, nil
}

func (m *memoryStore) ListUnresolvedPayments(_ context.Context, initiatedBefore time.Time, limit int) ([]domain.PendingPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PendingPayment
	for id, b := range m.bookings {
		if len(out) == limit {
			break
		}
		if b.PaymentStatus == domain.PaymentPending && b.CheckoutRequestID != nil &&
			b.PaymentInitiatedAt != nil && b.PaymentInitiatedAt.Before(initiatedBefore) {
			out = append(out, domain.PendingPayment{
				BookingID:          id,
				CheckoutRequestID:  *b.CheckoutRequestID,
				PaymentInitiatedAt: *b.PaymentInitiatedAt,
			})
		}
	}
	return out, nil
}

func (m *memoryStore) FindAttendee(_ context.Context, bookingID, eventID string) (*domain.Attendee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	b, ok := m.bookings[bookingID]
	if !ok || b.EventID != eventID {
		return nil, domain.ErrBookingNotFound
	}
	return &domain.Attendee{
		BookingID:     b.ID,
		EventID:       b.EventID,
		UserName:      m.usernames[b.UserID],
		PaymentStatus: b.PaymentStatus,
		CheckedInAt:   b.CheckedInAt,
	}, nil
}

func (m *memoryStore) MarkCheckedIn(_ context.Context, bookingID, eventID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok || b.EventID != eventID || b.PaymentStatus != domain.PaymentCompleted || b.CheckedInAt != nil {
		return false, nil
	}
	b.CheckedInAt = &at
	return true, nil
}

type nopPublisher struct {
	mu     sync.Mutex
	events []domain.BookingEvent
}

func (p *nopPublisher) Publish(_ context.Context, evt domain.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

// stepClock advances by one millisecond on every read.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.UnixMilli(1690000000000)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}
