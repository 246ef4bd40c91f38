package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eventtribe/ticketing/internal/core/domain"
	"github.com/eventtribe/ticketing/internal/core/ports/mocks"
	"github.com/eventtribe/ticketing/internal/core/services"
)

func paidStore() *memoryStore {
	store := newMemoryStore()
	store.add(domain.Booking{ID: "b1", EventID: "e1", UserID: "u1", PaymentStatus: domain.PaymentCompleted, QRCode: ptr("EVENTTRIBE-b1-1700000000000")}, "Alice")
	store.add(domain.Booking{ID: "b2", EventID: "e2", UserID: "u2", PaymentStatus: domain.PaymentCompleted, QRCode: ptr("EVENTTRIBE-b2-1700000000000")}, "Bob")
	store.add(domain.Booking{ID: "b3", EventID: "e1", UserID: "u3", PaymentStatus: domain.PaymentPending}, "Carol")
	return store
}

func newCheckInService(store *memoryStore, events *mocks.EventRepository) (*services.CheckInService, *nopPublisher) {
	pub := &nopPublisher{}
	return services.NewCheckInService(store, events, pub, services.WithClock(fixedClock)), pub
}

func TestVerify_ValidThenAlreadyCheckedIn(t *testing.T) {
	store := paidStore()
	svc, pub := newCheckInService(store, mocks.NewEventRepository(t))
	ctx := context.Background()

	first := svc.Verify(ctx, "EVENTTRIBE-b1-1700000000000", "e1")
	assert.True(t, first.Valid)
	assert.Equal(t, "Alice", first.UserName)
	assert.Equal(t, domain.MessageCheckInSuccess, first.Message)

	b := store.get("b1")
	require.NotNil(t, b.CheckedInAt)
	assert.Equal(t, fixedNow, *b.CheckedInAt)

	second := svc.Verify(ctx, "EVENTTRIBE-b1-1700000000000", "e1")
	assert.False(t, second.Valid)
	assert.Equal(t, domain.CheckInAlreadyCheckedIn, second.Kind)
	assert.Equal(t, "Alice", second.UserName)
	assert.Equal(t, fixedNow, *store.get("b1").CheckedInAt)

	require.Len(t, pub.events, 1)
	assert.Equal(t, domain.EventCheckedIn, pub.events[0].Type)
	assert.Equal(t, "e1", pub.events[0].EventID)
}

func TestVerify_WrongEvent(t *testing.T) {
	store := paidStore()
	svc, _ := newCheckInService(store, mocks.NewEventRepository(t))

	res := svc.Verify(context.Background(), "EVENTTRIBE-b2-1700000000000", "e1")

	assert.False(t, res.Valid)
	assert.Equal(t, domain.CheckInUnknownOrMismatchedBooking, res.Kind)
	assert.Equal(t, domain.MessageUnknownBooking, res.Message)
	assert.Nil(t, store.get("b2").CheckedInAt)
}

func TestVerify_UnknownBooking(t *testing.T) {
	svc, _ := newCheckInService(paidStore(), mocks.NewEventRepository(t))

	res := svc.Verify(context.Background(), "EVENTTRIBE-nope-1700000000000", "e1")

	assert.Equal(t, domain.CheckInUnknownOrMismatchedBooking, res.Kind)
}

func TestVerify_MalformedCodeSkipsStore(t *testing.T) {
	store := paidStore()
	svc, _ := newCheckInService(store, mocks.NewEventRepository(t))

	for _, code := range []string{"garbage", "WRONGNS-abc-123", "", "EVENTTRIBE-", "EVENTTRIBE--123", "EVENTTRIBE-b1", "EVENTTRIBE-b1-xyz"} {
		res := svc.Verify(context.Background(), code, "e1")
		assert.False(t, res.Valid, code)
		assert.Equal(t, domain.CheckInInvalidCodeFormat, res.Kind, code)
		assert.Equal(t, domain.MessageInvalidCodeFormat, res.Message, code)
	}

	assert.Zero(t, store.lookups)
}

func TestVerify_PaymentNotCompleted(t *testing.T) {
	store := paidStore()
	svc, _ := newCheckInService(store, mocks.NewEventRepository(t))

	res := svc.Verify(context.Background(), "EVENTTRIBE-b3-1700000000000", "e1")

	assert.Equal(t, domain.CheckInPaymentNotCompleted, res.Kind)
	assert.Equal(t, "Carol", res.UserName)
	assert.Nil(t, store.get("b3").CheckedInAt)
}

func TestVerify_CodeWithoutTimestampIsRejected(t *testing.T) {
	store := paidStore()
	svc, _ := newCheckInService(store, mocks.NewEventRepository(t))

	res := svc.Verify(context.Background(), "EVENTTRIBE-b1", "e1")

	assert.False(t, res.Valid)
	assert.Equal(t, domain.CheckInInvalidCodeFormat, res.Kind)
	assert.Zero(t, store.lookups)
	assert.Nil(t, store.get("b1").CheckedInAt)
}

func TestVerify_UUIDBookingID(t *testing.T) {
	const id = "4f8c2a8e-6b1d-4a8e-9c7b-2d1e5f6a7b8c"
	store := newMemoryStore()
	store.add(domain.Booking{ID: id, EventID: "e1", UserID: "u1", PaymentStatus: domain.PaymentCompleted}, "Dana")
	svc, _ := newCheckInService(store, mocks.NewEventRepository(t))

	code := domain.NewTicketCode(id, time.UnixMilli(1700000000000)).String()
	res := svc.Verify(context.Background(), code, "e1")

	assert.True(t, res.Valid)
	assert.Equal(t, "Dana", res.UserName)
}

func TestVerify_LostRace(t *testing.T) {
	bookings := mocks.NewBookingRepository(t)
	publisher := mocks.NewEventPublisher(t)
	svc := services.NewCheckInService(bookings, mocks.NewEventRepository(t), publisher, services.WithClock(fixedClock))
	ctx := context.Background()

	bookings.On("FindAttendee", ctx, "b1", "e1").Return(&domain.Attendee{
		BookingID: "b1", EventID: "e1", UserName: "Alice", PaymentStatus: domain.PaymentCompleted,
	}, nil)
	bookings.On("MarkCheckedIn", ctx, "b1", "e1", fixedNow).Return(false, nil)

	res := svc.Verify(ctx, "EVENTTRIBE-b1-1700000000000", "e1")

	assert.Equal(t, domain.CheckInAlreadyCheckedIn, res.Kind)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestVerify_StoreErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup", func(t *testing.T) {
		bookings := mocks.NewBookingRepository(t)
		svc := services.NewCheckInService(bookings, mocks.NewEventRepository(t), mocks.NewEventPublisher(t))
		bookings.On("FindAttendee", ctx, "b1", "e1").Return(nil, errors.New("timeout"))

		res := svc.Verify(ctx, "EVENTTRIBE-b1-1700000000000", "e1")

		assert.False(t, res.Valid)
		assert.Equal(t, domain.CheckInInternal, res.Kind)
		assert.Equal(t, domain.MessageVerificationFailed, res.Message)
		assert.Error(t, res.Err)
	})

	t.Run("update", func(t *testing.T) {
		bookings := mocks.NewBookingRepository(t)
		svc := services.NewCheckInService(bookings, mocks.NewEventRepository(t), mocks.NewEventPublisher(t))
		bookings.On("FindAttendee", ctx, "b1", "e1").Return(&domain.Attendee{
			BookingID: "b1", EventID: "e1", UserName: "Alice", PaymentStatus: domain.PaymentCompleted,
		}, nil)
		bookings.On("MarkCheckedIn", ctx, "b1", "e1", mock.AnythingOfType("time.Time")).Return(false, errors.New("timeout"))

		res := svc.Verify(ctx, "EVENTTRIBE-b1-1700000000000", "e1")

		assert.Equal(t, domain.CheckInInternal, res.Kind)
	})
}

func TestVerify_ConcurrentScansAdmitOnce(t *testing.T) {
	store := paidStore()
	svc, _ := newCheckInService(store, mocks.NewEventRepository(t))

	const stations = 16
	results := make([]domain.CheckInResult, stations)
	var wg sync.WaitGroup
	for i := 0; i < stations; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Verify(context.Background(), "EVENTTRIBE-b1-1700000000000", "e1")
		}(i)
	}
	wg.Wait()

	valid := 0
	for _, res := range results {
		if res.Valid {
			valid++
			continue
		}
		assert.Equal(t, domain.CheckInAlreadyCheckedIn, res.Kind)
	}
	assert.Equal(t, 1, valid)
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		sess    domain.Session
		setup   func(m *mocks.EventRepository)
		wantErr error
	}{
		{
			name:    "anonymous",
			sess:    domain.Session{},
			setup:   func(m *mocks.EventRepository) {},
			wantErr: domain.ErrUnauthenticated,
		},
		{
			name: "organizer",
			sess: domain.Session{UserID: "org"},
			setup: func(m *mocks.EventRepository) {
				m.On("CanManageEvent", ctx, "e1", "org").Return(true, nil)
			},
		},
		{
			name: "attendee",
			sess: domain.Session{UserID: "u1"},
			setup: func(m *mocks.EventRepository) {
				m.On("CanManageEvent", ctx, "e1", "u1").Return(false, nil)
			},
			wantErr: domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := mocks.NewEventRepository(t)
			tt.setup(events)
			svc := services.NewCheckInService(mocks.NewBookingRepository(t), events, mocks.NewEventPublisher(t))

			err := svc.Authorize(ctx, tt.sess, "e1")

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	t.Run("store error", func(t *testing.T) {
		events := mocks.NewEventRepository(t)
		events.On("CanManageEvent", ctx, "e1", "u1").Return(false, errors.New("down"))
		svc := services.NewCheckInService(mocks.NewBookingRepository(t), events, mocks.NewEventPublisher(t))

		err := svc.Authorize(ctx, domain.Session{UserID: "u1"}, "e1")

		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrForbidden)
	})
}
