package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/eventtribe/ticketing/internal/core/domain"
	"github.com/eventtribe/ticketing/internal/core/ports"
)

type CheckInRequest struct {
	Code string `json:"code"`
}

// CheckInService redeems ticket codes at an event entrance. Each code is
// accepted at most once.
type CheckInService struct {
	bookings  ports.BookingRepository
	events    ports.EventRepository
	publisher ports.EventPublisher
	deps
}

func NewCheckInService(bookings ports.BookingRepository, events ports.EventRepository, publisher ports.EventPublisher, opts ...Option) *CheckInService {
	return &CheckInService{
		bookings:  bookings,
		events:    events,
		publisher: publisher,
		deps:      newDeps(opts),
	}
}

// Authorize allows the event organizer and administrators to run a station.
func (s *CheckInService) Authorize(ctx context.Context, sess domain.Session, eventID string) error {
	if sess.IsAnonymous() {
		return domain.ErrUnauthenticated
	}

	ok, err := s.events.CanManageEvent(ctx, eventID, sess.UserID)
	if err != nil {
		return fmt.Errorf("check event access: %w", err)
	}
	if !ok {
		return domain.ErrForbidden
	}

	return nil
}

// Verify checks a presented code against eventID and records the check-in.
// It never fails; every outcome is described by the result.
func (s *CheckInService) Verify(ctx context.Context, code string, eventID string) domain.CheckInResult {
	res := s.verify(ctx, code, eventID)

	label := string(res.Kind)
	if res.Valid {
		label = "accepted"
	}
	s.metrics.CheckIns.WithLabelValues(label).Inc()

	return res
}

func (s *CheckInService) verify(ctx context.Context, code string, eventID string) domain.CheckInResult {
	tc, err := domain.ParseTicketCode(code)
	if err != nil {
		return domain.CheckInRejected(err, "")
	}

	log := s.log.With(zap.String("booking_id", tc.BookingID), zap.String("event_id", eventID))

	if eventID == "" {
		return domain.CheckInRejected(domain.ErrUnknownOrMismatchedBooking, "")
	}

	attendee, err := s.bookings.FindAttendee(ctx, tc.BookingID, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			log.Info("Check-in rejected: no booking for this event")
			return domain.CheckInRejected(domain.ErrUnknownOrMismatchedBooking, "")
		}
		log.Error("Check-in lookup failed", zap.Error(err))
		return domain.CheckInRejected(err, "")
	}

	if attendee.PaymentStatus != domain.PaymentCompleted {
		log.Info("Check-in rejected: payment not completed", zap.String("payment_status", string(attendee.PaymentStatus)))
		return domain.CheckInRejected(domain.ErrPaymentNotCompleted, attendee.UserName)
	}

	if attendee.CheckedInAt != nil {
		log.Info("Check-in rejected: already checked in", zap.Time("checked_in_at", *attendee.CheckedInAt))
		return domain.CheckInRejected(domain.ErrAlreadyCheckedIn, attendee.UserName)
	}

	now := s.now()
	stamped, err := s.bookings.MarkCheckedIn(ctx, tc.BookingID, eventID, now)
	if err != nil {
		log.Error("Failed to record check-in", zap.Error(err))
		return domain.CheckInRejected(err, attendee.UserName)
	}
	if !stamped {
		// Another station won the conditional update.
		log.Info("Check-in rejected: concurrent scan already recorded")
		return domain.CheckInRejected(domain.ErrAlreadyCheckedIn, attendee.UserName)
	}

	log.Info("Attendee checked in", zap.String("user_name", attendee.UserName))

	evt := domain.NewBookingEvent(domain.EventCheckedIn, tc.BookingID, eventID, now)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		log.Warn("Failed to publish check-in event", zap.Error(err))
	}

	return domain.CheckInAccepted(attendee.UserName)
}
