package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/eventtribe/ticketing/internal/core/domain"
	"github.com/eventtribe/ticketing/internal/core/ports"
)

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeMalformed Outcome = "malformed"
	OutcomeError     Outcome = "error"
)

// CallbackService applies payment results to bookings. Transitions are
// conditional on the booking still being pending, so redelivered or
// concurrent results for the same booking are no-ops after the first.
type CallbackService struct {
	bookings  ports.BookingRepository
	publisher ports.EventPublisher
	deps
}

func NewCallbackService(bookings ports.BookingRepository, publisher ports.EventPublisher, opts ...Option) *CallbackService {
	return &CallbackService{
		bookings:  bookings,
		publisher: publisher,
		deps:      newDeps(opts),
	}
}

// Handle processes a provider callback.
func (s *CallbackService) Handle(ctx context.Context, result domain.PaymentResult) (Outcome, error) {
	outcome, err := s.Resolve(ctx, result)
	s.metrics.PaymentCallbacks.WithLabelValues(string(outcome)).Inc()
	return outcome, err
}

// Resolve moves a pending booking to completed or failed according to result.
func (s *CallbackService) Resolve(ctx context.Context, result domain.PaymentResult) (Outcome, error) {
	log := s.log.With(
		zap.Int("result_code", result.ResultCode),
		zap.String("result_desc", result.ResultDesc),
		zap.String("checkout_request_id", result.CheckoutRequestID),
	)

	if !result.HasResultCode() {
		log.Warn("Dropping payment result without result code", zap.String("booking_id", result.BookingID))
		return OutcomeMalformed, domain.ErrMalformedCallback
	}

	bookingID := result.BookingID
	if bookingID == "" && result.CheckoutRequestID != "" {
		id, err := s.bookings.BookingIDByCheckoutRequest(ctx, result.CheckoutRequestID)
		switch {
		case err == nil:
			bookingID = id
		case !errors.Is(err, domain.ErrBookingNotFound):
			log.Error("Failed to look up booking by checkout request", zap.Error(err))
			return OutcomeError, fmt.Errorf("look up checkout request %s: %w", result.CheckoutRequestID, err)
		}
	}

	if bookingID == "" {
		log.Warn("Dropping payment result without booking reference")
		return OutcomeMalformed, domain.ErrMalformedCallback
	}
	log = log.With(zap.String("booking_id", bookingID))

	if result.Succeeded() {
		code := domain.NewTicketCode(bookingID, s.now()).String()

		applied, err := s.bookings.CompletePayment(ctx, bookingID, code)
		if err != nil {
			log.Error("Failed to mark booking paid", zap.Error(err))
			return OutcomeError, fmt.Errorf("complete payment for booking %s: %w", bookingID, err)
		}
		if !applied {
			s.logUnapplied(ctx, log, bookingID, domain.PaymentCompleted)
			return OutcomeDuplicate, nil
		}

		log.Info("Payment completed, ticket issued")
		s.publish(ctx, log, domain.EventPaymentCompleted, bookingID)
		return OutcomeCompleted, nil
	}

	applied, err := s.bookings.FailPayment(ctx, bookingID)
	if err != nil {
		log.Error("Failed to mark booking payment failed", zap.Error(err))
		return OutcomeError, fmt.Errorf("fail payment for booking %s: %w", bookingID, err)
	}
	if !applied {
		s.logUnapplied(ctx, log, bookingID, domain.PaymentFailed)
		return OutcomeDuplicate, nil
	}

	log.Info("Payment failed")
	s.publish(ctx, log, domain.EventPaymentFailed, bookingID)
	return OutcomeFailed, nil
}

func (s *CallbackService) logUnapplied(ctx context.Context, log *zap.Logger, bookingID string, wanted domain.PaymentStatus) {
	current, err := s.bookings.GetBooking(ctx, bookingID)
	switch {
	case errors.Is(err, domain.ErrBookingNotFound):
		log.Warn("Payment result for unknown booking")
	case err != nil:
		log.Warn("Payment result not applied", zap.Error(err))
	case current.PaymentStatus == domain.PaymentFailed && wanted == domain.PaymentCompleted:
		// Money moved for a booking we already gave up on.
		log.Error("Successful payment for a failed booking needs manual reconciliation",
			zap.String("current_status", string(current.PaymentStatus)),
		)
	default:
		log.Info("Skipping duplicate payment result",
			zap.String("current_status", string(current.PaymentStatus)),
		)
	}
}

func (s *CallbackService) publish(ctx context.Context, log *zap.Logger, t domain.BookingEventType, bookingID string) {
	evt := domain.NewBookingEvent(t, bookingID, "", s.now())
	if err := s.publisher.Publish(ctx, evt); err != nil {
		log.Warn("Failed to publish booking event", zap.String("event", string(t)), zap.Error(err))
	}
}
