package services

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/eventtribe/ticketing/internal/core/domain"
	"github.com/eventtribe/ticketing/internal/core/ports"
)

const msgPaymentRequested = "Payment request sent. Please check your phone."

type InitiatePaymentRequest struct {
	BookingID   string `json:"bookingId"`
	PhoneNumber string `json:"phoneNumber"`
}

type InitiatePaymentResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	CheckoutRequestID string `json:"checkoutRequestId"`
}

// PaymentService starts STK Push payments. It never resolves a booking; the
// outcome arrives later through CallbackService.
type PaymentService struct {
	bookings ports.BookingRepository
	gateway  ports.PaymentGateway
	guard    ports.PaymentGuard
	deps
}

func NewPaymentService(bookings ports.BookingRepository, gateway ports.PaymentGateway, guard ports.PaymentGuard, opts ...Option) *PaymentService {
	return &PaymentService{
		bookings: bookings,
		gateway:  gateway,
		guard:    guard,
		deps:     newDeps(opts),
	}
}

func (s *PaymentService) Initiate(ctx context.Context, sess domain.Session, req InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	resp, err := s.initiate(ctx, sess, req)

	outcome := "accepted"
	var initErr *domain.PaymentInitiationError
	switch {
	case errors.As(err, &initErr):
		outcome = "rejected"
	case err != nil:
		outcome = "denied"
	}
	s.metrics.PaymentInitiations.WithLabelValues(outcome).Inc()

	return resp, err
}

func (s *PaymentService) initiate(ctx context.Context, sess domain.Session, req InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	if sess.IsAnonymous() {
		return nil, domain.ErrUnauthenticated
	}

	if req.BookingID == "" || req.PhoneNumber == "" {
		return nil, domain.NewPaymentInitiationError("Missing bookingId or phoneNumber", nil)
	}

	phone, err := NormalizePhone(req.PhoneNumber)
	if err != nil {
		return nil, domain.NewPaymentInitiationError("Invalid phone number", err)
	}

	target, err := s.bookings.GetPaymentTarget(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return nil, domain.NewPaymentInitiationError("Booking not found", err)
		}
		return nil, domain.NewPaymentInitiationError("Could not load booking", err)
	}

	booking := target.Booking
	if booking.UserID != sess.UserID {
		return nil, domain.ErrBookingNotOwned
	}

	if booking.PaymentStatus != domain.PaymentPending {
		return nil, domain.NewPaymentInitiationError("Booking is not awaiting payment", nil)
	}

	amount := int64(math.Ceil(target.Price()))
	if amount < 1 {
		return nil, domain.NewPaymentInitiationError("Event does not require payment", nil)
	}

	acquired, err := s.guard.Acquire(ctx, booking.ID)
	if err != nil {
		s.log.Warn("Payment guard unavailable, continuing without it",
			zap.String("booking_id", booking.ID),
			zap.Error(err),
		)
		acquired = true
	}
	if !acquired {
		return nil, domain.NewPaymentInitiationError("A payment request is already in progress for this booking", nil)
	}

	s.log.Info("Initiating STK Push",
		zap.String("booking_id", booking.ID),
		zap.Int64("amount", amount),
		zap.String("phone", MaskPhone(phone)),
	)

	pushResp, err := s.gateway.InitiateSTKPush(ctx, ports.STKPushRequest{
		BookingID:   booking.ID,
		PhoneNumber: phone,
		Amount:      amount,
		Description: "Payment for " + target.EventTitle,
	})
	if err != nil {
		s.releaseGuard(ctx, booking.ID)
		s.log.Error("STK Push request failed", zap.String("booking_id", booking.ID), zap.Error(err))
		return nil, domain.NewPaymentInitiationError(providerDescription(err), err)
	}

	if !pushResp.Accepted() {
		s.releaseGuard(ctx, booking.ID)
		desc := pushResp.ResponseDescription
		if desc == "" {
			desc = "Payment initiation failed"
		}
		s.log.Warn("STK Push rejected by provider",
			zap.String("booking_id", booking.ID),
			zap.String("response_code", pushResp.ResponseCode),
			zap.String("description", desc),
		)
		return nil, domain.NewPaymentInitiationError(desc, nil)
	}

	// The payer is already prompted; a failed write here is logged, not returned.
	if err := s.bookings.RecordPaymentInitiation(ctx, booking.ID, phone, pushResp.CheckoutRequestID, s.now()); err != nil {
		s.log.Error("Failed to record payment initiation",
			zap.String("booking_id", booking.ID),
			zap.String("checkout_request_id", pushResp.CheckoutRequestID),
			zap.Error(err),
		)
	}

	return &InitiatePaymentResponse{
		Success:           true,
		Message:           msgPaymentRequested,
		CheckoutRequestID: pushResp.CheckoutRequestID,
	}, nil
}

func (s *PaymentService) releaseGuard(ctx context.Context, bookingID string) {
	if err := s.guard.Release(context.WithoutCancel(ctx), bookingID); err != nil {
		s.log.Warn("Failed to release payment guard", zap.String("booking_id", bookingID), zap.Error(err))
	}
}

func providerDescription(err error) string {
	var pe *ports.ProviderError
	if errors.As(err, &pe) && pe.Description != "" {
		return pe.Description
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Payment provider timed out"
	}
	return "Payment provider unavailable"
}
