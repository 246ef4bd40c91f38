package ports

import (
	"context"
	"fmt"
)

type STKPushRequest struct {
	BookingID   string
	PhoneNumber string
	Amount      int64
	Description string
}

type STKPushResponse struct {
	MerchantRequestID   string
	CheckoutRequestID   string
	ResponseCode        string
	ResponseDescription string
	CustomerMessage     string
}

func (r *STKPushResponse) Accepted() bool {
	return r.ResponseCode == "0"
}

type STKQueryResult struct {
	ResultCode int
	ResultDesc string
}

// PaymentGateway is the mobile-money provider.
type PaymentGateway interface {
	InitiateSTKPush(ctx context.Context, req STKPushRequest) (*STKPushResponse, error)
	// QuerySTKPush returns ErrPaymentStillProcessing while the payer has not answered.
	QuerySTKPush(ctx context.Context, checkoutRequestID string) (*STKQueryResult, error)
}

// PaymentGuard marks a booking as having an outstanding push payment.
type PaymentGuard interface {
	Acquire(ctx context.Context, bookingID string) (bool, error)
	Release(ctx context.Context, bookingID string) error
}

// ProviderError is a non-success answer from the payment provider.
type ProviderError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d %s: %s", e.StatusCode, e.Code, e.Description)
}

// Is matches provider errors by code, so callers can test against the
// sentinel values below.
func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	return ok && t.Code != "" && t.Code == e.Code
}

var ErrPaymentStillProcessing = &ProviderError{Code: "500.001.1001", Description: "The transaction is being processed"}
