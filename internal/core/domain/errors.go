package domain

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrBookingNotOwned   = errors.New("booking does not belong to caller")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrMalformedCallback = errors.New("callback has no resolvable booking id")

	ErrInvalidCodeFormat          = errors.New("invalid ticket code format")
	ErrUnknownOrMismatchedBooking = errors.New("invalid booking or wrong event")
	ErrPaymentNotCompleted        = errors.New("payment not completed")
	ErrAlreadyCheckedIn           = errors.New("ticket already checked in")
)

// PaymentInitiationError is returned when an STK Push could not be started.
// Description is safe to show to the payer.
type PaymentInitiationError struct {
	Description string
	Err         error
}

func (e *PaymentInitiationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment initiation failed: %s: %v", e.Description, e.Err)
	}
	return "payment initiation failed: " + e.Description
}

func (e *PaymentInitiationError) Unwrap() error {
	return e.Err
}

func NewPaymentInitiationError(description string, err error) *PaymentInitiationError {
	return &PaymentInitiationError{Description: description, Err: err}
}
