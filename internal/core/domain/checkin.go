package domain

import "errors"

type CheckInKind string

const (
	CheckInOK                         CheckInKind = ""
	CheckInInvalidCodeFormat          CheckInKind = "invalid_code_format"
	CheckInUnknownOrMismatchedBooking CheckInKind = "unknown_or_mismatched_booking"
	CheckInPaymentNotCompleted        CheckInKind = "payment_not_completed"
	CheckInAlreadyCheckedIn           CheckInKind = "already_checked_in"
	CheckInInternal                   CheckInKind = "internal"
)

const (
	MessageCheckInSuccess      = "Valid ticket - Check-in successful!"
	MessageInvalidCodeFormat   = "Invalid QR code format"
	MessageUnknownBooking      = "Invalid booking or wrong event"
	MessagePaymentNotCompleted = "Payment not completed"
	MessageAlreadyCheckedIn    = "Ticket already checked in"
	MessageVerificationFailed  = "Verification failed"
)

// CheckInResult is the outcome shown to the check-in operator.
type CheckInResult struct {
	Valid    bool        `json:"valid"`
	UserName string      `json:"userName,omitempty"`
	Message  string      `json:"message"`
	Kind     CheckInKind `json:"kind,omitempty"`
	Err      error       `json:"-"`
}

func CheckInAccepted(userName string) CheckInResult {
	return CheckInResult{Valid: true, UserName: userName, Message: MessageCheckInSuccess}
}

// CheckInRejected builds a rejection from one of the check-in sentinel errors.
func CheckInRejected(err error, userName string) CheckInResult {
	res := CheckInResult{UserName: userName, Err: err}

	switch {
	case errors.Is(err, ErrInvalidCodeFormat):
		res.Kind, res.Message = CheckInInvalidCodeFormat, MessageInvalidCodeFormat
	case errors.Is(err, ErrUnknownOrMismatchedBooking):
		res.Kind, res.Message = CheckInUnknownOrMismatchedBooking, MessageUnknownBooking
	case errors.Is(err, ErrPaymentNotCompleted):
		res.Kind, res.Message = CheckInPaymentNotCompleted, MessagePaymentNotCompleted
	case errors.Is(err, ErrAlreadyCheckedIn):
		res.Kind, res.Message = CheckInAlreadyCheckedIn, MessageAlreadyCheckedIn
	default:
		res.Kind, res.Message = CheckInInternal, MessageVerificationFailed
	}

	return res
}
