package domain

// ResultCodeSuccess is the provider result code for a settled payment.
const ResultCodeSuccess = 0

// ResultCodeMissing marks a provider answer that carried no result code.
// It is never a success.
const ResultCodeMissing = -1

// PaymentResult is the provider-agnostic outcome of one push payment, as
// delivered by a callback or recovered by a status query.
type PaymentResult struct {
	ResultCode        int
	ResultDesc        string
	BookingID         string
	CheckoutRequestID string
}

func (r PaymentResult) HasResultCode() bool {
	return r.ResultCode != ResultCodeMissing
}

func (r PaymentResult) Succeeded() bool {
	return r.ResultCode == ResultCodeSuccess
}
