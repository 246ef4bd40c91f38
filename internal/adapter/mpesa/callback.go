package mpesa

import (
	"encoding/json"
	"strings"

	"github.com/eventtribe/ticketing/internal/core/domain"
)

const itemAccountReference = "AccountReference"

// CallbackPayload is the body Daraja posts to the registered CallBackURL.
type CallbackPayload struct {
	Body struct {
		STKCallback STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        resultCode        `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type CallbackMetadata struct {
	Item []CallbackItem `json:"Item"`
}

// CallbackItem values are strings or numbers depending on the item.
type CallbackItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value,omitempty"`
}

// String renders the value without JSON quoting.
func (i CallbackItem) String() string {
	if len(i.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(i.Value, &s); err == nil {
		return s
	}
	raw := strings.TrimSpace(string(i.Value))
	if raw == "null" {
		return ""
	}
	return raw
}

// Item returns the named metadata value, or "" when absent.
func (cb *STKCallback) Item(name string) string {
	if cb.CallbackMetadata == nil {
		return ""
	}
	for _, item := range cb.CallbackMetadata.Item {
		if item.Name == name {
			return item.String()
		}
	}
	return ""
}

// Result converts the callback to a provider-agnostic payment result. A
// callback without a result code yields domain.ResultCodeMissing.
func (p *CallbackPayload) Result() domain.PaymentResult {
	cb := p.Body.STKCallback

	code := domain.ResultCodeMissing
	if cb.ResultCode.set {
		code = cb.ResultCode.value
	}

	return domain.PaymentResult{
		ResultCode:        code,
		ResultDesc:        cb.ResultDesc,
		BookingID:         strings.TrimSpace(cb.Item(itemAccountReference)),
		CheckoutRequestID: cb.CheckoutRequestID,
	}
}
