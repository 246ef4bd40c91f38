package domain

import (
	"strconv"
	"strings"
	"time"
)

const TicketCodeNamespace = "EVENTTRIBE"

const ticketCodePrefix = TicketCodeNamespace + "-"

// TicketCode is the capability printed on a ticket:
// EVENTTRIBE-<bookingId>-<epochMillis>.
type TicketCode struct {
	BookingID string
	IssuedAt  time.Time
}

func NewTicketCode(bookingID string, issuedAt time.Time) TicketCode {
	return TicketCode{BookingID: bookingID, IssuedAt: issuedAt}
}

func (c TicketCode) String() string {
	var b strings.Builder
	b.Grow(len(ticketCodePrefix) + len(c.BookingID) + 14)
	b.WriteString(ticketCodePrefix)
	b.WriteString(c.BookingID)
	b.WriteByte('-')
	b.WriteString(strconv.FormatInt(c.IssuedAt.UnixMilli(), 10))
	return b.String()
}

// ParseTicketCode decodes a scanned or typed code. Booking ids may contain
// hyphens (UUIDs), so the timestamp is split off at the last hyphen. Every
// issued code ends in a numeric timestamp segment; anything else is rejected.
func ParseTicketCode(raw string) (TicketCode, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, ticketCodePrefix) {
		return TicketCode{}, ErrInvalidCodeFormat
	}

	rest := raw[len(ticketCodePrefix):]
	i := strings.LastIndexByte(rest, '-')
	if i < 0 || !isDigits(rest[i+1:]) {
		return TicketCode{}, ErrInvalidCodeFormat
	}

	ms, err := strconv.ParseInt(rest[i+1:], 10, 64)
	if err != nil {
		return TicketCode{}, ErrInvalidCodeFormat
	}

	code := TicketCode{BookingID: rest[:i], IssuedAt: time.UnixMilli(ms)}
	if code.BookingID == "" || strings.ContainsAny(code.BookingID, " \t\r\n") {
		return TicketCode{}, ErrInvalidCodeFormat
	}

	return code, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
