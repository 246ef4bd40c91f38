package services

import (
	"errors"
	"strings"
)

var errInvalidPhone = errors.New("phone number is not a dialable Kenyan MSISDN")

// NormalizePhone turns user input into the 2547XXXXXXXX form the provider
// dials: a leading 0 becomes 254 and a + is dropped.
func NormalizePhone(raw string) (string, error) {
	p := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '\t':
			return -1
		}
		return r
	}, raw)

	if strings.HasPrefix(p, "0") {
		p = "254" + p[1:]
	}
	p = strings.Replace(p, "+", "", 1)

	if len(p) == 9 && (p[0] == '7' || p[0] == '1') {
		p = "254" + p
	}

	if len(p) != 12 || !strings.HasPrefix(p, "254") {
		return "", errInvalidPhone
	}
	for i := 0; i < len(p); i++ {
		if p[i] < '0' || p[i] > '9' {
			return "", errInvalidPhone
		}
	}

	return p, nil
}

// MaskPhone hides the subscriber digits of an MSISDN for logging, keeping the
// country and network prefix and the last four digits.
func MaskPhone(phone string) string {
	if len(phone) <= 8 {
		return strings.Repeat("*", len(phone))
	}
	return phone[:4] + strings.Repeat("*", len(phone)-8) + phone[len(phone)-4:]
}
