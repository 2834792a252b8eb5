package domain

import (
	"fmt"
	"strings"
)

// PhoneDigits is the required length of a transfer number: 2 (country) + 2 (area) + 9 (subscriber).
const PhoneDigits = 13

// Destination is a transfer destination (a human attendant's WhatsApp number).
type Destination struct {
	ID          string `json:"id"`
	Title       string `json:"titulo"`
	Number      string `json:"numero"`
	Description string `json:"descricao,omitempty"`
}

// Message is a canned system message, keyed by a camelCase id.
type Message struct {
	ID      string `json:"id"`
	Title   string `json:"titulo"`
	Content string `json:"conteudo"`
}

// DigitsOnly strips every character other than the ASCII digits 0-9.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// NormalizePhone returns the digits of value, or ErrInvalidPhone unless exactly PhoneDigits remain.
func NormalizePhone(value string) (string, error) {
	digits := DigitsOnly(value)
	if len(digits) != PhoneDigits {
		return "", fmt.Errorf("%w: got %d digits", ErrInvalidPhone, len(digits))
	}
	return digits, nil
}

// FormatPhone renders digits as "+55 (44) 99999-9999", tolerating partial input.
func FormatPhone(value string) string {
	d := DigitsOnly(value)
	if len(d) > PhoneDigits {
		d = d[:PhoneDigits]
	}

	var b strings.Builder
	if len(d) > 0 {
		b.WriteString("+" + d[:min(2, len(d))])
	}
	if len(d) > 2 {
		b.WriteString(" (" + d[2:min(4, len(d))] + ")")
	}
	if len(d) > 4 {
		b.WriteString(" " + d[4:min(9, len(d))])
	}
	if len(d) > 9 {
		b.WriteString("-" + d[9:])
	}
	return b.String()
}
