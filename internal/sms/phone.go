package sms

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoPhoneNumber is returned when a task has no number to text
	ErrNoPhoneNumber = errors.New("no phone number set")

	// ErrInvalidPhoneNumber is returned for numbers with stray characters
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
)

// NormalizeNumber strips the formatting people type into phone numbers:
// spaces, dashes, dots and parentheses. A leading + is kept.
func NormalizeNumber(number string) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", ErrNoPhoneNumber
	}

	var b strings.Builder
	for i, r := range number {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
			// formatting
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidPhoneNumber, number)
		}
	}

	digits := strings.TrimPrefix(b.String(), "+")
	if len(digits) < 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhoneNumber, number)
	}
	return b.String(), nil
}
