package sms

import "errors"

// ErrNoBackend is returned by the noop sender
var ErrNoBackend = errors.New("no SMS backend configured")

// NoopSender is a sender that does nothing, used when no SMS backend is available
type NoopSender struct{}

// NewNoopSender creates a new no-op sender
func NewNoopSender() Sender {
	return &NoopSender{}
}

// Name returns the backend identifier
func (n *NoopSender) Name() string {
	return "noop"
}

// IsEnabled always returns false for the noop sender
func (n *NoopSender) IsEnabled() bool {
	return false
}

// Send returns an error indicating no backend is available
func (n *NoopSender) Send(number, body string) error {
	return ErrNoBackend
}

func init() {
	Register("noop", func(Settings) Sender { return NewNoopSender() })
}
