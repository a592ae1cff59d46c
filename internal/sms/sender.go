// Package sms sends best-effort text message reminders through one of
// several pluggable backends. Delivery results are reported to the caller
// and never touch task data.
package sms

// Settings carries backend configuration from the config file
type Settings struct {
	// Command is the argv template used by the command backend.
	// {number} and {body} are replaced before running.
	Command []string
}

// Sender defines the interface that all SMS backends must implement
type Sender interface {
	// Name returns the backend identifier (e.g., "kdeconnect", "command")
	Name() string

	// IsEnabled checks if the backend is available and properly configured
	IsEnabled() bool

	// Send delivers body to a normalized phone number
	Send(number, body string) error
}

// SenderFactory creates a new instance of a Sender
type SenderFactory func(Settings) Sender
