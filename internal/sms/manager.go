package sms

import (
	"fmt"
)

// Manager handles SMS backend selection and sending
type Manager struct {
	sender Sender
}

// NewManager creates a new SMS manager with the specified backend.
// If name is empty, it tries backends in order of preference.
func NewManager(name string, settings Settings) (*Manager, error) {
	if name != "" {
		sender, err := CreateSender(name, settings)
		if err != nil {
			return nil, fmt.Errorf("creating sms backend %s: %w", name, err)
		}
		return &Manager{sender: sender}, nil
	}

	for _, candidate := range []string{"kdeconnect", "command"} {
		s, err := CreateSender(candidate, settings)
		if err != nil {
			continue
		}
		if s.IsEnabled() {
			return &Manager{sender: s}, nil
		}
	}

	// If no backend is enabled, use noop
	return &Manager{sender: NewNoopSender()}, nil
}

// NewManagerWith wraps an existing sender
func NewManagerWith(sender Sender) *Manager {
	return &Manager{sender: sender}
}

// Name returns the name of the current backend
func (m *Manager) Name() string {
	return m.sender.Name()
}

// IsEnabled returns whether the current backend is enabled
func (m *Manager) IsEnabled() bool {
	return m.sender.IsEnabled()
}

// Send normalizes number and hands the message to the backend
func (m *Manager) Send(number, body string) error {
	normalized, err := NormalizeNumber(number)
	if err != nil {
		return err
	}
	if err := m.sender.Send(normalized, body); err != nil {
		return fmt.Errorf("sending via %s: %w", m.sender.Name(), err)
	}
	return nil
}
