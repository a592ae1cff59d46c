// Package kdeconnect sends SMS through a paired phone using kdeconnect-cli.
package kdeconnect

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/pdxmph/todo-tui/internal/sms"
)

const binary = "kdeconnect-cli"

// runner executes kdeconnect-cli and returns its combined output
type runner func(args ...string) ([]byte, error)

func execRunner(args ...string) ([]byte, error) {
	return exec.Command(binary, args...).CombinedOutput()
}

// Sender implements sms.Sender for KDE Connect
type Sender struct {
	enabled bool
	run     runner
}

// NewSender creates a new KDE Connect sender
func NewSender(sms.Settings) sms.Sender {
	return &Sender{
		enabled: isAvailable(),
		run:     execRunner,
	}
}

// Name returns the backend identifier
func (s *Sender) Name() string {
	return "kdeconnect"
}

// IsEnabled returns whether kdeconnect-cli is installed
func (s *Sender) IsEnabled() bool {
	return s.enabled
}

// Send texts body to number on the first reachable paired device
func (s *Sender) Send(number, body string) error {
	if !s.enabled {
		return fmt.Errorf("%s not available", binary)
	}

	device, err := s.firstDevice()
	if err != nil {
		return err
	}

	output, err := s.run("--device", device, "--send-sms", body, "--destination", number)
	if err != nil {
		return fmt.Errorf("sending sms: %w (output: %s)", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// firstDevice returns the id of the first paired, reachable device
func (s *Sender) firstDevice() (string, error) {
	output, err := s.run("--list-available", "--id-only")
	if err != nil {
		return "", fmt.Errorf("listing devices: %w (output: %s)", err, strings.TrimSpace(string(output)))
	}

	for _, line := range strings.Split(string(output), "\n") {
		if id := strings.TrimSpace(line); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("no reachable kdeconnect device")
}

func isAvailable() bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

func init() {
	sms.Register("kdeconnect", NewSender)
}
