// Package command sends SMS by running a user-configured program, for
// gateways that ship a CLI (gammu, termux-sms-send, a curl wrapper).
package command

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/pdxmph/todo-tui/internal/sms"
)

// runner executes a program and returns its combined output
type runner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// Sender implements sms.Sender by running an argv template
type Sender struct {
	argv []string
	run  runner
}

// NewSender creates a command sender from the configured template
func NewSender(settings sms.Settings) sms.Sender {
	return &Sender{argv: settings.Command, run: execRunner}
}

// Name returns the backend identifier
func (s *Sender) Name() string {
	return "command"
}

// IsEnabled reports whether a template is configured and its program exists
func (s *Sender) IsEnabled() bool {
	if len(s.argv) == 0 {
		return false
	}
	_, err := exec.LookPath(s.argv[0])
	return err == nil
}

// Send runs the template with {number} and {body} filled in
func (s *Sender) Send(number, body string) error {
	if len(s.argv) == 0 {
		return fmt.Errorf("no sms command configured")
	}

	args := Expand(s.argv, number, body)
	output, err := s.run(args[0], args[1:]...)
	if err != nil {
		return fmt.Errorf("running %s: %w (output: %s)", args[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Expand substitutes the placeholders in every argument
func Expand(argv []string, number, body string) []string {
	r := strings.NewReplacer("{number}", number, "{body}", body)
	out := make([]string, len(argv))
	for i, arg := range argv {
		out[i] = r.Replace(arg)
	}
	return out
}

func init() {
	sms.Register("command", NewSender)
}
