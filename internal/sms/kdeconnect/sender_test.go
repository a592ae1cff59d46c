package kdeconnect

import (
	"errors"
	"strings"
	"testing"
)

func TestSendUsesFirstDevice(t *testing.T) {
	var calls [][]string
	s := &Sender{
		enabled: true,
		run: func(args ...string) ([]byte, error) {
			calls = append(calls, args)
			if args[0] == "--list-available" {
				return []byte("\nabc123\ndef456\n"), nil
			}
			return nil, nil
		},
	}

	if err := s.Send("5550101", "Pay rent"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	want := "--device abc123 --send-sms Pay rent --destination 5550101"
	if got := strings.Join(calls[1], " "); got != want {
		t.Errorf("send args = %q, want %q", got, want)
	}
}

func TestSendWithoutDevice(t *testing.T) {
	s := &Sender{
		enabled: true,
		run: func(args ...string) ([]byte, error) {
			return []byte("\n"), nil
		},
	}

	if err := s.Send("5550101", "x"); err == nil || !strings.Contains(err.Error(), "no reachable") {
		t.Errorf("expected a no-device error, got %v", err)
	}
}

func TestSendFailure(t *testing.T) {
	boom := errors.New("exit status 1")
	s := &Sender{
		enabled: true,
		run: func(args ...string) ([]byte, error) {
			if args[0] == "--list-available" {
				return []byte("abc123\n"), nil
			}
			return []byte("device unreachable"), boom
		},
	}

	if err := s.Send("5550101", "x"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestDisabledSender(t *testing.T) {
	s := &Sender{enabled: false, run: func(...string) ([]byte, error) {
		t.Fatal("runner should not be called")
		return nil, nil
	}}

	if err := s.Send("5550101", "x"); err == nil {
		t.Error("expected an error from a disabled sender")
	}
}
