package sms

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownBackend is returned when no backend has the requested name
var ErrUnknownBackend = errors.New("unknown sms backend")

// Registry maps backend names to factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]SenderFactory
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]SenderFactory)}
}

// Register adds a factory under name. It panics if name is taken or
// factory is nil; backends register from init.
func (r *Registry) Register(name string, factory SenderFactory) {
	if factory == nil {
		panic("sms: Register factory is nil for " + name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[name]; dup {
		panic("sms: Register called twice for " + name)
	}
	r.factories[name] = factory
}

// Create builds the sender registered as name
func (r *Registry) Create(name string, settings Settings) (Sender, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownBackend, name, r.Names())
	}
	return factory(settings), nil
}

// Names returns the registered backend names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var backends = NewRegistry()

// Register makes a backend available to NewManager
func Register(name string, factory SenderFactory) {
	backends.Register(name, factory)
}

// CreateSender builds a registered backend
func CreateSender(name string, settings Settings) (Sender, error) {
	return backends.Create(name, settings)
}

// Backends lists the registered backend names
func Backends() []string {
	return backends.Names()
}
