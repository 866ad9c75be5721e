package strategy

import (
	"fmt"
	"sync"
)

// Descriptor is the strategy metadata a host needs to render and route a
// provider login.
type Descriptor struct {
	Name        string   `json:"name"`
	AuthURL     string   `json:"url"`
	CallbackURL string   `json:"callbackURL"`
	Icon        string   `json:"icon,omitempty"`
	LinkText    string   `json:"linktext,omitempty"`
	RegisterURL string   `json:"registerURL,omitempty"`
	Scope       []string `json:"scope"`
}

// Registry holds registered strategy adapters by provider name. The design
// is single-provider-per-instance, but the registry keeps the host-side
// contract of a shared strategy list.
type Registry struct {
	adapters map[string]*Adapter
	mutex    sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]*Adapter),
	}
}

// Add registers an adapter. Provider names must be unique.
func (r *Registry) Add(a *Adapter) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	name := a.Name()
	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("strategy already registered: %s", name)
	}
	r.adapters[name] = a
	return nil
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (*Adapter, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	a, exists := r.adapters[name]
	if !exists {
		return nil, fmt.Errorf("unknown strategy: %s", name)
	}
	return a, nil
}

// Descriptors returns the metadata of every registered strategy.
func (r *Registry) Descriptors() []Descriptor {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	descriptors := make([]Descriptor, 0, len(r.adapters))
	for _, a := range r.adapters {
		descriptors = append(descriptors, a.Descriptor())
	}
	return descriptors
}
