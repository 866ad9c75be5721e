package strategy

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrStateNotFound is returned when a state value is unknown, expired, or
// already consumed.
var ErrStateNotFound = errors.New("oauth2 state not found")

// State is the anti-forgery parameter carried through one OAuth2 round trip.
type State struct {
	Value       string `json:"value"`
	Provider    string `json:"provider"`
	RedirectURL string `json:"redirect_url,omitempty"`
	ExpiresAt   int64  `json:"expires_at"`
}

// StateStore keeps pending OAuth2 states between the redirect to the
// provider and the callback.
type StateStore interface {
	// Store saves a pending state.
	Store(state *State) error

	// Consume returns the state for value and removes it. States are
	// single use; unknown or expired values return ErrStateNotFound.
	Consume(value string) (*State, error)

	// CleanupExpired drops expired states.
	CleanupExpired() error
}

// NewStateValue generates a cryptographically secure random state value.
func NewStateValue() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// InMemoryStateStore implements StateStore using in-memory storage.
type InMemoryStateStore struct {
	states map[string]*State
	mutex  sync.Mutex
}

// NewInMemoryStateStore creates an empty state store.
func NewInMemoryStateStore() *InMemoryStateStore {
	return &InMemoryStateStore{
		states: make(map[string]*State),
	}
}

// Store saves a pending state.
func (s *InMemoryStateStore) Store(state *State) error {
	if state == nil || state.Value == "" {
		return fmt.Errorf("state value cannot be empty")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stateCopy := *state
	s.states[state.Value] = &stateCopy
	return nil
}

// Consume returns and removes the state for value.
func (s *InMemoryStateStore) Consume(value string) (*State, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	state, exists := s.states[value]
	if !exists {
		return nil, ErrStateNotFound
	}
	delete(s.states, value)

	if time.Now().Unix() > state.ExpiresAt {
		return nil, fmt.Errorf("%w: expired", ErrStateNotFound)
	}
	return state, nil
}

// CleanupExpired drops expired states.
func (s *InMemoryStateStore) CleanupExpired() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now().Unix()
	for value, state := range s.states {
		if now > state.ExpiresAt {
			delete(s.states, value)
		}
	}
	return nil
}

// Len returns the number of pending states (useful for tests).
func (s *InMemoryStateStore) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.states)
}
