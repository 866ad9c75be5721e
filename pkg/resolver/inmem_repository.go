package resolver

import (
	"context"
	"fmt"
	"sync"
)

// userRecord is the in-memory shape of a local account.
type userRecord struct {
	ID       int64
	Username string
	Email    string
	Fields   map[string]string
}

// InMemoryUserStore implements UserStore with host-style uniqueness
// constraints on username and email. Suitable for tests and demos; a real
// host supplies its own implementation.
type InMemoryUserStore struct {
	users      map[int64]*userRecord
	byEmail    map[string]int64
	byUsername map[string]int64
	nextID     int64
	mutex      sync.RWMutex
}

// NewInMemoryUserStore creates an empty in-memory user store.
func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:      make(map[int64]*userRecord),
		byEmail:    make(map[string]int64),
		byUsername: make(map[string]int64),
		nextID:     1,
	}
}

// GetUserIDByEmail returns the id of the account holding email.
func (r *InMemoryUserStore) GetUserIDByEmail(ctx context.Context, email string) (int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	userID, exists := r.byEmail[email]
	if !exists {
		return 0, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	return userID, nil
}

// CreateUser creates an account, enforcing username and email uniqueness.
func (r *InMemoryUserStore) CreateUser(ctx context.Context, user NewUser) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return 0, fmt.Errorf("%w: email %s is taken", ErrAccountExists, user.Email)
	}
	if _, exists := r.byUsername[user.Username]; exists {
		return 0, fmt.Errorf("%w: username %s is taken", ErrAccountExists, user.Username)
	}

	id := r.nextID
	r.nextID++

	r.users[id] = &userRecord{
		ID:       id,
		Username: user.Username,
		Email:    user.Email,
		Fields:   make(map[string]string),
	}
	r.byEmail[user.Email] = id
	r.byUsername[user.Username] = id

	return id, nil
}

// GetUserField reads a denormalized field. Unset fields return "".
func (r *InMemoryUserStore) GetUserField(ctx context.Context, userID int64, field string) (string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	user, exists := r.users[userID]
	if !exists {
		return "", fmt.Errorf("%w: id %d", ErrUserNotFound, userID)
	}
	return user.Fields[field], nil
}

// SetUserField writes a denormalized field on the user record.
func (r *InMemoryUserStore) SetUserField(ctx context.Context, userID int64, field, value string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	user, exists := r.users[userID]
	if !exists {
		return fmt.Errorf("%w: id %d", ErrUserNotFound, userID)
	}
	user.Fields[field] = value
	return nil
}

// UserCount returns the number of accounts (useful for tests).
func (r *InMemoryUserStore) UserCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.users)
}

// InMemoryGroupStore implements GroupStore using in-memory storage.
type InMemoryGroupStore struct {
	members map[string]map[int64]bool
	mutex   sync.RWMutex
}

// NewInMemoryGroupStore creates an empty in-memory group store.
func NewInMemoryGroupStore() *InMemoryGroupStore {
	return &InMemoryGroupStore{
		members: make(map[string]map[int64]bool),
	}
}

// Join adds the user to the group. Re-joining is a success.
func (r *InMemoryGroupStore) Join(ctx context.Context, group string, userID int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	users, exists := r.members[group]
	if !exists {
		users = make(map[int64]bool)
		r.members[group] = users
	}
	users[userID] = true
	return nil
}

// IsMember reports whether the user is in the group (useful for tests).
func (r *InMemoryGroupStore) IsMember(group string, userID int64) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.members[group][userID]
}
