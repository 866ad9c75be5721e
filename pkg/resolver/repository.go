package resolver

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound is returned by UserStore.GetUserIDByEmail when no
	// account carries the address.
	ErrUserNotFound = errors.New("user not found")

	// ErrAccountExists is returned by UserStore.CreateUser when the
	// username or email collides with a host uniqueness constraint.
	ErrAccountExists = errors.New("account already exists")
)

// NewUser carries the fields for host-side account creation.
type NewUser struct {
	Username string
	Email    string
}

// UserStore is the host's user storage capability. Any engine satisfying
// these operations is substitutable; the adapter never touches user records
// except through it.
type UserStore interface {
	// GetUserIDByEmail returns the id of the account holding email, or
	// ErrUserNotFound.
	GetUserIDByEmail(ctx context.Context, email string) (int64, error)

	// CreateUser creates a new account and returns its id. Uniqueness
	// collisions surface as ErrAccountExists.
	CreateUser(ctx context.Context, user NewUser) (int64, error)

	// GetUserField reads a denormalized field from the user record. An
	// unset field returns the empty string, not an error.
	GetUserField(ctx context.Context, userID int64, field string) (string, error)

	// SetUserField writes a denormalized field on the user record.
	SetUserField(ctx context.Context, userID int64, field, value string) error
}

// GroupStore is the host's group-membership capability.
type GroupStore interface {
	// Join adds the user to the named group. Joining a group the user is
	// already in is a success.
	Join(ctx context.Context, group string, userID int64) error
}
