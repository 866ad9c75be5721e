package mapping

import (
	"context"
	"errors"
)

// ErrFieldNotFound is returned by KeyValue.GetField when the field has no
// value under the given key.
var ErrFieldNotFound = errors.New("field not found")

// KeyValue is the generic object-field storage capability provided by the
// host. Any storage engine satisfying these operations is substitutable.
type KeyValue interface {
	// GetField returns the value of field under key, or ErrFieldNotFound.
	GetField(ctx context.Context, key, field string) (string, error)

	// SetField writes the value of field under key, overwriting any
	// previous value.
	SetField(ctx context.Context, key, field, value string) error

	// DeleteField removes field under key. Deleting a field that does not
	// exist is a success.
	DeleteField(ctx context.Context, key, field string) error
}
