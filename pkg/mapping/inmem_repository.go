package mapping

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryKeyValue implements KeyValue using in-memory storage. Suitable for
// tests and single-process deployments.
type InMemoryKeyValue struct {
	objects map[string]map[string]string
	mutex   sync.RWMutex
}

// NewInMemoryKeyValue creates an empty in-memory key-value store.
func NewInMemoryKeyValue() *InMemoryKeyValue {
	return &InMemoryKeyValue{
		objects: make(map[string]map[string]string),
	}
}

// GetField returns the value of field under key, or ErrFieldNotFound.
func (r *InMemoryKeyValue) GetField(ctx context.Context, key, field string) (string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	fields, exists := r.objects[key]
	if !exists {
		return "", fmt.Errorf("%w: %s/%s", ErrFieldNotFound, key, field)
	}
	value, exists := fields[field]
	if !exists {
		return "", fmt.Errorf("%w: %s/%s", ErrFieldNotFound, key, field)
	}
	return value, nil
}

// SetField writes the value of field under key.
func (r *InMemoryKeyValue) SetField(ctx context.Context, key, field, value string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	fields, exists := r.objects[key]
	if !exists {
		fields = make(map[string]string)
		r.objects[key] = fields
	}
	fields[field] = value
	return nil
}

// DeleteField removes field under key. Absent fields are a no-op success.
func (r *InMemoryKeyValue) DeleteField(ctx context.Context, key, field string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if fields, exists := r.objects[key]; exists {
		delete(fields, field)
	}
	return nil
}

// FieldCount returns the number of fields under key (useful for tests).
func (r *InMemoryKeyValue) FieldCount(key string) int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.objects[key])
}
