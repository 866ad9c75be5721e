package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileKeyValue implements KeyValue using file-based JSON storage. Intended
// for development and small deployments without a database.
type FileKeyValue struct {
	dataDir string
	objects map[string]map[string]string
	mutex   sync.RWMutex
}

// keyValueData is the on-disk layout of the JSON file.
type keyValueData struct {
	Objects map[string]map[string]string `json:"objects"`
}

// NewFileKeyValue creates a file-backed key-value store under dataDir,
// loading any existing data.
func NewFileKeyValue(dataDir string) (*FileKeyValue, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileKeyValue{
		dataDir: dataDir,
		objects: make(map[string]map[string]string),
	}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

func (r *FileKeyValue) filePath() string {
	return filepath.Join(r.dataDir, "object_fields.json")
}

// load reads the data file. A missing file means an empty store.
func (r *FileKeyValue) load() error {
	data, err := os.ReadFile(r.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var stored keyValueData
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to parse data file: %w", err)
	}
	if stored.Objects != nil {
		r.objects = stored.Objects
	}
	return nil
}

// save persists the current state. Caller must hold the write lock.
func (r *FileKeyValue) save() error {
	data, err := json.MarshalIndent(keyValueData{Objects: r.objects}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := os.WriteFile(r.filePath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	return nil
}

// GetField returns the value of field under key, or ErrFieldNotFound.
func (r *FileKeyValue) GetField(ctx context.Context, key, field string) (string, error) {
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

// SetField writes the value of field under key and persists to disk.
func (r *FileKeyValue) SetField(ctx context.Context, key, field, value string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	fields, exists := r.objects[key]
	if !exists {
		fields = make(map[string]string)
		r.objects[key] = fields
	}
	fields[field] = value

	return r.save()
}

// DeleteField removes field under key. Absent fields are a no-op success.
func (r *FileKeyValue) DeleteField(ctx context.Context, key, field string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	fields, exists := r.objects[key]
	if !exists {
		return nil
	}
	if _, exists := fields[field]; !exists {
		return nil
	}
	delete(fields, field)

	return r.save()
}
