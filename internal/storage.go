package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Storage is the key-value substrate behind the store. Write and Remove
// are all-or-nothing: either every entry is applied or none is.
type Storage interface {
	// Read returns the values of the given keys. Missing keys are absent from the map.
	Read(ctx context.Context, keys ...string) (map[string]string, error)
	Write(ctx context.Context, entries map[string]string) error
	Remove(ctx context.Context, keys ...string) error
	Close() error
}

// MemoryStorage keeps entries in a map. Not safe for concurrent use.
type MemoryStorage struct {
	data map[string]string

	// WriteErr, when set, is returned by Write and Remove without applying anything.
	WriteErr error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Read(_ context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *MemoryStorage) Write(_ context.Context, entries map[string]string) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	for k, v := range entries {
		m.data[k] = v
	}
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, keys ...string) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *MemoryStorage) Keys() []string {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *MemoryStorage) Close() error { return nil }

// FileStorage keeps all entries in one JSON object file. Every change
// rewrites the whole file through a temp file and a rename.
type FileStorage struct {
	path     string
	readFile func(string) ([]byte, error)
}

// errCorruptState marks a state file that exists but is not valid JSON.
var errCorruptState = errors.New("corrupt state file")

func NewFileStorage(path string) (*FileStorage, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return &FileStorage{path: path, readFile: os.ReadFile}, nil
}

func (f *FileStorage) Path() string { return f.path }

func (f *FileStorage) load() (map[string]string, error) {
	data, err := f.readFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}
	entries := map[string]string{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w %s: %v", errCorruptState, f.path, err)
	}
	return entries, nil
}

func (f *FileStorage) save(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}

func (f *FileStorage) Read(_ context.Context, keys ...string) (map[string]string, error) {
	all, err := f.load()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// loadForUpdate returns the current entries. A corrupt file is replaced
// rather than blocking every future save; any other read error is returned
// so entries that could not be read are not dropped.
func (f *FileStorage) loadForUpdate() (map[string]string, error) {
	all, err := f.load()
	if errors.Is(err, errCorruptState) {
		return map[string]string{}, nil
	}
	return all, err
}

func (f *FileStorage) Write(_ context.Context, entries map[string]string) error {
	all, err := f.loadForUpdate()
	if err != nil {
		return err
	}
	for k, v := range entries {
		all[k] = v
	}
	return f.save(all)
}

func (f *FileStorage) Remove(_ context.Context, keys ...string) error {
	all, err := f.loadForUpdate()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(all, k)
	}
	return f.save(all)
}

func (f *FileStorage) Close() error { return nil }

// OpenStorage builds the backend named in cfg.
func OpenStorage(ctx context.Context, cfg StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStorage(), nil
	case BackendFile, "":
		return NewFileStorage(cfg.Path)
	case BackendSQLite:
		return NewSQLiteStorage(cfg.Path)
	case BackendRedis:
		return NewRedisStorage(ctx, RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	default:
		return nil, fmt.Errorf("unknown storage backend %q (available: %v)", cfg.Backend, StorageBackends)
	}
}
