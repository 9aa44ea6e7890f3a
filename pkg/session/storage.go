package session

import "sync"

// Well-known storage keys.
const (
	KeyAccessToken   = "access_token"
	KeyUser          = "user"
	KeyRefreshCookie = "refresh_cookie"
)

// Storage is a durable key/value backend for session state.
// Save and Delete must return only after the value is durable.
type Storage interface {
	Load(key string) (string, bool, error)
	Save(key, value string) error
	Delete(keys ...string) error
}

// MemoryStorage keeps values for the lifetime of the process only.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage returns an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Load(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}
