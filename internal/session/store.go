// Package session persists the signed-in identity and the backend credentials of the local profile.
//
// [Store] reads and writes the [models.Session] record, [Context] holds the active record for the
// running application and notifies subscribers when it changes, and [Jar] keeps the backend's cookies
// so credentials survive restarts.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/repositories"
)

// AuthKey is the durable key holding the serialized session record.
const AuthKey = "auth"

// KV is the durable key-value storage behind the profile.
//
// Get returns an error wrapping [repositories.ErrKeyNotFound] for absent keys.
type KV interface {
	Get(key string) (string, error)
	Put(key, value string) error
	Delete(key string) error
}

var (
	_ KV = (*repositories.KVRepository)(nil)
	_ KV = (*MemoryKV)(nil)
)

// Store reads and writes the session record.
type Store struct {
	kv     KV
	logger *log.Logger
}

// NewStore creates a [Store] over kv.
func NewStore(kv KV, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{kv: kv, logger: logger}
}

// Read returns the persisted session, or the anonymous session when nothing usable is stored.
//
// Corrupt data and unavailable storage are logged, never returned.
func (s *Store) Read() models.Session {
	raw, err := s.kv.Get(AuthKey)
	if errors.Is(err, repositories.ErrKeyNotFound) {
		return models.Session{}
	}
	if err != nil {
		s.logger.Warn("session storage unavailable", "error", err)
		return models.Session{}
	}

	var rec models.Session
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.logger.Warn("discarding corrupt session record", "error", err)
		return models.Session{}
	}
	return rec.Sanitize()
}

// Write persists rec synchronously.
func (s *Store) Write(rec models.Session) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.kv.Put(AuthKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Clear removes the persisted session.
func (s *Store) Clear() error {
	if err := s.kv.Delete(AuthKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// MemoryKV is a process-local [KV], used when the profile database is unavailable.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: map[string]string{}}
}

func (m *MemoryKV) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", repositories.ErrKeyNotFound, key)
	}
	return v, nil
}

func (m *MemoryKV) Put(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
