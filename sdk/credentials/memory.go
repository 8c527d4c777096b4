package credentials

import (
	"sync"

	"github.com/cppe-issia/console/sdk/authx"
)

// MemoryStore is a Store that keeps credentials in process memory only.
type MemoryStore struct {
	mu        sync.RWMutex
	token     string
	userBytes []byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(token string, user authx.User) error {
	userBytes, err := encodeUser(user)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.userBytes = userBytes
	return nil
}

func (m *MemoryStore) Load() (string, *authx.User) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, decodeUser(m.userBytes)
}

func (m *MemoryStore) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.userBytes = nil
	return nil
}

// SetRaw replaces the stored values verbatim, bypassing serialization. It
// exists so that corrupted or partial state can be reproduced.
func (m *MemoryStore) SetRaw(token string, userBytes []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.userBytes = userBytes
}
