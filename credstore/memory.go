// Package credstore provides CredentialStore implementations: an in-memory
// store for tests and ephemeral sessions, a JSON file store mirroring
// browser local storage, and a Redis store for shared front-end shells.
// Each keeps two independent slots keyed by session domain; an absent slot
// means no session in that domain.
package credstore

import (
	"context"
	"sync"

	authstate "github.com/goliatone/go-authstate"
)

// Memory keeps credentials in process memory
type Memory struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewMemory returns an empty in-memory credential store
func NewMemory() *Memory {
	return &Memory{
		slots: map[string]string{},
	}
}

func (m *Memory) Get(_ context.Context, domain authstate.SessionDomain) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.slots[domain.Slot()], nil
}

func (m *Memory) Set(_ context.Context, domain authstate.SessionDomain, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[domain.Slot()] = token
	return nil
}

func (m *Memory) Delete(_ context.Context, domain authstate.SessionDomain) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, domain.Slot())
	return nil
}
