package google

import (
	"context"
	"sync"
)

// MemoryCredentialStore is an in-process credential store keyed by email.
type MemoryCredentialStore struct {
	mu    sync.RWMutex
	creds map[string]string
}

// NewMemoryCredentialStore creates an empty store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{creds: make(map[string]string)}
}

// Load returns the stored credential blob, or empty when absent.
func (s *MemoryCredentialStore) Load(ctx context.Context, email string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds[email], nil
}

// Save stores the credential blob under the email.
func (s *MemoryCredentialStore) Save(ctx context.Context, creds, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[email] = creds
	return nil
}
