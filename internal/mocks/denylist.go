package mocks

import (
	"context"
	"sync"
	"time"
)

// MockDenylist is an in-memory token.Revoker. Entries never expire.
type MockDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration

	// Err, when set, is returned by every call.
	Err error
}

// NewMockDenylist returns an empty denylist.
func NewMockDenylist() *MockDenylist {
	return &MockDenylist{revoked: make(map[string]time.Duration)}
}

func (m *MockDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.revoked[jti] = ttl
	return nil
}

func (m *MockDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

// TTL returns the lifetime a jti was revoked with.
func (m *MockDenylist) TTL(jti string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ttl, ok := m.revoked[jti]
	return ttl, ok
}
