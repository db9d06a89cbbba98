package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store using in-memory storage.
// This is NOT suitable for multi-node deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	items   map[string]*Session
	stopCh  chan struct{}
	stopped bool
}

// NewMemoryStore creates a new in-memory session store. The janitor
// sweeps expired sessions every interval.
func NewMemoryStore(janitorInterval time.Duration) *MemoryStore {
	if janitorInterval <= 0 {
		janitorInterval = 5 * time.Minute
	}

	s := &MemoryStore{
		items:  make(map[string]*Session),
		stopCh: make(chan struct{}),
	}

	go s.cleanupLoop(janitorInterval)

	return s
}

// cleanupLoop periodically removes expired sessions.
func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired sessions.
func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, sess := range s.items {
		if sess.Expired() {
			delete(s.items, token)
		}
	}
}

// Create stores a new session under its token.
func (s *MemoryStore) Create(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *sess
	s.items[sess.Token] = &copied
	return nil
}

// Get retrieves a live session by token.
func (s *MemoryStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.items[token]
	if !exists || sess.Expired() {
		return nil, ErrNotFound
	}

	// Return a copy to prevent mutation.
	copied := *sess
	return &copied, nil
}

// Update overwrites an existing session.
func (s *MemoryStore) Update(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.items[sess.Token]
	if !exists || current.Expired() {
		return ErrNotFound
	}

	copied := *sess
	s.items[sess.Token] = &copied
	return nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, token)
	return nil
}

// Close stops the janitor goroutine.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.stopped {
		close(s.stopCh)
		s.stopped = true
	}
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
