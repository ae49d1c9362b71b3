package session

import "sync"

// Store holds the pending request each user has between submitting links
// and choosing a quality. State is in-memory only and is lost on restart;
// the whitelist is the only durable store in the system.
type Store struct {
	mu      sync.Mutex
	pending map[int64]entry
}

type entry struct {
	urls  []string
	batch bool
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{pending: make(map[int64]entry)}
}

// PutSingle records a single-url pending request for the user, replacing
// any existing pending request of either mode.
func (s *Store) PutSingle(userID int64, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[userID] = entry{urls: []string{url}}
}

// PutBatch records a batch pending request for the user, replacing any
// existing pending request of either mode. The url order is preserved.
func (s *Store) PutBatch(userID int64, urls []string) {
	copied := make([]string, len(urls))
	copy(copied, urls)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[userID] = entry{urls: copied, batch: true}
}

// TakeSingle atomically consumes the user's single pending request.
// Returns false when there is no pending request or it is a batch.
func (s *Store) TakeSingle(userID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.pending[userID]
	if !ok || e.batch {
		return "", false
	}
	delete(s.pending, userID)
	return e.urls[0], true
}

// TakeBatch atomically consumes the user's batch pending request.
// Returns false when there is no pending request or it is a single.
func (s *Store) TakeBatch(userID int64) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.pending[userID]
	if !ok || !e.batch {
		return nil, false
	}
	delete(s.pending, userID)
	return e.urls, true
}

// Len returns the number of users with a pending request.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
