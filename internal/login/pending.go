package login

import (
	"sync"
)

// PendingStore tracks login requests awaiting a dialog redirect, keyed by
// auth id.
type PendingStore struct {
	mu       sync.RWMutex
	requests map[string]*Request
}

// NewPendingStore creates a new pending request store.
func NewPendingStore() *PendingStore {
	return &PendingStore{
		requests: make(map[string]*Request),
	}
}

// Put records a request awaiting its redirect.
func (s *PendingStore) Put(req *Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.AuthID] = req
}

// Get retrieves a pending request by auth id.
func (s *PendingStore) Get(authID string) *Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests[authID]
}

// Take retrieves and removes a pending request; a redirect completes a
// request at most once.
func (s *PendingStore) Take(authID string) *Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	req := s.requests[authID]
	delete(s.requests, authID)
	return req
}

// Delete removes a pending request by auth id.
func (s *PendingStore) Delete(authID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requests, authID)
}
