// Package photos keeps the most recent capture of every user in memory.
package photos

import (
	"sync"

	"github.com/dmitrijs2005/gophcam/internal/server/models"
)

// Store maps an owner identity to that owner's latest photo.
// Last write wins; entries live until the process exits.
type Store struct {
	mu     sync.RWMutex
	photos map[string]*models.CapturedPhoto
}

func NewStore() *Store {
	return &Store{photos: make(map[string]*models.CapturedPhoto)}
}

// Put replaces the photo kept for userID.
func (s *Store) Put(userID string, p *models.CapturedPhoto) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos[userID] = p
}

// Get returns the photo kept for userID, if any.
func (s *Store) Get(userID string) (*models.CapturedPhoto, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.photos[userID]
	return p, ok
}

// Len reports how many users have a cached photo.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos)
}
