package session

import (
	"context"
	"sync"

	"github.com/dkotenko/vlrbot/internal/pkg/models"
)

// MemoryStore is an in-process Store for deployments without Redis and for
// tests. Entries never expire; the bot clears them on pick or /cancel.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64][]models.MatchSegment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64][]models.MatchSegment)}
}

func (s *MemoryStore) Put(_ context.Context, chatID int64, segments []models.MatchSegment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = segments
	return nil
}

func (s *MemoryStore) Get(_ context.Context, chatID int64) ([]models.MatchSegment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	segments, ok := s.sessions[chatID]
	if !ok || len(segments) == 0 {
		return nil, ErrNoSession
	}
	return segments, nil
}

func (s *MemoryStore) Clear(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
	return nil
}
