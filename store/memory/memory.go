// Package memory is an in-process VoteStore used for tests and local runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"school-vote/models"
	"school-vote/store"
)

var _ store.VoteStore = (*Store)(nil)

type Store struct {
	mu      sync.RWMutex
	data    map[string]models.VoteRecord // by id
	byEmail map[string]string            // email -> id
}

func New() *Store {
	return &Store{
		data:    make(map[string]models.VoteRecord),
		byEmail: make(map[string]string),
	}
}

func (s *Store) InsertVote(_ context.Context, rec models.VoteRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[rec.Email]; exists {
		return "", store.ErrDuplicateVote
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	rec.ID = uuid.NewString()

	s.data[rec.ID] = rec
	s.byEmail[rec.Email] = rec.ID
	return rec.ID, nil
}

func (s *Store) QueryByEmail(_ context.Context, email string) ([]models.VoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return []models.VoteRecord{}, nil
	}
	return []models.VoteRecord{s.data[id]}, nil
}

func (s *Store) ListAll(_ context.Context) ([]models.VoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.VoteRecord, 0, len(s.data))
	for _, rec := range s.data {
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) DeleteAll(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.data)
	s.data = make(map[string]models.VoteRecord)
	s.byEmail = make(map[string]string)
	return n, nil
}

func (s *Store) Close() error { return nil }
