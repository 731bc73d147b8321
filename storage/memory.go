package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agrosud-co/site-service/types"
)

// MemoryStore keeps leads in process memory. Used in tests and in
// environments where persistence is handled elsewhere.
type MemoryStore struct {
	mu      sync.RWMutex
	leads   []types.Lead
	running bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return types.ErrServerAlreadyRunning
	}
	s.running = true
	return nil
}

func (s *MemoryStore) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return types.ErrServerNotRunning
	}
	s.running = false
	return nil
}

func (s *MemoryStore) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *MemoryStore) SaveLead(ctx context.Context, lead types.Lead) (string, error) {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads = append(s.leads, lead)
	return lead.ID, nil
}

func (s *MemoryStore) CountLeads(ctx context.Context, kind string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if kind == "" {
		return int64(len(s.leads)), nil
	}

	var count int64
	for _, lead := range s.leads {
		if lead.Kind == kind {
			count++
		}
	}
	return count, nil
}
