package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"vmsgate/pkg/models"
)

// MemoryStore is an in-process Store used by tests and throwaway setups.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*models.ConnectorConfig, error) {
	s.mu.RLock()
	doc, ok := s.recs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, models.NewNotFoundError(id)
	}
	var cfg models.ConnectorConfig
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return nil, models.NewPersistenceError("stored connector document is corrupt", err)
	}
	return &cfg, nil
}

func (s *MemoryStore) Save(_ context.Context, cfg *models.ConnectorConfig) error {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return models.NewPersistenceError("failed to encode connector", err)
	}
	s.mu.Lock()
	s.recs[cfg.ID] = doc
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[id]; !ok {
		return models.NewNotFoundError(id)
	}
	delete(s.recs, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]*models.ConnectorConfig, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.recs))
	for id := range s.recs {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	out := make([]*models.ConnectorConfig, 0, len(ids))
	for _, id := range ids {
		cfg, err := s.Load(context.Background(), id)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, nil
}
