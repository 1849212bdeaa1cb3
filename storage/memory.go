package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps champions in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	champions   []Champion
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.champions = nil
	return nil
}

func (s *MemoryStore) SaveChampion(_ context.Context, c Champion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	if c.Network != nil {
		c.Network = c.Network.Clone()
	}
	for i := range s.champions {
		if s.champions[i].RunID == c.RunID && s.champions[i].Generation == c.Generation {
			s.champions[i] = c
			return nil
		}
	}
	s.champions = append(s.champions, c)
	return nil
}

func (s *MemoryStore) BestChampion(_ context.Context, runID string) (Champion, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return Champion{}, false, ErrNotInitialized
	}
	var best Champion
	found := false
	for _, c := range s.champions {
		if runID != "" && c.RunID != runID {
			continue
		}
		if !found || c.Fitness > best.Fitness {
			best = c
			found = true
		}
	}
	if found && best.Network != nil {
		best.Network = best.Network.Clone()
	}
	return best, found, nil
}

func (s *MemoryStore) Champions(_ context.Context, runID string) ([]Champion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	var out []Champion
	for _, c := range s.champions {
		if c.RunID != runID {
			continue
		}
		if c.Network != nil {
			c.Network = c.Network.Clone()
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Generation < out[j].Generation
	})
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
