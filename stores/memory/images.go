package memory

import (
	"context"
	"fmt"
	"sync"

	"pos-server/core"
)

type memImageStore struct {
	mu     sync.RWMutex
	images map[string][]byte
}

func NewImageStore() *memImageStore {
	return &memImageStore{images: make(map[string][]byte)}
}

func imageKey(businessID int64, key string) string {
	return fmt.Sprintf("%d/%s", businessID, key)
}

func (s *memImageStore) SaveImage(_ context.Context, businessID int64, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[imageKey(businessID, key)] = append([]byte(nil), data...)
	return nil
}

func (s *memImageStore) GetImage(_ context.Context, businessID int64, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.images[imageKey(businessID, key)]
	if !ok {
		return nil, core.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *memImageStore) DeleteImage(_ context.Context, businessID int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := imageKey(businessID, key)
	if _, ok := s.images[k]; !ok {
		return core.ErrNotFound
	}
	delete(s.images, k)
	return nil
}
