package memory

import (
	"context"

	"apin-chat/pkg/kvstore"

	"github.com/patrickmn/go-cache"
)

// Store keeps blobs in process memory. Nothing survives a restart.
type Store struct {
	cache *cache.Cache
}

var _ kvstore.Store = &Store{}

func NewStore() *Store {
	// Entries never expire; the janitor is disabled since there is nothing to purge.
	return &Store{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if x, found := s.cache.Get(key); found {
		b := x.([]byte)
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	}
	return nil, kvstore.ErrNotFound
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	b := make([]byte, len(value))
	copy(b, value)
	s.cache.Set(key, b, cache.NoExpiration)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

func (s *Store) Close() error {
	s.cache.Flush()
	return nil
}
