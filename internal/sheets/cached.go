package sheets

import (
	"context"
	"sync"
	"time"

	"mapfin/internal/cache"
	"mapfin/internal/log"
)

// CachedStore is a read-through cache over raw collections. Writes go
// straight to the wrapped store and drop the cached collection. A fetch that
// overlaps a write on the same collection is returned but never cached.
type CachedStore struct {
	next   RowStore
	rows   *cache.LRUCache[[]Row]
	logger *log.Logger

	mu  sync.Mutex
	gen map[Collection]uint64
}

var _ RowStore = (*CachedStore)(nil)

func NewCachedStore(next RowStore, ttl time.Duration) *CachedStore {
	return &CachedStore{
		next:   next,
		rows:   cache.NewLRUCache[[]Row](len(Collections), ttl),
		logger: log.WithComponent(log.ComponentCache),
		gen:    map[Collection]uint64{},
	}
}

func (s *CachedStore) generation(c Collection) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[c]
}

// beginWrite bumps the generation of c and returns the func that ends the
// write. Bumping on both sides catches fetches that start before or during
// the write.
func (s *CachedStore) beginWrite(c Collection) func() {
	s.mu.Lock()
	s.gen[c]++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.gen[c]++
		s.mu.Unlock()
		s.rows.Delete(string(c))
	}
}

// Cache exposes the underlying LRU so a cache.Manager can sweep it.
func (s *CachedStore) Cache() *cache.LRUCache[[]Row] { return s.rows }

func copyRows(in []Row) []Row {
	out := make([]Row, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

func (s *CachedStore) FetchAll(ctx context.Context, c Collection) ([]Row, error) {
	if rows, ok := s.rows.Get(string(c)); ok {
		return copyRows(rows), nil
	}
	gen := s.generation(c)
	rows, err := s.next.FetchAll(ctx, c)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.gen[c] != gen {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "Collection changed during fetch, not caching", log.FieldCollection, string(c))
		return copyRows(rows), nil
	}
	s.rows.Set(string(c), rows)
	s.mu.Unlock()
	s.logger.DebugContext(ctx, "Collection cached", log.FieldCollection, string(c), log.FieldCount, len(rows))
	return copyRows(rows), nil
}

func (s *CachedStore) Insert(ctx context.Context, c Collection, row Row) (Row, error) {
	defer s.beginWrite(c)()
	return s.next.Insert(ctx, c, row)
}

func (s *CachedStore) Update(ctx context.Context, c Collection, id string, row Row) (Row, error) {
	defer s.beginWrite(c)()
	return s.next.Update(ctx, c, id, row)
}

func (s *CachedStore) Delete(ctx context.Context, c Collection, id string) error {
	defer s.beginWrite(c)()
	return s.next.Delete(ctx, c, id)
}

// Invalidate drops every cached collection.
func (s *CachedStore) Invalidate() { s.rows.Purge() }
