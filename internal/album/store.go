// Package album holds the in-memory album, keeps it in sync with durable
// storage, and derives filtered views of it.
package album

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fondmemory/fond-memory/internal/model"
)

// Sweeper releases media payloads that no memory references any more.
type Sweeper interface {
	Sweep(ctx context.Context, live model.Album) (int, error)
}

// Option configures a Store.
type Option func(*Store)

// WithSweeper releases orphaned payloads after removals and replacements.
func WithSweeper(sw Sweeper) Option {
	return func(s *Store) { s.sweeper = sw }
}

// WithLogger sets the logger used for background warnings.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store is the ordered memory collection. Every mutation is applied in
// memory first and then written through to the Persistence.
type Store struct {
	mu       sync.Mutex
	memories model.Album
	persist  Persistence
	sweeper  Sweeper
	logger   *zap.Logger
}

// Open rehydrates a Store from p. The returned Store is always usable: when
// the stored album cannot be read it starts empty and a *StorageReadError is
// returned alongside it. Such a store never releases payloads, since the
// unreadable album may still reference them.
func Open(ctx context.Context, p Persistence, opts ...Option) (*Store, error) {
	s := &Store{
		memories: model.Album{},
		persist:  p,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := p.Load(ctx)
	if err != nil {
		s.sweeper = nil
		return s, &StorageReadError{Err: err}
	}
	s.memories = loaded
	return s, nil
}

// Add appends m. No validation happens here; see NewMemory.
func (s *Store) Add(ctx context.Context, m model.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memories = append(s.memories, m.Clone())
	return s.save(ctx, "add")
}

// Remove deletes the memory with id. Removing an unknown id is a no-op and
// reports false.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, m := range s.memories {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	next := make(model.Album, 0, len(s.memories)-1)
	next = append(next, s.memories[:idx]...)
	next = append(next, s.memories[idx+1:]...)
	s.memories = next

	if err := s.save(ctx, "remove"); err != nil {
		return true, err
	}
	s.sweep(ctx)
	return true, nil
}

// ReplaceAll swaps the whole album for ms without inspecting it.
func (s *Store) ReplaceAll(ctx context.Context, ms model.Album) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memories = ms.Clone()
	if s.memories == nil {
		s.memories = model.Album{}
	}
	if err := s.save(ctx, "replace"); err != nil {
		return err
	}
	s.sweep(ctx)
	return nil
}

// Memories returns a copy of the album in insertion order.
func (s *Store) Memories() model.Album {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memories.Clone()
}

// Get returns the memory with id.
func (s *Store) Get(id string) (model.Memory, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.memories {
		if m.ID == id {
			return m.Clone(), true
		}
	}
	return model.Memory{}, false
}

// Len returns the number of memories.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.memories)
}

// Release frees payloads no memory references, such as media stored for a
// draft that was never added.
func (s *Store) Release(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(ctx)
}

func (s *Store) save(ctx context.Context, op string) error {
	if err := s.persist.Save(ctx, s.memories); err != nil {
		return &StorageWriteError{Op: op, Err: err}
	}
	return nil
}

// sweep only runs after a successful save, so the durable album never
// points at a released payload.
func (s *Store) sweep(ctx context.Context) {
	if s.sweeper == nil {
		return
	}
	n, err := s.sweeper.Sweep(ctx, s.memories)
	if err != nil {
		s.logger.Warn("release media payloads", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Debug("released media payloads", zap.Int("count", n))
	}
}
