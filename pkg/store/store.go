package store

import (
	"go.uber.org/atomic"

	"github.com/pg-sharding/poolcat/pkg/config"
)

// Store holds the process-wide active configuration. Writers install a new
// immutable value atomically and readers always obtain an independent
// snapshot copy, so a reload in flight never affects a reader and no torn
// state is observable.
//
// A Store is created once at process start and passed to the collaborators
// that need it.
type Store struct {
	active *atomic.Pointer[config.Config]
}

// NewStore returns a Store whose active configuration is the default one.
func NewStore() *Store {
	return &Store{
		active: atomic.NewPointer(config.Default()),
	}
}

// Publish atomically replaces the active configuration. The store takes
// ownership of cfg; callers must not mutate it afterwards.
func (s *Store) Publish(cfg *config.Config) {
	s.active.Store(cfg)
}

// Current returns a full copy of the active configuration. The copy shares
// no mutable state with the active instance, so it stays coherent across
// concurrent reloads.
func (s *Store) Current() config.Config {
	return s.active.Load().Copy()
}
