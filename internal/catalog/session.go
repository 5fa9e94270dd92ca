package catalog

import (
	"context"
	"log/slog"

	"github.com/mmcdole/marquee/internal/domain"
)

// Session bundles the cache, poller and mutator owned by a single view.
// Views never share a session, so two open views may briefly disagree
// until their next refresh.
type Session struct {
	Cache   *Cache
	Poller  *Poller
	Mutator *Mutator
}

// NewSession wires a fresh cache to repo
func NewSession(repo domain.CatalogRepository, opts PollerOptions, optimistic bool, logger *slog.Logger) *Session {
	cache := NewCache()
	return &Session{
		Cache:   cache,
		Poller:  NewPoller(repo.FetchAll, cache, opts, logger),
		Mutator: NewMutator(repo, cache, optimistic, logger),
	}
}

// Start begins polling
func (s *Session) Start(ctx context.Context) error {
	return s.Poller.Start(ctx)
}

// Stop ends polling; results of an in-flight fetch are discarded
func (s *Session) Stop() {
	s.Poller.Stop()
}
