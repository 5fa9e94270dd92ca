package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

// localStore persists watch history on this machine (consumer-defined interface)
type localStore interface {
	Record(rec domain.WatchRecord) error
	List() []domain.WatchRecord
	Merge(remote []domain.WatchRecord) error
}

// Service records watched entries locally and mirrors them to the server
// when a session is available. Remote failures never fail a Record.
type Service struct {
	local  localStore
	remote domain.WatchHistoryRepository
	token  string
	sync   bool
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a history service. remote may be nil; an empty token
// or sync=false keeps history local only.
func NewService(local localStore, remote domain.WatchHistoryRepository, token string, sync bool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		local:  local,
		remote: remote,
		token:  token,
		sync:   sync,
		now:    time.Now,
		logger: logger,
	}
}

func (s *Service) syncing() bool {
	return s.sync && s.remote != nil && s.token != ""
}

// Record stores that e was watched just now
func (s *Service) Record(ctx context.Context, e domain.Entry) error {
	rec := domain.NewWatchRecord(e, s.now())
	if err := s.local.Record(rec); err != nil {
		s.logger.Error("failed to record watch history", "error", err, "id", e.ID)
		return err
	}

	if s.syncing() {
		if err := s.remote.AddToWatchHistory(ctx, s.token, rec); err != nil {
			s.logger.Warn("failed to sync watch history", "error", err, "id", e.ID)
		}
	}
	return nil
}

// List returns the local watch history, most recent first
func (s *Service) List() []domain.WatchRecord {
	return s.local.List()
}

// Pull merges the server's history into the local one
func (s *Service) Pull(ctx context.Context) error {
	if !s.syncing() {
		return nil
	}

	remote, err := s.remote.GetWatchHistory(ctx, s.token)
	if err != nil {
		s.logger.Warn("failed to fetch remote watch history", "error", err)
		return err
	}

	s.logger.Debug("merging remote watch history", "count", len(remote))
	return s.local.Merge(remote)
}
