package player

import (
	"context"
	"log/slog"

	"github.com/mmcdole/marquee/internal/domain"
)

// launcher abstracts media player launching (consumer-defined interface)
type launcher interface {
	Launch(url string) error
}

// recorder stores watch history (consumer-defined interface)
type recorder interface {
	Record(ctx context.Context, e domain.Entry) error
}

// PlaybackService plays catalog entries and records what was watched
type PlaybackService struct {
	launcher launcher
	history  recorder
	logger   *slog.Logger
}

// NewPlaybackService creates a new playback service. history may be nil.
func NewPlaybackService(launcher launcher, history recorder, logger *slog.Logger) *PlaybackService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaybackService{
		launcher: launcher,
		history:  history,
		logger:   logger,
	}
}

// Play launches the entry's playback URL. A failure to record history is
// logged but does not fail playback.
func (s *PlaybackService) Play(ctx context.Context, e domain.Entry) error {
	if !e.IsPlayable() {
		return domain.ErrNotPlayable
	}

	s.logger.Info("launching playback", "title", e.Title, "id", e.ID)
	if err := s.launcher.Launch(e.PlaybackURL); err != nil {
		s.logger.Error("failed to launch player", "error", err, "id", e.ID)
		return err
	}

	if s.history != nil {
		if err := s.history.Record(ctx, e); err != nil {
			s.logger.Warn("failed to record watch history", "error", err, "id", e.ID)
		}
	}
	return nil
}
