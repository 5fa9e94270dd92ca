package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
)

// ViewKind identifies a screen. Every screen owns its own catalog session,
// so leaving a screen discards its cache.
type ViewKind int

const (
	ViewBrowse ViewKind = iota
	ViewAdmin
)

func (k ViewKind) String() string {
	switch k {
	case ViewAdmin:
		return "Admin"
	default:
		return "Browse"
	}
}

// viewSession is a catalog session bound to one opening of a screen
type viewSession struct {
	*catalog.Session
	seq      int
	kind     ViewKind
	observer *refreshObserver
}

func newViewSession(repo domain.CatalogRepository, kind ViewKind, seq int, opts Options, logger *slog.Logger) *viewSession {
	interval := opts.BrowseInterval
	optimistic := false
	if kind == ViewAdmin {
		interval = opts.AdminInterval
		optimistic = opts.Optimistic
	}

	obs := newRefreshObserver()
	sess := catalog.NewSession(repo, catalog.PollerOptions{
		Interval:         interval,
		KeepStaleOnError: opts.KeepStaleOnError,
		OnRefresh:        obs.OnRefresh,
	}, optimistic, logger)
	sess.Cache.OnChange(obs.OnChange)

	return &viewSession{
		Session:  sess,
		seq:      seq,
		kind:     kind,
		observer: obs,
	}
}

// startSessionCmd starts polling and waits for the first event
func startSessionCmd(ctx context.Context, vs *viewSession) tea.Cmd {
	return func() tea.Msg {
		if err := vs.Start(ctx); err != nil {
			// the screen was left before its first refresh was scheduled
			if errors.Is(err, catalog.ErrPollerStopped) {
				return sessionClosedMsg{Seq: vs.seq}
			}
			return ErrMsg{Err: err, Context: "starting refresh"}
		}
		return waitForSessionCmd(vs)()
	}
}

// waitForSessionCmd returns a command that reads the next session event.
// It is re-armed after every event until the session stops.
func waitForSessionCmd(vs *viewSession) tea.Cmd {
	return func() tea.Msg {
		select {
		case r := <-vs.observer.results:
			return RefreshedMsg{Seq: vs.seq, Result: r}
		case <-vs.observer.changed:
			return CacheChangedMsg{Seq: vs.seq}
		case <-vs.Poller.Done():
			return sessionClosedMsg{Seq: vs.seq}
		}
	}
}
