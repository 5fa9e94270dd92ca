package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

const DefaultInterval = 3 * time.Second

var (
	// ErrPollerStarted is returned when Start is called more than once
	ErrPollerStarted = errors.New("poller already started")
	// ErrPollerStopped is returned when Start is called after Stop
	ErrPollerStopped = errors.New("poller stopped")
)

// State is the refresh scheduler's lifecycle state
type State int

const (
	StateIdle       State = iota // not started
	StateRefreshing              // fetch in flight
	StateScheduled               // waiting for the next tick
	StateStopped                 // torn down, results are discarded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	case StateScheduled:
		return "scheduled"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// FetchFunc reads the full catalog. On failure it returns an empty slice
// and an informational error.
type FetchFunc func(ctx context.Context) ([]domain.Entry, error)

// RefreshResult reports the outcome of one refresh
type RefreshResult struct {
	Count   int       // entries now in the cache
	Err     error     // fetch failure, logged and otherwise ignored
	Applied bool      // false when the result was dropped as stale or kept stale on error
	At      time.Time // completion time
}

// PollerOptions configures a Poller
type PollerOptions struct {
	Interval         time.Duration
	KeepStaleOnError bool                // keep the last snapshot instead of emptying the view
	OnRefresh        func(RefreshResult) // called after each applied or dropped refresh
}

// Poller refreshes a Cache immediately on Start and then on a fixed delay
// after each fetch completes. Fetches never overlap.
type Poller struct {
	fetch     FetchFunc
	cache     *Cache
	interval  time.Duration
	keepStale bool
	onRefresh func(RefreshResult)
	logger    *slog.Logger

	mu    sync.Mutex
	state State
	stop  chan struct{}
	kick  chan struct{}
	done  chan struct{}
}

// NewPoller creates a poller that refreshes cache using fetch
func NewPoller(fetch FetchFunc, cache *Cache, opts PollerOptions, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetch:     fetch,
		cache:     cache,
		interval:  interval,
		keepStale: opts.KeepStaleOnError,
		onRefresh: opts.OnRefresh,
		logger:    logger,
		stop:      make(chan struct{}),
		kick:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// State returns the current lifecycle state
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start fires the first fetch immediately and keeps refreshing until Stop
// is called or ctx is cancelled. Cancelling ctx does not abort a fetch that
// is already in flight; its result is discarded.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case StateIdle:
	case StateStopped:
		p.mu.Unlock()
		return ErrPollerStopped
	default:
		p.mu.Unlock()
		return ErrPollerStarted
	}
	p.state = StateRefreshing
	p.mu.Unlock()

	p.logger.Debug("poller started", "interval", p.interval)
	go p.run(ctx)
	return nil
}

// Stop tears the poller down. After Stop returns the cache is never
// replaced by this poller again.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateStopped:
		return
	case StateIdle:
		close(p.done)
	}
	p.state = StateStopped
	close(p.stop)
	p.logger.Debug("poller stopped")
}

// Refresh cuts the current delay short. A request made while a fetch is in
// flight is satisfied by that fetch unless its result is dropped.
func (p *Poller) Refresh() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Done is closed when the poller goroutine has exited
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	// In-flight requests are left to finish; only their results are dropped
	fetchCtx := context.WithoutCancel(ctx)

	for {
		gen := p.cache.Generation()
		entries, err := p.fetch(fetchCtx)

		result, ok := p.apply(ctx, gen, entries, err)
		if !ok {
			return
		}
		// an applied fetch answers any refresh requested while it ran
		if result.Applied {
			select {
			case <-p.kick:
			default:
			}
		}
		if p.onRefresh != nil {
			p.onRefresh(result)
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-timer.C:
		case <-p.kick:
			timer.Stop()
		case <-p.stop:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			p.Stop()
			return
		}

		p.mu.Lock()
		if p.state == StateStopped {
			p.mu.Unlock()
			return
		}
		p.state = StateRefreshing
		p.mu.Unlock()
	}
}

// apply moves a fetch result into the cache. It returns false when the
// poller was stopped, or ctx cancelled, while the fetch was in flight.
func (p *Poller) apply(ctx context.Context, gen uint64, entries []domain.Entry, fetchErr error) (RefreshResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateStopped && ctx.Err() != nil {
		p.state = StateStopped
		close(p.stop)
		p.logger.Debug("poller stopped", "reason", ctx.Err())
	}
	if p.state == StateStopped {
		p.logger.Debug("discarding refresh after stop", "count", len(entries))
		return RefreshResult{}, false
	}
	p.state = StateScheduled

	result := RefreshResult{Err: fetchErr, At: time.Now()}

	if fetchErr != nil {
		p.logger.Warn("catalog refresh failed", "error", fetchErr)
		if p.keepStale {
			result.Count = p.cache.Len()
			return result, true
		}
		entries = []domain.Entry{}
	}

	result.Applied = p.cache.ReplaceIfCurrent(gen, entries)
	if !result.Applied {
		p.logger.Debug("dropping refresh older than last mutation", "count", len(entries))
	}
	result.Count = p.cache.Len()
	return result, true
}
