package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/log"
)

// scriptedFetch hands out one queued response per call and blocks until the
// test supplies it
type scriptedFetch struct {
	started   chan struct{}
	responses chan fetchResponse
	calls     atomic.Int32
}

type fetchResponse struct {
	entries []domain.Entry
	err     error
}

func newScriptedFetch() *scriptedFetch {
	return &scriptedFetch{
		started:   make(chan struct{}, 16),
		responses: make(chan fetchResponse),
	}
}

func (s *scriptedFetch) fetch(ctx context.Context) ([]domain.Entry, error) {
	s.calls.Add(1)
	s.started <- struct{}{}
	r := <-s.responses
	if r.entries == nil {
		r.entries = []domain.Entry{}
	}
	return r.entries, r.err
}

func (s *scriptedFetch) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-s.started:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch was not started")
	}
}

func (s *scriptedFetch) respond(t *testing.T, entries []domain.Entry, err error) {
	t.Helper()
	select {
	case s.responses <- fetchResponse{entries: entries, err: err}:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch did not accept a response")
	}
}

func waitResult(t *testing.T, results <-chan RefreshResult) RefreshResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no refresh result")
		return RefreshResult{}
	}
}

func waitDone(t *testing.T, p *Poller) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("poller goroutine did not exit")
	}
}

func newTestPoller(fetch FetchFunc, cache *Cache, opts PollerOptions) (*Poller, chan RefreshResult) {
	results := make(chan RefreshResult, 16)
	opts.OnRefresh = func(r RefreshResult) { results <- r }
	if opts.Interval == 0 {
		opts.Interval = time.Hour
	}
	return NewPoller(fetch, cache, opts, log.NullLogger()), results
}

func TestPollerFetchesImmediately(t *testing.T) {
	sf := newScriptedFetch()
	cache := NewCache()
	p, results := newTestPoller(sf.fetch, cache, PollerOptions{})
	defer p.Stop()

	require.Equal(t, StateIdle, p.State())
	require.NoError(t, p.Start(context.Background()))

	sf.waitStarted(t)
	assert.Equal(t, StateRefreshing, p.State())
	sf.respond(t, sampleEntries(), nil)

	r := waitResult(t, results)
	assert.True(t, r.Applied)
	assert.NoError(t, r.Err)
	assert.Equal(t, 2, r.Count)
	assert.Equal(t, StateScheduled, p.State())
	assert.Equal(t, []string{"1", "2"}, ids(cache.Entries()))
}

func TestPollerRefreshesOnInterval(t *testing.T) {
	sf := newScriptedFetch()
	cache := NewCache()
	p, results := newTestPoller(sf.fetch, cache, PollerOptions{Interval: 10 * time.Millisecond})
	defer p.Stop()

	require.NoError(t, p.Start(context.Background()))
	sf.waitStarted(t)
	sf.respond(t, []domain.Entry{{ID: "1"}}, nil)
	waitResult(t, results)

	sf.waitStarted(t)
	sf.respond(t, []domain.Entry{{ID: "2"}}, nil)
	waitResult(t, results)

	assert.Equal(t, []string{"2"}, ids(cache.Entries()))
}

func TestPollerRefreshCutsDelayShort(t *testing.T) {
	sf := newScriptedFetch()
	p, results := newTestPoller(sf.fetch, NewCache(), PollerOptions{})
	defer p.Stop()

	require.NoError(t, p.Start(context.Background()))
	sf.waitStarted(t)
	sf.respond(t, nil, nil)
	waitResult(t, results)

	p.Refresh()
	sf.waitStarted(t)
	sf.respond(t, nil, nil)
	waitResult(t, results)

	assert.Equal(t, int32(2), sf.calls.Load())
}

func TestPollerStopDiscardsInFlightFetch(t *testing.T) {
	sf := newScriptedFetch()
	cache := seededCache(domain.Entry{ID: "old"})
	p, results := newTestPoller(sf.fetch, cache, PollerOptions{})

	require.NoError(t, p.Start(context.Background()))
	sf.waitStarted(t)

	p.Stop()
	assert.Equal(t, StateStopped, p.State())

	sf.respond(t, []domain.Entry{{ID: "late"}}, nil)
	waitDone(t, p)

	assert.Equal(t, []string{"old"}, ids(cache.Entries()))
	assert.Empty(t, results)
}

func TestPollerFailureEmptiesCache(t *testing.T) {
	sf := newScriptedFetch()
	cache := seededCache(domain.Entry{ID: "old"})
	p, results := newTestPoller(sf.fetch, cache, PollerOptions{})
	defer p.Stop()

	require.NoError(t, p.Start(context.Background()))
	sf.waitStarted(t)
	sf.respond(t, nil, domain.ErrFetchFailed)

	r := waitResult(t, results)
	assert.ErrorIs(t, r.Err, domain.ErrFetchFailed)
	assert.True(t, r.Applied)
	assert.Zero(t, r.Count)
	assert.Empty(t, cache.Entries())
	assert.Equal(t, StateScheduled, p.State())
}

func TestPollerKeepStaleOnError(t *testing.T) {
	sf := newScriptedFetch()
	cache := seededCache(domain.Entry{ID: "old"})
	p, results := newTestPoller(sf.fetch, cache, PollerOptions{KeepStaleOnError: true})
	defer p.Stop()

	require.NoError(t, p.Start(context.Background()))
	sf.waitStarted(t)
	sf.respond(t, nil, errors.New("connection refused"))

	r := waitResult(t, results)
	assert.Error(t, r.Err)
	assert.False(t, r.Applied)
	assert.Equal(t, 1, r.Count)
	assert.Equal(t, []string{"old"}, ids(cache.Entries()))
}

func TestPollerDropsResultOlderThanMutation(t *testing.T) {
	sf := newScriptedFetch()
	cache := NewCache()
	p, results := newTestPoller(sf.fetch, cache, PollerOptions{})
	defer p.Stop()

	require.NoError(t, p.Start(context.Background()))
	sf.waitStarted(t)

	// a confirmed create lands while the fetch is in flight
	cache.confirm()
	cache.OptimisticInsert(domain.Entry{ID: "created"})

	sf.respond(t, []domain.Entry{{ID: "before-create"}}, nil)
	r := waitResult(t, results)
	assert.False(t, r.Applied)
	assert.Equal(t, []string{"created"}, ids(cache.Entries()))

	// the next refresh started after the mutation and wins
	p.Refresh()
	sf.waitStarted(t)
	sf.respond(t, []domain.Entry{{ID: "created"}, {ID: "other"}}, nil)
	r = waitResult(t, results)
	assert.True(t, r.Applied)
	assert.Equal(t, []string{"created", "other"}, ids(cache.Entries()))
}

func TestPollerLifecycle(t *testing.T) {
	sf := newScriptedFetch()
	p, _ := newTestPoller(sf.fetch, NewCache(), PollerOptions{})

	// stopping before start never runs a fetch
	p.Stop()
	p.Stop()
	waitDone(t, p)
	assert.ErrorIs(t, p.Start(context.Background()), ErrPollerStopped)
	assert.Zero(t, sf.calls.Load())
}

func TestPollerStartAfterStop(t *testing.T) {
	sf := newScriptedFetch()
	p, results := newTestPoller(sf.fetch, NewCache(), PollerOptions{})

	require.NoError(t, p.Start(context.Background()))
	sf.waitStarted(t)
	sf.respond(t, nil, nil)
	waitResult(t, results)

	p.Stop()
	waitDone(t, p)
	err := p.Start(context.Background())
	assert.ErrorIs(t, err, ErrPollerStopped)
	assert.NotErrorIs(t, err, ErrPollerStarted)
}

func TestPollerStartTwice(t *testing.T) {
	sf := newScriptedFetch()
	p, results := newTestPoller(sf.fetch, NewCache(), PollerOptions{})
	defer p.Stop()

	require.NoError(t, p.Start(context.Background()))
	assert.ErrorIs(t, p.Start(context.Background()), ErrPollerStarted)

	sf.waitStarted(t)
	sf.respond(t, nil, nil)
	waitResult(t, results)
	assert.Equal(t, int32(1), sf.calls.Load())
}

func TestPollerStopsWhenContextCancelled(t *testing.T) {
	sf := newScriptedFetch()
	p, results := newTestPoller(sf.fetch, NewCache(), PollerOptions{})
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, p.Start(ctx))
	sf.waitStarted(t)
	sf.respond(t, nil, nil)
	waitResult(t, results)

	cancel()
	waitDone(t, p)
	assert.Equal(t, StateStopped, p.State())
}

func TestPollerDiscardsResultAfterContextCancelled(t *testing.T) {
	sf := newScriptedFetch()
	cache := NewCache()
	p, results := newTestPoller(sf.fetch, cache, PollerOptions{})
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, p.Start(ctx))
	sf.waitStarted(t)

	cancel()
	sf.respond(t, []domain.Entry{{ID: "late"}}, nil)
	waitDone(t, p)

	assert.Equal(t, StateStopped, p.State())
	assert.Zero(t, cache.Len())
	assert.Empty(t, results)
}

func TestPollerRefreshDuringFetchDoesNotRefetch(t *testing.T) {
	sf := newScriptedFetch()
	p, results := newTestPoller(sf.fetch, NewCache(), PollerOptions{})
	defer p.Stop()

	require.NoError(t, p.Start(context.Background()))
	sf.waitStarted(t)
	p.Refresh()
	sf.respond(t, []domain.Entry{{ID: "a"}}, nil)
	waitResult(t, results)

	select {
	case <-sf.started:
		t.Fatal("refresh requested during a fetch started another fetch")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, int32(1), sf.calls.Load())
	assert.Equal(t, StateScheduled, p.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "refreshing", StateRefreshing.String())
	assert.Equal(t, "scheduled", StateScheduled.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "unknown", State(99).String())
}
