package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/log"
)

type fakeWriter struct {
	calls    atomic.Int32
	createFn func(domain.Entry) (domain.Entry, error)
	updateFn func(string, domain.EntryPatch) (domain.Entry, error)
	deleteFn func(string) error
	// observe is called with the token before each request
	observe func()
}

func (f *fakeWriter) Create(_ context.Context, _ string, e domain.Entry) (domain.Entry, error) {
	f.calls.Add(1)
	if f.observe != nil {
		f.observe()
	}
	return f.createFn(e)
}

func (f *fakeWriter) Update(_ context.Context, _, id string, p domain.EntryPatch) (domain.Entry, error) {
	f.calls.Add(1)
	if f.observe != nil {
		f.observe()
	}
	return f.updateFn(id, p)
}

func (f *fakeWriter) Delete(_ context.Context, _, id string) error {
	f.calls.Add(1)
	if f.observe != nil {
		f.observe()
	}
	return f.deleteFn(id)
}

func validDraft() domain.Entry {
	return domain.Entry{
		Title:       "Sintel",
		Genre:       "Animation",
		Rating:      8.5,
		Year:        2010,
		Description: "A girl and a dragon",
		PosterURL:   "http://img/sintel.jpg",
		PlaybackURL: "http://video/sintel.mp4",
	}
}

func seededCache(entries ...domain.Entry) *Cache {
	c := NewCache()
	c.Replace(entries)
	return c
}

func TestCreateRejectsInvalidDraftWithoutRequest(t *testing.T) {
	repo := &fakeWriter{}
	cache := seededCache(domain.Entry{ID: "1"})
	m := NewMutator(repo, cache, false, log.NullLogger())

	draft := validDraft()
	draft.Title = ""
	draft.PlaybackURL = "   "

	_, err := m.Create(context.Background(), "tok", draft)

	require.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Contains(t, err.Error(), "title is required")
	assert.Contains(t, err.Error(), "video URL is required")
	assert.Zero(t, repo.calls.Load())
	assert.Equal(t, []string{"1"}, ids(cache.Entries()))
}

func TestCreateRejectsOutOfRangeRating(t *testing.T) {
	repo := &fakeWriter{}
	m := NewMutator(repo, NewCache(), false, log.NullLogger())

	draft := validDraft()
	draft.Rating = 11

	_, err := m.Create(context.Background(), "tok", draft)
	require.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.EqualError(t, err, "rating must be at most 10")
	assert.Zero(t, repo.calls.Load())
}

func TestCreatePrependsConfirmedEntry(t *testing.T) {
	cache := seededCache(domain.Entry{ID: "1"}, domain.Entry{ID: "2"})
	repo := &fakeWriter{
		createFn: func(e domain.Entry) (domain.Entry, error) {
			e.ID = "new"
			return e, nil
		},
	}
	// confirm-first: nothing appears before the server answers
	repo.observe = func() {
		assert.Equal(t, []string{"1", "2"}, ids(cache.Entries()))
	}
	m := NewMutator(repo, cache, false, log.NullLogger())
	gen := cache.Generation()

	created, err := m.Create(context.Background(), "tok", validDraft())

	require.NoError(t, err)
	assert.Equal(t, "new", created.ID)
	assert.Equal(t, []string{"new", "1", "2"}, ids(cache.Entries()))
	assert.Greater(t, cache.Generation(), gen)
}

func TestCreateFailureLeavesCacheUntouched(t *testing.T) {
	cache := seededCache(domain.Entry{ID: "1"})
	repo := &fakeWriter{
		createFn: func(domain.Entry) (domain.Entry, error) {
			return domain.Entry{}, domain.NewRequestError(domain.ErrUnauthorized, 401, "Token is not valid")
		},
	}
	m := NewMutator(repo, cache, false, log.NullLogger())

	_, err := m.Create(context.Background(), "bad", validDraft())

	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.EqualError(t, err, "Token is not valid")
	assert.Equal(t, []string{"1"}, ids(cache.Entries()))
}

func TestDeletePreservesOrderOfOthers(t *testing.T) {
	cache := seededCache(domain.Entry{ID: "7"}, domain.Entry{ID: "42"}, domain.Entry{ID: "3"})
	repo := &fakeWriter{deleteFn: func(id string) error {
		assert.Equal(t, "42", id)
		return nil
	}}
	m := NewMutator(repo, cache, false, log.NullLogger())

	require.NoError(t, m.Delete(context.Background(), "tok", "42"))

	if diff := cmp.Diff([]string{"7", "3"}, ids(cache.Entries())); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestDeleteFailureKeepsEntry(t *testing.T) {
	cache := seededCache(domain.Entry{ID: "7"}, domain.Entry{ID: "42"})
	repo := &fakeWriter{deleteFn: func(string) error {
		return domain.NewRequestError(domain.ErrNotFound, 404, "Movie not found")
	}}
	m := NewMutator(repo, cache, false, log.NullLogger())

	err := m.Delete(context.Background(), "tok", "42")

	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{"7", "42"}, ids(cache.Entries()))
}

func TestUpdateReplacesInPlace(t *testing.T) {
	cache := seededCache(domain.Entry{ID: "1", Title: "One"}, domain.Entry{ID: "2", Title: "Two"})
	repo := &fakeWriter{updateFn: func(id string, p domain.EntryPatch) (domain.Entry, error) {
		return p.Apply(domain.Entry{ID: id, Title: "Two"}), nil
	}}
	m := NewMutator(repo, cache, false, log.NullLogger())

	title := "Deux"
	updated, err := m.Update(context.Background(), "tok", "2", domain.EntryPatch{Title: &title})

	require.NoError(t, err)
	assert.Equal(t, "Deux", updated.Title)
	assert.Equal(t, []string{"1", "2"}, ids(cache.Entries()))
	got, _ := cache.Get("2")
	assert.Equal(t, "Deux", got.Title)
}

func TestUpdateValidation(t *testing.T) {
	repo := &fakeWriter{}
	m := NewMutator(repo, NewCache(), false, log.NullLogger())

	_, err := m.Update(context.Background(), "tok", "1", domain.EntryPatch{})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	blank := " "
	_, err = m.Update(context.Background(), "tok", "1", domain.EntryPatch{Genre: &blank})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.EqualError(t, err, "genre is required")

	assert.Zero(t, repo.calls.Load())
}

func TestOptimisticCreateShowsProvisionalEntry(t *testing.T) {
	cache := seededCache(domain.Entry{ID: "1"})
	repo := &fakeWriter{createFn: func(e domain.Entry) (domain.Entry, error) {
		e.ID = "srv-1"
		return e, nil
	}}
	repo.observe = func() {
		entries := cache.Entries()
		require.Len(t, entries, 2)
		assert.True(t, IsProvisional(entries[0]))
		assert.Equal(t, "Sintel", entries[0].Title)
	}
	m := NewMutator(repo, cache, true, log.NullLogger())

	_, err := m.Create(context.Background(), "tok", validDraft())

	require.NoError(t, err)
	assert.Equal(t, []string{"srv-1", "1"}, ids(cache.Entries()))
}

func TestOptimisticFailuresRollBack(t *testing.T) {
	failure := errors.New("boom")
	initial := []domain.Entry{{ID: "1", Title: "One"}, {ID: "2", Title: "Two"}}
	cache := seededCache(initial...)
	repo := &fakeWriter{
		createFn: func(domain.Entry) (domain.Entry, error) { return domain.Entry{}, failure },
		updateFn: func(string, domain.EntryPatch) (domain.Entry, error) { return domain.Entry{}, failure },
		deleteFn: func(string) error { return failure },
	}
	m := NewMutator(repo, cache, true, log.NullLogger())
	ctx := context.Background()

	_, err := m.Create(ctx, "tok", validDraft())
	assert.ErrorIs(t, err, failure)

	title := "Changed"
	_, err = m.Update(ctx, "tok", "1", domain.EntryPatch{Title: &title})
	assert.ErrorIs(t, err, failure)

	assert.ErrorIs(t, m.Delete(ctx, "tok", "2"), failure)

	if diff := cmp.Diff(initial, cache.Entries()); diff != "" {
		t.Fatalf("rollback incomplete (-want +got):\n%s", diff)
	}
	assert.Equal(t, int32(3), repo.calls.Load())
}
