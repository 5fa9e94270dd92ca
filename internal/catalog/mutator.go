package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mmcdole/marquee/internal/domain"
)

// provisionalPrefix marks entries inserted before the server confirmed them
const provisionalPrefix = "tmp-"

// entryWriter is the subset of the catalog repository the mutator needs
type entryWriter interface {
	Create(ctx context.Context, token string, entry domain.Entry) (domain.Entry, error)
	Update(ctx context.Context, token, id string, patch domain.EntryPatch) (domain.Entry, error)
	Delete(ctx context.Context, token, id string) error
}

// Mutator applies admin writes to the remote catalog and mirrors them into
// a view's cache.
//
// By default the cache changes only after the server confirms. With
// optimistic set, the change is applied first and rolled back on failure.
type Mutator struct {
	repo       entryWriter
	cache      *Cache
	validate   *validator.Validate
	optimistic bool
	logger     *slog.Logger
}

// NewMutator creates a mutator writing through repo into cache
func NewMutator(repo entryWriter, cache *Cache, optimistic bool, logger *slog.Logger) *Mutator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mutator{
		repo:       repo,
		cache:      cache,
		validate:   NewValidator(),
		optimistic: optimistic,
		logger:     logger,
	}
}

// IsProvisional reports whether an entry is awaiting server confirmation
func IsProvisional(e domain.Entry) bool {
	return strings.HasPrefix(e.ID, provisionalPrefix)
}

// Create validates draft, submits it and prepends the server's entry to the
// cache. Invalid drafts fail with domain.ErrValidationFailed before any
// request is made.
func (m *Mutator) Create(ctx context.Context, token string, draft domain.Entry) (domain.Entry, error) {
	if err := ValidateEntry(m.validate, draft); err != nil {
		m.logger.Debug("rejected entry draft", "error", err)
		return domain.Entry{}, err
	}

	var (
		snap        Snapshot
		provisional domain.Entry
	)
	if m.optimistic {
		snap = m.cache.Snapshot()
		provisional = draft
		provisional.ID = provisionalPrefix + uuid.NewString()
		m.cache.OptimisticInsert(provisional)
	}

	created, err := m.repo.Create(ctx, token, draft)
	if err != nil {
		m.logger.Error("failed to create entry", "error", err, "title", draft.Title)
		if m.optimistic {
			m.cache.Rollback(snap)
		}
		return domain.Entry{}, err
	}

	m.cache.confirm()
	if m.optimistic {
		m.cache.Swap(provisional.ID, created)
	} else {
		m.cache.OptimisticInsert(created)
	}

	m.logger.Info("entry created", "id", created.ID, "title", created.Title)
	return created, nil
}

// Update validates the set fields of patch, submits it and replaces the
// cached entry with the server's version
func (m *Mutator) Update(ctx context.Context, token, id string, patch domain.EntryPatch) (domain.Entry, error) {
	if err := ValidatePatch(m.validate, patch); err != nil {
		return domain.Entry{}, err
	}

	var snap Snapshot
	if m.optimistic {
		snap = m.cache.Snapshot()
		if current, ok := m.cache.Get(id); ok {
			m.cache.Upsert(patch.Apply(current))
		}
	}

	updated, err := m.repo.Update(ctx, token, id, patch)
	if err != nil {
		m.logger.Error("failed to update entry", "error", err, "id", id)
		if m.optimistic {
			m.cache.Rollback(snap)
		}
		return domain.Entry{}, err
	}

	m.cache.confirm()
	m.cache.Upsert(updated)

	m.logger.Info("entry updated", "id", updated.ID)
	return updated, nil
}

// Delete removes the entry on the server and then from the cache. Other
// entries keep their relative order.
func (m *Mutator) Delete(ctx context.Context, token, id string) error {
	var snap Snapshot
	if m.optimistic {
		snap = m.cache.Snapshot()
		m.cache.OptimisticRemove(id)
	}

	if err := m.repo.Delete(ctx, token, id); err != nil {
		m.logger.Error("failed to delete entry", "error", err, "id", id)
		if m.optimistic {
			m.cache.Rollback(snap)
		}
		return err
	}

	m.cache.confirm()
	if !m.optimistic {
		m.cache.OptimisticRemove(id)
	}

	m.logger.Info("entry deleted", "id", id)
	return nil
}
