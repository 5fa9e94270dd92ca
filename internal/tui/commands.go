package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
)

// Command factories for async operations

const mutationTimeout = 30 * time.Second

// CreateEntryCmd submits a new entry through the mutator
func CreateEntryCmd(mut *catalog.Mutator, token string, draft domain.Entry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		created, err := mut.Create(ctx, token, draft)
		if err != nil {
			return MutationFailedMsg{Err: err}
		}
		return EntryCreatedMsg{Entry: created}
	}
}

// UpdateEntryCmd submits a partial update through the mutator
func UpdateEntryCmd(mut *catalog.Mutator, token, id string, patch domain.EntryPatch) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		updated, err := mut.Update(ctx, token, id, patch)
		if err != nil {
			return MutationFailedMsg{Err: err}
		}
		return EntryUpdatedMsg{Entry: updated}
	}
}

// DeleteEntryCmd removes an entry through the mutator
func DeleteEntryCmd(mut *catalog.Mutator, token string, e domain.Entry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		if err := mut.Delete(ctx, token, e.ID); err != nil {
			return ErrMsg{Err: err, Context: "deleting " + e.Title}
		}
		return EntryDeletedMsg{ID: e.ID, Title: e.Title}
	}
}

// PlayEntryCmd starts playback of an entry
func PlayEntryCmd(svc playbackService, e domain.Entry) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Play(context.Background(), e); err != nil {
			return ErrMsg{Err: err, Context: "starting playback"}
		}
		return PlaybackStartedMsg{Entry: e}
	}
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
