package tui

import (
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// RefreshedMsg carries a poller result for the session with the given sequence
type RefreshedMsg struct {
	Seq    int
	Result catalog.RefreshResult
}

// CacheChangedMsg signals a local cache change, such as an optimistic edit
type CacheChangedMsg struct {
	Seq int
}

// sessionClosedMsg signals that a session's poller has exited
type sessionClosedMsg struct {
	Seq int
}

// EntryCreatedMsg signals that the server accepted a new entry
type EntryCreatedMsg struct {
	Entry domain.Entry
}

// EntryUpdatedMsg signals that the server accepted an update
type EntryUpdatedMsg struct {
	Entry domain.Entry
}

// EntryDeletedMsg signals that the server removed an entry
type EntryDeletedMsg struct {
	ID    string
	Title string
}

// MutationFailedMsg signals that a create or update was rejected
type MutationFailedMsg struct {
	Err error
}

// PlaybackStartedMsg signals that playback has started (player launched)
type PlaybackStartedMsg struct {
	Entry domain.Entry
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
