package domain

import (
	"context"
)

// CatalogRepository provides access to the remote catalog service
type CatalogRepository interface {
	// FetchAll returns every entry. It never fails hard: on any error the
	// returned slice is empty and the error is informational only.
	FetchAll(ctx context.Context) ([]Entry, error)

	// Get returns a single entry
	Get(ctx context.Context, id string) (Entry, error)

	// Create submits a new entry and returns the server-assigned version
	Create(ctx context.Context, token string, entry Entry) (Entry, error)

	// Update applies a partial update and returns the updated entry
	Update(ctx context.Context, token, id string, patch EntryPatch) (Entry, error)

	// Delete removes an entry
	Delete(ctx context.Context, token, id string) error
}

// WatchHistoryRepository mirrors watch history to the remote service
type WatchHistoryRepository interface {
	GetWatchHistory(ctx context.Context, token string) ([]WatchRecord, error)
	AddToWatchHistory(ctx context.Context, token string, record WatchRecord) error
}

// Role names returned by the authentication service
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the signed-in account as reported by the authentication service
type User struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// IsAdmin reports whether the account may see admin screens.
// The server still authorizes every mutation on its own.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AuthResult contains the result of a successful authentication
type AuthResult struct {
	Token string // Bearer token for mutating calls
	User  User
}

// AuthRepository obtains credentials from the authentication service
type AuthRepository interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
}
