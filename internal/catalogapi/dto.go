package catalogapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// EntryDTO is the wire form of a catalog entry
type EntryDTO struct {
	ID          flexID     `json:"id,omitempty"`
	LegacyID    flexID     `json:"_id,omitempty"`
	Title       string     `json:"title"`
	Genre       string     `json:"genre"`
	Rating      float64    `json:"rating"`
	Year        int        `json:"year,omitempty"`
	Description string     `json:"description"`
	Poster      string     `json:"poster,omitempty"`
	VideoURL    string     `json:"videoUrl,omitempty"`
	IsFeatured  bool       `json:"isFeatured"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// collectionEnvelope is the object form of a collection response
type collectionEnvelope struct {
	Entries json.RawMessage `json:"entries"`
	Movies  json.RawMessage `json:"movies"`
}

// entryEnvelope is the wrapped form of a single entry response
type entryEnvelope struct {
	Entry *EntryDTO `json:"entry"`
	Movie *EntryDTO `json:"movie"`
}

// errorResponse is the error body returned on non-2xx responses
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// AuthResponse is returned by the login and register endpoints
type AuthResponse struct {
	Token string   `json:"token"`
	User  *UserDTO `json:"user"`
}

// UserDTO is the wire form of an account
type UserDTO struct {
	ID       flexID `json:"id,omitempty"`
	LegacyID flexID `json:"_id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// historyEnvelope is the object form of a watch history response
type historyEnvelope struct {
	WatchHistory json.RawMessage `json:"watchHistory"`
	History      json.RawMessage `json:"history"`
}

// flexID accepts identifiers encoded as JSON strings or numbers
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}
