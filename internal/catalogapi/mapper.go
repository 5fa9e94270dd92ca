package catalogapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

// MapEntry converts a wire entry to a domain entry
func MapEntry(dto EntryDTO) domain.Entry {
	id := string(dto.ID)
	if id == "" {
		id = string(dto.LegacyID)
	}

	var createdAt time.Time
	if dto.CreatedAt != nil {
		createdAt = *dto.CreatedAt
	}

	return domain.Entry{
		ID:          id,
		Title:       dto.Title,
		Genre:       dto.Genre,
		Rating:      dto.Rating,
		Year:        dto.Year,
		Description: dto.Description,
		PosterURL:   dto.Poster,
		PlaybackURL: dto.VideoURL,
		Featured:    dto.IsFeatured,
		CreatedAt:   createdAt,
	}
}

// MapEntries converts a slice of wire entries, never returning nil
func MapEntries(dtos []EntryDTO) []domain.Entry {
	entries := make([]domain.Entry, 0, len(dtos))
	for _, dto := range dtos {
		entries = append(entries, MapEntry(dto))
	}
	return entries
}

// entryPayload builds the create body. Server-assigned fields are omitted.
func entryPayload(e domain.Entry) EntryDTO {
	return EntryDTO{
		Title:       e.Title,
		Genre:       e.Genre,
		Rating:      e.Rating,
		Year:        e.Year,
		Description: e.Description,
		Poster:      e.PosterURL,
		VideoURL:    e.PlaybackURL,
		IsFeatured:  e.Featured,
	}
}

// patchPayload builds the update body from the set fields of a patch
func patchPayload(p domain.EntryPatch) map[string]any {
	body := make(map[string]any)
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Genre != nil {
		body["genre"] = *p.Genre
	}
	if p.Rating != nil {
		body["rating"] = *p.Rating
	}
	if p.Year != nil {
		body["year"] = *p.Year
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.PosterURL != nil {
		body["poster"] = *p.PosterURL
	}
	if p.PlaybackURL != nil {
		body["videoUrl"] = *p.PlaybackURL
	}
	if p.Featured != nil {
		body["isFeatured"] = *p.Featured
	}
	return body
}

// decodeCollection normalizes a collection response. A bare array and an
// object with an entries (or movies) array are accepted; any other
// well-formed shape yields an empty slice. Malformed JSON is an error.
func decodeCollection(body []byte) ([]EntryDTO, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	switch trimmed[0] {
	case '[':
		var dtos []EntryDTO
		if err := json.Unmarshal(trimmed, &dtos); err != nil {
			return nil, fmt.Errorf("failed to parse entries: %w", err)
		}
		return dtos, nil

	case '{':
		var env collectionEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		for _, raw := range []json.RawMessage{env.Entries, env.Movies} {
			raw = bytes.TrimSpace(raw)
			if len(raw) == 0 || raw[0] != '[' {
				continue
			}
			var dtos []EntryDTO
			if err := json.Unmarshal(raw, &dtos); err != nil {
				return nil, fmt.Errorf("failed to parse entries: %w", err)
			}
			return dtos, nil
		}
		return nil, nil

	default:
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("malformed response body")
		}
		return nil, nil
	}
}

// decodeEntry normalizes a single entry response: {entry: {...}},
// {movie: {...}} or the bare entry
func decodeEntry(body []byte) (EntryDTO, error) {
	var env entryEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return EntryDTO{}, fmt.Errorf("failed to parse entry: %w", err)
	}
	if env.Entry != nil {
		return *env.Entry, nil
	}
	if env.Movie != nil {
		return *env.Movie, nil
	}

	var dto EntryDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return EntryDTO{}, fmt.Errorf("failed to parse entry: %w", err)
	}
	return dto, nil
}

// decodeHistory normalizes a watch history response
func decodeHistory(body []byte) ([]domain.WatchRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	raw := trimmed
	if trimmed[0] == '{' {
		var env historyEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("failed to parse history: %w", err)
		}
		raw = env.WatchHistory
		if len(raw) == 0 {
			raw = env.History
		}
		if len(raw) == 0 {
			return nil, nil
		}
	}

	var records []domain.WatchRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	return records, nil
}

// mapUser converts a wire account to a domain user
func mapUser(dto *UserDTO) domain.User {
	if dto == nil {
		return domain.User{}
	}
	id := string(dto.ID)
	if id == "" {
		id = string(dto.LegacyID)
	}
	role := dto.Role
	if role == "" {
		role = domain.RoleUser
	}
	return domain.User{ID: id, Name: dto.Name, Email: dto.Email, Role: role}
}

// errorMessage extracts the server's message from an error body
func errorMessage(body []byte) string {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	if resp.Message != "" {
		return resp.Message
	}
	return resp.Error
}
