package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultCatalogPath = "/catalog"
)

// Client talks to the catalog REST service. It holds no credentials:
// mutating calls take the bearer token explicitly.
type Client struct {
	baseURL     string
	catalogPath string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient creates a new catalog API client
func NewClient(baseURL, catalogPath string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if catalogPath == "" {
		catalogPath = defaultCatalogPath
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		catalogPath: "/" + strings.Trim(catalogPath, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// response is a completed HTTP exchange
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// doRequest performs a single HTTP request. Only transport, encoding and
// read failures are returned as errors; status handling is left to callers.
func (c *Client) doRequest(ctx context.Context, method, path, token string, payload any) (response, error) {
	reqURL := c.baseURL + path

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return response{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("catalog request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("failed to read response: %w", err)
	}

	return response{status: resp.StatusCode, body: data}, nil
}

// doWrite performs a mutating request and maps every failure onto a
// *domain.RequestError carrying a message fit for display
func (c *Client) doWrite(ctx context.Context, method, path, token, action string, payload any) ([]byte, error) {
	if token == "" {
		return nil, domain.NewRequestError(domain.ErrUnauthorized, 0, "sign in to "+action)
	}

	resp, err := c.doRequest(ctx, method, path, token, payload)
	if err != nil {
		c.logger.Error("catalog write failed", "method", method, "path", path, "error", err)
		return nil, domain.NewRequestError(domain.ErrRequestFailed, 0, fmt.Sprintf("failed to %s: %v", action, err))
	}

	if !resp.ok() {
		msg := errorMessage(resp.body)
		if msg == "" {
			msg = fmt.Sprintf("failed to %s (status %d)", action, resp.status)
		}
		c.logger.Warn("catalog write rejected", "method", method, "path", path, "status", resp.status, "message", msg)
		return nil, domain.NewRequestError(domain.KindForStatus(resp.status), resp.status, msg)
	}

	return resp.body, nil
}

func (c *Client) entryPath(id string) string {
	return c.catalogPath + "/" + url.PathEscape(id)
}

// FetchAll returns every catalog entry. Failures never propagate as a
// hard error: the slice is empty and the error wraps domain.ErrFetchFailed
// for logging.
func (c *Client) FetchAll(ctx context.Context) ([]domain.Entry, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.catalogPath, "", nil)
	if err != nil {
		return []domain.Entry{}, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	if !resp.ok() {
		return []domain.Entry{}, fmt.Errorf("%w: unexpected status code: %d", domain.ErrFetchFailed, resp.status)
	}

	dtos, err := decodeCollection(resp.body)
	if err != nil {
		return []domain.Entry{}, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	entries := MapEntries(dtos)
	c.logger.Debug("fetched catalog", "count", len(entries))
	return entries, nil
}

// Get returns a single entry
func (c *Client) Get(ctx context.Context, id string) (domain.Entry, error) {
	if id == "" {
		return domain.Entry{}, domain.NewRequestError(domain.ErrNotFound, 0, "entry id is required")
	}

	resp, err := c.doRequest(ctx, http.MethodGet, c.entryPath(id), "", nil)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	if resp.status == http.StatusNotFound {
		return domain.Entry{}, domain.NewRequestError(domain.ErrNotFound, resp.status, errorMessage(resp.body))
	}
	if !resp.ok() {
		return domain.Entry{}, fmt.Errorf("%w: unexpected status code: %d", domain.ErrFetchFailed, resp.status)
	}

	dto, err := decodeEntry(resp.body)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	return MapEntry(dto), nil
}

// Create submits a new entry and returns the server-assigned version
func (c *Client) Create(ctx context.Context, token string, entry domain.Entry) (domain.Entry, error) {
	body, err := c.doWrite(ctx, http.MethodPost, c.catalogPath, token, "create entry", entryPayload(entry))
	if err != nil {
		return domain.Entry{}, err
	}

	dto, err := decodeEntry(body)
	if err != nil {
		return domain.Entry{}, domain.NewRequestError(domain.ErrRequestFailed, 0, err.Error())
	}

	created := MapEntry(dto)
	c.logger.Info("created entry", "id", created.ID, "title", created.Title)
	return created, nil
}

// Update applies a partial update and returns the updated entry
func (c *Client) Update(ctx context.Context, token, id string, patch domain.EntryPatch) (domain.Entry, error) {
	if id == "" {
		return domain.Entry{}, domain.NewRequestError(domain.ErrNotFound, 0, "entry id is required")
	}

	body, err := c.doWrite(ctx, http.MethodPut, c.entryPath(id), token, "update entry", patchPayload(patch))
	if err != nil {
		return domain.Entry{}, err
	}

	dto, err := decodeEntry(body)
	if err != nil {
		return domain.Entry{}, domain.NewRequestError(domain.ErrRequestFailed, 0, err.Error())
	}

	updated := MapEntry(dto)
	if updated.ID == "" {
		updated.ID = id
	}
	c.logger.Info("updated entry", "id", updated.ID)
	return updated, nil
}

// Delete removes an entry
func (c *Client) Delete(ctx context.Context, token, id string) error {
	if id == "" {
		return domain.NewRequestError(domain.ErrNotFound, 0, "entry id is required")
	}

	if _, err := c.doWrite(ctx, http.MethodDelete, c.entryPath(id), token, "delete entry", nil); err != nil {
		return err
	}

	c.logger.Info("deleted entry", "id", id)
	return nil
}
