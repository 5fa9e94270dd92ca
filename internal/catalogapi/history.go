package catalogapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmcdole/marquee/internal/domain"
)

const watchHistoryPath = "/users/watch-history"

// GetWatchHistory returns the account's server-side watch history
func (c *Client) GetWatchHistory(ctx context.Context, token string) ([]domain.WatchRecord, error) {
	if token == "" {
		return nil, domain.NewRequestError(domain.ErrUnauthorized, 0, "sign in to view watch history")
	}

	resp, err := c.doRequest(ctx, http.MethodGet, watchHistoryPath, token, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	if !resp.ok() {
		return nil, domain.NewRequestError(domain.KindForStatus(resp.status), resp.status, errorMessage(resp.body))
	}

	return decodeHistory(resp.body)
}

// AddToWatchHistory records a watched entry on the server
func (c *Client) AddToWatchHistory(ctx context.Context, token string, record domain.WatchRecord) error {
	_, err := c.doWrite(ctx, http.MethodPost, watchHistoryPath, token, "update watch history", record)
	return err
}
