package tui

import "github.com/mmcdole/marquee/internal/catalog"

// refreshObserver adapts poller and cache callbacks to channels for Bubble
// Tea. The UI re-reads the cache on every message, so a dropped signal only
// means a coalesced redraw.
type refreshObserver struct {
	results chan catalog.RefreshResult
	changed chan struct{}
}

func newRefreshObserver() *refreshObserver {
	return &refreshObserver{
		results: make(chan catalog.RefreshResult, 1),
		changed: make(chan struct{}, 1),
	}
}

// OnRefresh sends a poller result to the channel (non-blocking if full)
func (o *refreshObserver) OnRefresh(r catalog.RefreshResult) {
	select {
	case o.results <- r:
	default:
	}
}

// OnChange signals a local cache change (non-blocking if full)
func (o *refreshObserver) OnChange() {
	select {
	case o.changed <- struct{}{}:
	default:
	}
}
