package analytics

import (
	"context"
	"strings"
	"time"
)

// DefaultDedupWindow is the trailing period during which repeat views of the
// same path from the same IP are not counted again.
const DefaultDedupWindow = 24 * time.Hour

// Deduplicator decides whether a content view should increment the content's
// view counter. It does not keep state of its own: the decision is derived
// from the visit history in Lookup, so a view is skipped when the same IP
// already has a visit on the same path inside Window.
//
// Check and increment are not atomic. Two concurrent first views from one IP
// can both be counted.
type Deduplicator struct {
	Lookup VisitLookup
	Window time.Duration
	// Now is the clock the window is measured from; nil means time.Now.
	Now func() time.Time
}

// NewDeduplicator returns a Deduplicator over lookup. A non-positive window
// falls back to DefaultDedupWindow.
func NewDeduplicator(lookup VisitLookup, window time.Duration) *Deduplicator {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &Deduplicator{Lookup: lookup, Window: window}
}

// ShouldCountView reports whether a view of contentPath from clientIP should
// be counted. An empty clientIP always counts since there is no identity to
// deduplicate on. Query errors are returned to the caller unchanged.
func (d *Deduplicator) ShouldCountView(ctx context.Context, contentPath, clientIP string) (bool, error) {
	clientIP = strings.TrimSpace(clientIP)
	if clientIP == "" {
		return true, nil
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	window := d.Window
	if window <= 0 {
		window = DefaultDedupWindow
	}
	since := now().UTC().Add(-window)

	seen, err := d.Lookup.VisitExistsSince(ctx, contentPath, clientIP, since)
	if err != nil {
		return false, err
	}
	return !seen, nil
}
