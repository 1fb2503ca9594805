package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/vamgard/vamgard-backend/internal/analytics"
)

// ViewGate decides whether a content view should be counted.
// *analytics.Deduplicator satisfies it.
type ViewGate interface {
	ShouldCountView(ctx context.Context, contentPath, clientIP string) (bool, error)
}

// countView consults gate and runs increment when the view counts. A failed
// dedup lookup suppresses the increment so a view is never counted twice;
// increment failures are logged and reported as "not counted". The page
// itself is always served.
func countView(ctx context.Context, gate ViewGate, kind, path, clientIP string, increment func(context.Context) error) bool {
	if gate != nil {
		ok, err := gate.ShouldCountView(ctx, path, clientIP)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("view dedup lookup failed; not counting view")
			return false
		}
		if !ok {
			return false
		}
	}
	if err := increment(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("view count increment failed")
		return false
	}
	analytics.CountViewIncrement(kind)
	return true
}
