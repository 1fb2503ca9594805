package analytics

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vamgard/vamgard-backend/internal/domain"
	"github.com/vamgard/vamgard-backend/internal/utils"
)

// VisitWriter appends visit rows.
type VisitWriter interface {
	InsertVisit(ctx context.Context, v *domain.PageVisit) error
}

// VisitLookup answers visit history questions.
type VisitLookup interface {
	// VisitExistsSince reports whether a visit with exactly this path and IP
	// was recorded at or after since.
	VisitExistsSince(ctx context.Context, path, ip string, since time.Time) (bool, error)
}

// Store is the persistence sink shared by Recorder and Deduplicator.
type Store interface {
	VisitWriter
	VisitLookup
}

// Recorder persists a PageVisit for every trackable completed request.
//
// Record never returns an error and never panics: persistence failures and
// panics inside the recorder are logged at debug level, counted in
// vamgard_visits_dropped_total and discarded. There is no retry.
type Recorder struct {
	Store  VisitWriter
	Filter *Filter
	// Now is the clock used for VisitedAt; nil means time.Now.
	Now func() time.Time
}

// NewRecorder returns a Recorder writing to store and gated by filter.
func NewRecorder(store VisitWriter, filter *Filter) *Recorder {
	if filter == nil {
		filter = NewFilter(nil)
	}
	return &Recorder{Store: store, Filter: filter}
}

// Record evaluates h and, when trackable, writes one visit row. It reports
// whether a row was written.
func (r *Recorder) Record(ctx context.Context, h Hit) (written bool) {
	defer func() {
		if rec := recover(); rec != nil {
			visitsDropped.Inc()
			log.Debug().Interface("panic", rec).Str("path", h.Path).Msg("visit recorder panic")
			written = false
		}
	}()

	if reason := r.Filter.Check(h); reason != ReasonTrackable {
		visitsSkipped.WithLabelValues(reason).Inc()
		return false
	}

	v := r.build(h)
	if err := r.Store.InsertVisit(ctx, v); err != nil {
		visitsDropped.Inc()
		log.Debug().Err(err).Str("path", v.Path).Msg("visit insert failed")
		return false
	}
	visitsRecorded.Inc()
	return true
}

// build maps a hit to a row, applying the column limits.
func (r *Recorder) build(h Hit) *domain.PageVisit {
	p := h.Path
	if p == "" {
		p = "/"
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	v := &domain.PageVisit{
		Path:      utils.TruncateRunes(p, domain.MaxVisitPathLen),
		VisitedAt: now().UTC(),
	}
	if ip := strings.TrimSpace(h.ClientIP); ip != "" {
		s := utils.TruncateRunes(ip, domain.MaxVisitIPLen)
		v.IPAddress = &s
	}
	if h.UserAgent != "" {
		s := utils.TruncateRunes(h.UserAgent, domain.MaxVisitUserAgentLen)
		v.UserAgent = &s
	}
	return v
}
