// Package analytics implements page-visit tracking and view-count
// deduplication.
//
// The package has three pieces:
//   - Filter decides whether a completed request is worth recording
//     (status, method, excluded areas, static assets, bots).
//   - Recorder persists a PageVisit for trackable requests and swallows every
//     failure so that analytics never affects the response.
//   - Deduplicator answers whether a content view from an IP should bump the
//     content's view counter, based on the visit history of the last window.
//
// Both Recorder and Deduplicator depend on a Store instead of a concrete
// database handle so they can be exercised with in-memory fakes.
package analytics

import (
	"net/http"
	"path"
	"strings"
)

// DefaultIgnoredExtensions lists static asset extensions that are never
// recorded. Comparison is case-insensitive.
var DefaultIgnoredExtensions = []string{
	".css", ".js", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico",
	".woff", ".woff2", ".ttf", ".map",
}

// botMarkers are lower-case User-Agent substrings that identify crawlers and
// command line clients.
var botMarkers = []string{"bot", "crawler", "spider", "slurp", "curl", "wget"}

// Skip reasons reported by Filter.Check and used as metric labels.
const (
	ReasonTrackable = ""
	ReasonStatus    = "status"
	ReasonMethod    = "method"
	ReasonExcluded  = "excluded_path"
	ReasonAsset     = "asset"
	ReasonNoAgent   = "no_user_agent"
	ReasonBot       = "bot"
)

// Hit is the subset of a completed request that trackability depends on.
type Hit struct {
	Method    string
	Status    int
	Path      string
	UserAgent string
	ClientIP  string
}

// Filter is a pure trackability predicate. The zero value is not useful; use
// NewFilter.
type Filter struct {
	AdminPrefix string
	APIPrefix   string
	SitemapPath string

	// OpsPaths are operational endpoints (health, metrics, docs). A path is
	// excluded when it equals one of them or lies below it.
	OpsPaths []string

	ignored map[string]struct{}
}

// NewFilter returns a Filter with the site's excluded areas. When exts is
// empty DefaultIgnoredExtensions is used. Extensions may be given with or
// without the leading dot.
func NewFilter(exts []string) *Filter {
	if len(exts) == 0 {
		exts = DefaultIgnoredExtensions
	}
	f := &Filter{
		AdminPrefix: "/Admin",
		APIPrefix:   "/api",
		SitemapPath: "/sitemap.xml",
		OpsPaths:    []string{"/health", "/metrics", "/swagger"},
		ignored:     make(map[string]struct{}, len(exts)),
	}
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		f.ignored[e] = struct{}{}
	}
	return f
}

// IsTrackable reports whether h passes every filter rule.
func (f *Filter) IsTrackable(h Hit) bool {
	return f.Check(h) == ReasonTrackable
}

// Check returns ReasonTrackable when h should be recorded, otherwise the
// first rule that rejected it.
func (f *Filter) Check(h Hit) string {
	if h.Status >= http.StatusBadRequest {
		return ReasonStatus
	}
	if !strings.EqualFold(h.Method, http.MethodGet) {
		return ReasonMethod
	}
	if f.excluded(h.Path) {
		return ReasonExcluded
	}
	if f.isAsset(h.Path) {
		return ReasonAsset
	}
	if h.UserAgent == "" {
		return ReasonNoAgent
	}
	if IsBot(h.UserAgent) {
		return ReasonBot
	}
	return ReasonTrackable
}

func (f *Filter) excluded(p string) bool {
	if hasPrefixFold(p, f.AdminPrefix) || hasPrefixFold(p, f.APIPrefix) {
		return true
	}
	if p == f.SitemapPath {
		return true
	}
	for _, op := range f.OpsPaths {
		if p == op || strings.HasPrefix(p, op+"/") {
			return true
		}
	}
	return false
}

// isAsset checks the extension of the final path segment only, so a dot in a
// directory name does not count.
func (f *Filter) isAsset(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	_, ok := f.ignored[ext]
	return ok
}

// IsBot reports whether ua looks like a crawler or scripted client.
func IsBot(ua string) bool {
	ua = strings.ToLower(ua)
	for _, m := range botMarkers {
		if strings.Contains(ua, m) {
			return true
		}
	}
	return false
}

func hasPrefixFold(s, prefix string) bool {
	if prefix == "" || len(s) < len(prefix) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}
