package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vamgard/vamgard-backend/internal/analytics"
	"github.com/vamgard/vamgard-backend/internal/domain"
)

type memVisits struct {
	mu   sync.Mutex
	rows []domain.PageVisit
	err  error
	ctxs []context.Context
}

func (m *memVisits) InsertVisit(ctx context.Context, v *domain.PageVisit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxs = append(m.ctxs, ctx)
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, *v)
	return nil
}

func newVisitRouter(store *memVisits) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(VisitRecorder(analytics.NewRecorder(store, nil)))
	r.GET("/vam/:slug", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/Admin/Dashboard", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/Home/Subscribe", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func visit(r http.Handler, method, path, ua string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = net.JoinHostPort("203.0.113.5", "4000")
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestVisitRecorder_RecordsTrackablePages(t *testing.T) {
	store := &memVisits{}
	r := newVisitRouter(store)
	before := time.Now().UTC()

	visit(r, http.MethodGet, "/vam/vam-ezdevaj-bank-melli?ref=x", "Mozilla/5.0 (X11)")

	if len(store.rows) != 1 {
		t.Fatalf("rows = %d; want 1", len(store.rows))
	}
	v := store.rows[0]
	if v.Path != "/vam/vam-ezdevaj-bank-melli" {
		t.Fatalf("path = %q (query must be dropped)", v.Path)
	}
	if v.IPAddress == nil || *v.IPAddress != "203.0.113.5" {
		t.Fatalf("ip = %v", v.IPAddress)
	}
	if v.UserAgent == nil || *v.UserAgent != "Mozilla/5.0 (X11)" {
		t.Fatalf("ua = %v", v.UserAgent)
	}
	if v.VisitedAt.Before(before) || v.VisitedAt.After(time.Now().UTC()) {
		t.Fatalf("visited_at %v outside test window", v.VisitedAt)
	}
	if store.ctxs[0].Done() != nil {
		t.Fatalf("recorder context must not carry request cancellation")
	}
}

func TestVisitRecorder_SkipsUntrackable(t *testing.T) {
	store := &memVisits{}
	r := newVisitRouter(store)

	visit(r, http.MethodGet, "/Admin/Dashboard", "Mozilla/5.0")
	visit(r, http.MethodPost, "/Home/Subscribe", "Mozilla/5.0")
	visit(r, http.MethodGet, "/missing", "Mozilla/5.0")
	visit(r, http.MethodGet, "/vam/x", "Googlebot/2.1")
	visit(r, http.MethodGet, "/vam/x", "")

	if len(store.rows) != 0 {
		t.Fatalf("unexpected rows: %+v", store.rows)
	}
}

func TestVisitRecorder_FailureDoesNotAffectResponse(t *testing.T) {
	store := &memVisits{err: errors.New("disk full")}
	r := newVisitRouter(store)

	w := visit(r, http.MethodGet, "/vam/x", "Mozilla/5.0")
	if w.Code != http.StatusOK || w.Body.String() != `{"ok":true}` {
		t.Fatalf("response changed by recorder failure: %d %q", w.Code, w.Body.String())
	}
}

func TestVisitRecorder_NilRecorder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(VisitRecorder(nil))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "home") })
	if w := visit(r, http.MethodGet, "/", "Mozilla/5.0"); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
