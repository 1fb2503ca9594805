package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vamgard/vamgard-backend/internal/cache"
)

func TestBranchSearchName(t *testing.T) {
	cases := map[string]string{
		"بانک ملی ایران": "ملی",
		"قرض‌الحسنه مهر": "مهر",
		"بانک ملت":       "ملت",
		"رسالت":          "رسالت",
		"بانك ملي":       "ملی", // arabic kaf/yeh folded
	}
	for in, want := range cases {
		if got := BranchSearchName(in); got != want {
			t.Fatalf("BranchSearchName(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestOverpassQuery(t *testing.T) {
	q := OverpassQuery(`ملی"`, 35.7, 51.4, 5000)
	for _, want := range []string{
		"[out:json][timeout:10];",
		`node["amenity"="bank"]["name"~"ملی\""](around:5000,35.7,51.4);`,
		`way["amenity"="bank"]["name"~"ملی\""](around:5000,35.7,51.4);`,
		"out center body;",
	} {
		if !strings.Contains(q, want) {
			t.Fatalf("query missing %q:\n%s", want, q)
		}
	}
}

func TestParseBranches(t *testing.T) {
	body := `{"elements":[
		{"type":"node","lat":35.1,"lon":51.1,"tags":{"name":"شعبه مرکزی","addr:street":"خیابان آزادی"}},
		{"type":"way","center":{"lat":35.2,"lon":51.2},"tags":{}},
		{"type":"node","tags":{"name":"بدون مختصات"}}
	]}`
	got, err := parseBranches([]byte(body), "بانک ملی")
	if err != nil {
		t.Fatalf("parseBranches: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d branches; want 2", len(got))
	}
	if got[0].Name != "شعبه مرکزی" || got[0].Address == nil || *got[0].Address != "خیابان آزادی" {
		t.Fatalf("node branch: %+v", got[0])
	}
	if got[1].Name != "بانک ملی" || got[1].Lat != 35.2 || got[1].Lng != 51.2 || got[1].Address != nil {
		t.Fatalf("way branch: %+v", got[1])
	}
	if _, err := parseBranches([]byte("not json"), ""); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestBranchService_Nearby(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if err := r.ParseForm(); err != nil || !strings.Contains(r.PostForm.Get("data"), `"name"~"مهر"`) {
			t.Errorf("unexpected query: %q", r.PostForm.Get("data"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"elements":[{"lat":35.7,"lon":51.4,"tags":{"name":"شعبه"}}]}`))
	}))
	defer srv.Close()

	svc := NewBranchService(db, srv.URL, time.Second, 5000, cache.NewMemory(), time.Minute)
	ctx := context.Background()

	// inactive banks are still searchable
	got, err := svc.Nearby(ctx, "mehr", 35.7, 51.4)
	if err != nil || len(got) != 1 || got[0].Name != "شعبه" {
		t.Fatalf("Nearby: %+v err=%v", got, err)
	}
	if _, err := svc.Nearby(ctx, "mehr", 35.7001, 51.4001); err != nil {
		t.Fatalf("cached Nearby: %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("upstream hits = %d; want 1 (second call cached)", n)
	}

	if _, err := svc.Nearby(ctx, "nope", 35, 51); !errors.Is(err, ErrBankNotFound) {
		t.Fatalf("want ErrBankNotFound, got %v", err)
	}
	if _, err := svc.Nearby(ctx, "mehr", 95, 51); !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("want ErrInvalidCoordinates, got %v", err)
	}
}

func TestBranchService_UpstreamErrors(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "busy", http.StatusTooManyRequests)
	}))
	defer down.Close()
	svc := NewBranchService(db, down.URL, time.Second, 0, nil, 0)
	if _, err := svc.Nearby(context.Background(), "bank-melli", 35, 51); !errors.Is(err, ErrBranchUpstream) {
		t.Fatalf("want ErrBranchUpstream, got %v", err)
	}

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer garbage.Close()
	svc.URL = garbage.URL
	if _, err := svc.Nearby(context.Background(), "bank-melli", 35, 51); !errors.Is(err, ErrBranchLookup) {
		t.Fatalf("want ErrBranchLookup, got %v", err)
	}

	garbage.Close()
	if _, err := svc.Nearby(context.Background(), "bank-melli", 35, 51); !errors.Is(err, ErrBranchLookup) {
		t.Fatalf("closed server: want ErrBranchLookup, got %v", err)
	}
}
