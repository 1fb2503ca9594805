package repo

import (
	"context"
	"testing"
	"time"

	"github.com/vamgard/vamgard-backend/internal/domain"
)

func TestCreateVisit_NormalizesTimeAndNulls(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()

	tehran := time.FixedZone("IRST", 3*3600+1800)
	at := time.Date(2025, 3, 1, 12, 30, 0, 0, tehran)
	v := &domain.PageVisit{Path: "/vam/x", VisitedAt: at}
	if err := CreateVisit(ctx, db, v); err != nil {
		t.Fatalf("CreateVisit: %v", err)
	}
	if v.VisitedAt.Location() != time.UTC || !v.VisitedAt.Equal(at) {
		t.Fatalf("visited_at should be converted to UTC, got %v", v.VisitedAt)
	}

	zero := &domain.PageVisit{Path: "/"}
	if err := CreateVisit(ctx, db, zero); err != nil {
		t.Fatalf("CreateVisit(zero time): %v", err)
	}
	if zero.VisitedAt.IsZero() {
		t.Fatalf("zero visited_at should default to now")
	}
	if n, _ := CountVisits(ctx, db); n != 2 {
		t.Fatalf("CountVisits = %d; want 2", n)
	}
}

func TestVisitExistsSince(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	ip := "203.0.113.5"
	for _, v := range []*domain.PageVisit{
		{Path: "/vam/a", IPAddress: &ip, VisitedAt: t0},
		{Path: "/vam/b", VisitedAt: t0}, // no ip
	} {
		if err := CreateVisit(ctx, db, v); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	cases := []struct {
		name  string
		path  string
		ip    string
		since time.Time
		want  bool
	}{
		{"same path+ip inside window", "/vam/a", ip, t0.Add(-time.Hour), true},
		{"boundary is inclusive", "/vam/a", ip, t0, true},
		{"outside window", "/vam/a", ip, t0.Add(time.Second), false},
		{"other ip", "/vam/a", "198.51.100.1", t0.Add(-time.Hour), false},
		{"other path", "/vam/c", ip, t0.Add(-time.Hour), false},
		{"null ip never matches", "/vam/b", "", t0.Add(-time.Hour), false},
		{"path is case-sensitive exact", "/VAM/a", ip, t0.Add(-time.Hour), false},
	}
	for _, tc := range cases {
		got, err := VisitExistsSince(ctx, db, tc.path, tc.ip, tc.since)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %v; want %v", tc.name, got, tc.want)
		}
	}
}

func TestVisitExistsSince_NoTable(t *testing.T) {
	db := newTestDB(t, false)
	if _, err := VisitExistsSince(context.Background(), db, "/", "1.1.1.1", time.Now()); err == nil {
		t.Fatalf("expected error when page_visits table is missing")
	}
}

func TestRecentVisitsAndCountSince(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		v := &domain.PageVisit{Path: "/p", VisitedAt: t0.Add(time.Duration(i) * time.Minute)}
		if err := CreateVisit(ctx, db, v); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	recent, err := RecentVisits(ctx, db, 3)
	if err != nil || len(recent) != 3 {
		t.Fatalf("RecentVisits: %d err=%v", len(recent), err)
	}
	if !recent[0].VisitedAt.Equal(t0.Add(4 * time.Minute)) {
		t.Fatalf("newest visit first, got %v", recent[0].VisitedAt)
	}
	if n, _ := CountVisitsSince(ctx, db, t0.Add(3*time.Minute)); n != 2 {
		t.Fatalf("CountVisitsSince = %d; want 2", n)
	}
}
