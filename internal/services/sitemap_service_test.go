package services

import (
	"context"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/vamgard/vamgard-backend/internal/cache"
)

func TestSitemapService_Build(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	c := cache.NewMemory()
	svc := &SitemapService{DB: db, SiteURL: "https://vamgard.ir", Cache: c, CacheTTL: time.Hour}

	out, err := svc.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.HasPrefix(string(out), xml.Header) {
		t.Fatalf("missing xml header")
	}
	var doc struct {
		URLs []struct {
			Loc        string `xml:"loc"`
			LastMod    string `xml:"lastmod"`
			ChangeFreq string `xml:"changefreq"`
			Priority   string `xml:"priority"`
		} `xml:"url"`
	}
	if err := xml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// 4 static + 2 loans + 1 active bank + 1 type + 1 post
	if len(doc.URLs) != 9 {
		t.Fatalf("got %d urls", len(doc.URLs))
	}
	if doc.URLs[0].Loc != "https://vamgard.ir/" || doc.URLs[0].Priority != "1.0" || doc.URLs[0].ChangeFreq != "daily" {
		t.Fatalf("home entry: %+v", doc.URLs[0])
	}
	byLoc := map[string]int{}
	for i, u := range doc.URLs {
		byLoc[u.Loc] = i
	}
	loan, ok := byLoc["https://vamgard.ir/vam/vam-ezdevaj-melli"]
	if !ok || doc.URLs[loan].LastMod != "2025-01-01" || doc.URLs[loan].Priority != "0.8" {
		t.Fatalf("loan entry missing or wrong: %v", byLoc)
	}
	if _, ok := byLoc["https://vamgard.ir/bank/mehr"]; ok {
		t.Fatalf("inactive bank listed")
	}
	if i, ok := byLoc["https://vamgard.ir/blog/rahnama"]; !ok || doc.URLs[i].Priority != "0.6" {
		t.Fatalf("post entry missing")
	}

	// served from cache afterwards
	db.Exec("DELETE FROM loans")
	again, err := svc.Build(context.Background())
	if err != nil || string(again) != string(out) {
		t.Fatalf("expected cached sitemap")
	}
}
