package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/vamgard/vamgard-backend/internal/domain"
)

func TestBlogService_ListPaging(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		pub := base.AddDate(0, 0, i)
		p := &domain.BlogPost{Title: "p", Slug: "p" + string(rune('a'+i)), Content: "body", IsPublished: true, PublishedAt: &pub}
		if err := db.Create(p).Error; err != nil {
			t.Fatal(err)
		}
	}
	svc := NewBlogService(db, nil)
	svc.PageSize = 2

	l, err := svc.List(context.Background(), 0, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if l.Page != 1 || l.TotalCount != 4 || l.TotalPages != 2 || len(l.Posts) != 2 {
		t.Fatalf("listing: page=%d total=%d pages=%d posts=%d", l.Page, l.TotalCount, l.TotalPages, len(l.Posts))
	}
	if l.Posts[0].Slug != "pc" || l.Posts[0].Content != "" {
		t.Fatalf("newest first with content stripped: %+v", l.Posts[0])
	}
	if len(l.Categories) != 1 || l.Categories[0] != "آموزش" {
		t.Fatalf("categories: %v", l.Categories)
	}

	cat, err := svc.List(context.Background(), 1, " آموزش ")
	if err != nil || cat.TotalCount != 1 || cat.Category != "آموزش" {
		t.Fatalf("category filter: %+v err=%v", cat, err)
	}
	empty, err := svc.List(context.Background(), 5, "هیچ")
	if err != nil || empty.TotalCount != 0 || empty.Posts == nil {
		t.Fatalf("empty category should yield empty slice: %+v err=%v", empty, err)
	}

	last, err := svc.List(context.Background(), math.MaxInt, "")
	if err != nil || last.Page != 2 || len(last.Posts) != 2 || last.Posts[1].Slug == l.Posts[1].Slug {
		t.Fatalf("out-of-range page should clamp to the last page: %+v err=%v", last, err)
	}

	n, at, err := svc.Stats(context.Background(), "")
	if err != nil || n != 4 || at == nil {
		t.Fatalf("Stats: %d %v %v", n, at, err)
	}
}

func TestBlogService_DetailSanitizesAndDedups(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	gate := &fakeGate{count: true}
	svc := NewBlogService(db, gate)

	d, err := svc.Detail(context.Background(), f.post.Slug, "198.51.100.2")
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if strings.Contains(d.Post.Content, "<script>") || !strings.Contains(d.Post.Content, "<p>متن</p>") {
		t.Fatalf("content not sanitized: %q", d.Post.Content)
	}
	if !d.ViewCounted || d.Post.ViewCount != 1 {
		t.Fatalf("counted=%v views=%d", d.ViewCounted, d.Post.ViewCount)
	}
	if gate.calls[0] != "/blog/rahnama|198.51.100.2" {
		t.Fatalf("gate path: %v", gate.calls)
	}

	gate.count = false
	d, _ = svc.Detail(context.Background(), f.post.Slug, "198.51.100.2")
	var got domain.BlogPost
	db.First(&got, f.post.ID)
	if d.ViewCounted || got.ViewCount != 1 {
		t.Fatalf("repeat view counted: %v %d", d.ViewCounted, got.ViewCount)
	}

	if _, err := svc.Detail(context.Background(), "missing", ""); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("want ErrPostNotFound, got %v", err)
	}
}
