package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemory_GetSetExpiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if _, ok := m.Get(ctx, "k"); ok {
		t.Fatalf("empty cache should miss")
	}
	m.Set(ctx, "k", []byte("v"), time.Minute)
	m.Set(ctx, "forever", []byte("f"), 0)

	b, ok := m.Get(ctx, "k")
	if !ok || string(b) != "v" {
		t.Fatalf("Get = %q,%v", b, ok)
	}
	b[0] = 'x'
	if b2, _ := m.Get(ctx, "k"); string(b2) != "v" {
		t.Fatalf("cached value must not alias caller buffers")
	}

	now = now.Add(time.Minute)
	if _, ok := m.Get(ctx, "k"); ok {
		t.Fatalf("entry should expire at ttl")
	}
	if _, ok := m.Get(ctx, "forever"); !ok {
		t.Fatalf("ttl<=0 should never expire")
	}
}

func TestMemory_SweepsExpiredWithoutGet(t *testing.T) {
	m := NewMemory()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 5000; i++ {
		m.Set(ctx, fmt.Sprintf("branches:bank-melli:%d", i), []byte("[]"), time.Minute)
	}
	m.Set(ctx, "sitemap", []byte("<urlset/>"), 0)
	if n := m.Len(); n != 5001 {
		t.Fatalf("Len = %d; want 5001", n)
	}

	now = now.Add(time.Hour)
	m.Set(ctx, "branches:bank-melli:new", []byte("[]"), time.Minute)
	if n := m.Len(); n != 2 {
		t.Fatalf("expired entries kept after sweep: Len = %d; want 2", n)
	}
	if _, ok := m.Get(ctx, "sitemap"); !ok {
		t.Fatalf("entry without ttl must survive the sweep")
	}
}

func TestMemory_MaxEntries(t *testing.T) {
	m := NewMemory()
	m.MaxEntries = 3
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		m.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), 0)
	}
	if n := m.Len(); n != 3 {
		t.Fatalf("Len = %d; want 3", n)
	}
	if _, ok := m.Get(ctx, "k9"); !ok {
		t.Fatalf("latest entry must be stored")
	}

	// overwriting a present key evicts nothing
	m.Set(ctx, "k9", []byte("w"), 0)
	if n := m.Len(); n != 3 {
		t.Fatalf("overwrite changed Len to %d", n)
	}
}

func TestJSONHelpers(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	type payload struct {
		Name  string
		Count int
	}
	SetJSON(ctx, m, "p", payload{"melli", 3}, time.Minute)

	var got payload
	if !GetJSON(ctx, m, "p", &got) || got.Name != "melli" || got.Count != 3 {
		t.Fatalf("GetJSON = %+v", got)
	}
	m.Set(ctx, "bad", []byte("{"), time.Minute)
	if GetJSON(ctx, m, "bad", &got) {
		t.Fatalf("undecodable value should be a miss")
	}
	if GetJSON(ctx, m, "missing", &got) {
		t.Fatalf("missing key should be a miss")
	}
	// unsupported value is silently skipped
	SetJSON(ctx, m, "ch", make(chan int), time.Minute)
	if _, ok := m.Get(ctx, "ch"); ok {
		t.Fatalf("unmarshalable value must not be stored")
	}
}

func TestRedis_UnreachableIsMiss(t *testing.T) {
	r := NewRedis("127.0.0.1:1", "", 0)
	defer r.Close()
	r.Timeout = 200 * time.Millisecond
	ctx := context.Background()

	r.Set(ctx, "k", []byte("v"), time.Minute)
	if _, ok := r.Get(ctx, "k"); ok {
		t.Fatalf("unreachable redis must report a miss")
	}
}

var (
	_ Cache = (*Memory)(nil)
	_ Cache = (*Redis)(nil)
)
