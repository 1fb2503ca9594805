package services

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/url"
	"time"

	"gorm.io/gorm"

	"github.com/vamgard/vamgard-backend/internal/cache"
	"github.com/vamgard/vamgard-backend/internal/repo"

	"go.opentelemetry.io/otel"
)

const sitemapCacheKey = "sitemap.xml"

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapService renders /sitemap.xml.
type SitemapService struct {
	DB       *gorm.DB
	SiteURL  string // absolute origin without trailing slash
	Cache    cache.Cache
	CacheTTL time.Duration
}

// Build returns the sitemap document: static pages, then active loans,
// banks and loan types, then published posts.
func (s *SitemapService) Build(ctx context.Context) ([]byte, error) {
	tr := otel.Tracer("services/SitemapService")
	ctx, span := tr.Start(ctx, "Build")
	defer span.End()

	if s.Cache != nil {
		if b, ok := s.Cache.Get(ctx, sitemapCacheKey); ok {
			return b, nil
		}
	}

	loans, err := repo.ListActiveLoans(ctx, s.DB, repo.LoanFilter{})
	if err != nil {
		return nil, err
	}
	banks, err := repo.ListActiveBanks(ctx, s.DB, false)
	if err != nil {
		return nil, err
	}
	types, err := repo.ListActiveLoanTypes(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	posts, err := repo.ListPublishedPosts(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	add := func(path, lastmod, freq, prio string) {
		set.URLs = append(set.URLs, sitemapURL{Loc: s.SiteURL + path, LastMod: lastmod, ChangeFreq: freq, Priority: prio})
	}
	add("/", "", "daily", "1.0")
	add("/Loans", "", "daily", "0.9")
	add("/Banks", "", "weekly", "0.8")
	add("/Blog", "", "weekly", "0.8")
	for _, l := range loans {
		add(LoanPath(url.PathEscape(l.Slug)), l.UpdatedAt.UTC().Format(time.DateOnly), "weekly", "0.8")
	}
	for _, b := range banks {
		add("/bank/"+url.PathEscape(b.Slug), "", "weekly", "0.7")
	}
	for _, t := range types {
		add("/type/"+url.PathEscape(t.Slug), "", "weekly", "0.7")
	}
	for _, p := range posts {
		add(BlogPath(url.PathEscape(p.Slug)), p.UpdatedAt.UTC().Format(time.DateOnly), "weekly", "0.6")
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')

	out := buf.Bytes()
	if s.Cache != nil {
		s.Cache.Set(ctx, sitemapCacheKey, out, s.CacheTTL)
	}
	return out, nil
}
