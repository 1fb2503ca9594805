// Package services – BlogService
//
// BlogService serves the published blog: paginated listing with category
// filter, and post pages whose view counter is gated by the same visit-based
// deduplication as loan pages. Post bodies are admin-authored HTML and are
// passed through a UGC sanitizer before leaving the service.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/vamgard/vamgard-backend/internal/domain"
	"github.com/vamgard/vamgard-backend/internal/repo"
	"github.com/vamgard/vamgard-backend/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BlogPathPrefix is the public URL prefix of blog post pages.
const BlogPathPrefix = "/blog/"

// BlogPath returns the canonical path for a post slug.
func BlogPath(slug string) string { return BlogPathPrefix + slug }

// BlogListing is one page of the blog index.
type BlogListing struct {
	Posts      []domain.BlogPost `json:"posts"`
	Categories []string          `json:"categories"`
	Category   string            `json:"category,omitempty"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalCount int64             `json:"total_count"`
	TotalPages int               `json:"total_pages"`
}

// BlogDetail is a post page.
type BlogDetail struct {
	Post         *domain.BlogPost  `json:"post"`
	ViewCounted  bool              `json:"view_counted"`
	RelatedPosts []domain.BlogPost `json:"related_posts"`
}

// BlogService provides the public blog pages.
type BlogService struct {
	DB    *gorm.DB
	Views ViewGate

	PageSize     int
	RelatedLimit int

	policy *bluemonday.Policy
}

// NewBlogService constructs a BlogService with 12 posts per page and 4
// related posts.
func NewBlogService(db *gorm.DB, views ViewGate) *BlogService {
	return &BlogService{
		DB:           db,
		Views:        views,
		PageSize:     12,
		RelatedLimit: 4,
		policy:       bluemonday.UGCPolicy(),
	}
}

// Sanitize cleans admin-authored HTML for output.
func (s *BlogService) Sanitize(html string) string {
	if s.policy == nil {
		s.policy = bluemonday.UGCPolicy()
	}
	return s.policy.Sanitize(html)
}

// List returns one page of published posts, optionally within category.
func (s *BlogService) List(ctx context.Context, page int, category string) (*BlogListing, error) {
	category = strings.TrimSpace(category)
	tr := otel.Tracer("services/BlogService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.String("category", category),
		),
	)
	defer span.End()

	out := &BlogListing{Category: category}
	var err error
	if out.Categories, err = repo.PublishedCategories(ctx, s.DB); err != nil {
		return nil, err
	}
	if out.TotalCount, err = repo.CountPublishedPosts(ctx, s.DB, category); err != nil {
		return nil, err
	}
	p := utils.Paginate(page, s.PageSize, out.TotalCount, 12)
	out.Page, out.PageSize, out.TotalPages = p.Number, p.Size, p.TotalPages
	if out.TotalCount == 0 {
		out.Posts = []domain.BlogPost{}
		return out, nil
	}
	if out.Posts, err = repo.ListPublishedPostsPage(ctx, s.DB, category, p.Offset, p.Size); err != nil {
		return nil, err
	}
	for i := range out.Posts {
		out.Posts[i].Content = ""
	}
	return out, nil
}

// Stats returns the published post count and newest update in category.
func (s *BlogService) Stats(ctx context.Context, category string) (int64, *time.Time, error) {
	return repo.PublishedPostsStats(ctx, s.DB, strings.TrimSpace(category))
}

// Detail loads a published post, counts the view when the visitor has not
// seen /blog/{slug} within the dedup window, and lists recent posts.
func (s *BlogService) Detail(ctx context.Context, slug, clientIP string) (*BlogDetail, error) {
	tr := otel.Tracer("services/BlogService")
	ctx, span := tr.Start(ctx, "Detail",
		trace.WithAttributes(attribute.String("post.slug", slug)),
	)
	defer span.End()

	post, err := repo.GetPublishedPostBySlug(ctx, s.DB, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	d := &BlogDetail{Post: post}
	d.ViewCounted = countView(ctx, s.Views, "post", BlogPath(slug), clientIP, func(ctx context.Context) error {
		return repo.IncrementPostViewCount(ctx, s.DB, post.ID)
	})
	if d.ViewCounted {
		post.ViewCount++
	}
	post.Content = s.Sanitize(post.Content)

	if d.RelatedPosts, err = repo.RecentPublishedPosts(ctx, s.DB, post.ID, s.RelatedLimit); err != nil {
		return nil, err
	}
	for i := range d.RelatedPosts {
		d.RelatedPosts[i].Content = ""
	}
	return d, nil
}
