// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for BlogPost rows.
// Only published posts are ever returned to public callers.
package repo

import (
	"context"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/vamgard/vamgard-backend/internal/domain"
	"github.com/vamgard/vamgard-backend/internal/utils"
)

func publishedPosts(ctx context.Context, db *gorm.DB, category string) *gorm.DB {
	q := db.WithContext(ctx).Model(&domain.BlogPost{}).Where("is_published = ?", true)
	if c := strings.TrimSpace(category); c != "" {
		q = q.Where("category = ?", c)
	}
	return q
}

// CountPublishedPosts returns the number of published posts, optionally in a
// single category.
func CountPublishedPosts(ctx context.Context, db *gorm.DB, category string) (int64, error) {
	var n int64
	err := publishedPosts(ctx, db, category).Count(&n).Error
	return n, err
}

// ListPublishedPostsPage returns a page of published posts, newest first.
// The caller computes offset and limit.
func ListPublishedPostsPage(ctx context.Context, db *gorm.DB, category string, offset, limit int) ([]domain.BlogPost, error) {
	var out []domain.BlogPost
	err := publishedPosts(ctx, db, category).
		Order("published_at DESC").Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListPublishedPosts returns every published post, newest first.
func ListPublishedPosts(ctx context.Context, db *gorm.DB) ([]domain.BlogPost, error) {
	var out []domain.BlogPost
	err := publishedPosts(ctx, db, "").
		Order("published_at DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

// PublishedCategories returns the distinct non-empty categories of published
// posts in ascending order.
func PublishedCategories(ctx context.Context, db *gorm.DB) ([]string, error) {
	var out []string
	err := publishedPosts(ctx, db, "").
		Where("category IS NOT NULL AND category <> ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &out).Error
	return out, err
}

// GetPublishedPostBySlug fetches a published post or ErrNotFound.
func GetPublishedPostBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.BlogPost, error) {
	var p domain.BlogPost
	if err := publishedPosts(ctx, db, "").Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// IncrementPostViewCount adds one to the post's view counter in a single
// UPDATE. UpdatedAt is left untouched.
func IncrementPostViewCount(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).
		Model(&domain.BlogPost{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RecentPublishedPosts returns the newest published posts other than
// excludeID.
func RecentPublishedPosts(ctx context.Context, db *gorm.DB, excludeID uint, limit int) ([]domain.BlogPost, error) {
	var out []domain.BlogPost
	err := publishedPosts(ctx, db, "").
		Where("id <> ?", excludeID).
		Order("published_at DESC").Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// PublishedPostsByIDs returns the published posts among ids, by id.
func PublishedPostsByIDs(ctx context.Context, db *gorm.DB, ids []uint) ([]domain.BlogPost, error) {
	if len(ids) == 0 {
		return []domain.BlogPost{}, nil
	}
	var out []domain.BlogPost
	err := publishedPosts(ctx, db, "").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// PostsRelatedToLoan returns up to limit published posts that reference
// loanID either through related_loan_id or through the related_loan_ids list.
//
// The list column is pre-filtered with LIKE and then checked element-wise
// here, so "1" does not match a list containing only "11".
func PostsRelatedToLoan(ctx context.Context, db *gorm.DB, loanID uint, limit int) ([]domain.BlogPost, error) {
	idStr := strconv.FormatUint(uint64(loanID), 10)
	var candidates []domain.BlogPost
	err := publishedPosts(ctx, db, "").
		Where("related_loan_id = ? OR related_loan_ids LIKE ?", loanID, "%"+idStr+"%").
		Order("id ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.BlogPost, 0, limit)
	for _, p := range candidates {
		if len(out) == limit {
			break
		}
		if p.RelatedLoanID != nil && *p.RelatedLoanID == loanID {
			out = append(out, p)
			continue
		}
		if p.RelatedLoanIDs == nil {
			continue
		}
		for _, id := range utils.ParseIDList(*p.RelatedLoanIDs) {
			if id == loanID {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}
