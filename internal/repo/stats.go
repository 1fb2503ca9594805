// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// LoansStats returns aggregate metadata for the public loan listing matching
// f: the number of rows and the maximum UpdatedAt among them.
//
// When nothing matches, the returned count is 0 and maxUpdatedAt is nil.
//
// Return values:
//   - count:        matching active loans
//   - maxUpdatedAt: pointer to the greatest UpdatedAt, or nil if no rows
//   - err:          database error, if any
func LoansStats(ctx context.Context, db *gorm.DB, f LoanFilter) (count int64, maxUpdatedAt *time.Time, err error) {
	base := func() *gorm.DB { return applyLoanFilter(ctx, db, activeLoans(ctx, db), f) }

	// Count
	if err = base().Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = base().Select("loans.updated_at").Order("loans.updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// PublishedPostsStats returns the number of published posts in category (all
// categories when empty) and their maximum UpdatedAt.
func PublishedPostsStats(ctx context.Context, db *gorm.DB, category string) (count int64, maxUpdatedAt *time.Time, err error) {
	base := func() *gorm.DB { return publishedPosts(ctx, db, category) }

	if err = base().Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var row struct {
		UpdatedAt time.Time
	}
	if err = base().Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
