// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for PageVisit rows.
//
// Visits are append-only; there is no update or delete here.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vamgard/vamgard-backend/internal/domain"
)

// CreateVisit inserts v. VisitedAt is normalized to UTC so range comparisons
// behave the same on every driver.
func CreateVisit(ctx context.Context, db *gorm.DB, v *domain.PageVisit) error {
	if v.VisitedAt.IsZero() {
		v.VisitedAt = time.Now().UTC()
	} else {
		v.VisitedAt = v.VisitedAt.UTC()
	}
	return db.WithContext(ctx).Create(v).Error
}

// VisitExistsSince reports whether a visit exists for (path, ip) with
// visited_at >= since. It uses the idx_visit_dedup index.
func VisitExistsSince(ctx context.Context, db *gorm.DB, path, ip string, since time.Time) (bool, error) {
	var ids []uint
	err := db.WithContext(ctx).
		Model(&domain.PageVisit{}).
		Where("path = ? AND ip_address = ? AND visited_at >= ?", path, ip, since.UTC()).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// CountVisits returns the total number of recorded visits.
func CountVisits(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.PageVisit{}).Count(&n).Error
	return n, err
}

// CountVisitsSince returns the number of visits at or after since.
func CountVisitsSince(ctx context.Context, db *gorm.DB, since time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.PageVisit{}).
		Where("visited_at >= ?", since.UTC()).
		Count(&n).Error
	return n, err
}

// RecentVisits returns the newest visits first, capped at limit.
func RecentVisits(ctx context.Context, db *gorm.DB, limit int) ([]domain.PageVisit, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.PageVisit
	err := db.WithContext(ctx).
		Order("visited_at DESC").Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
