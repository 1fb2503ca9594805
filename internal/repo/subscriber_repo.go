// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for newsletter
// subscribers and admin users.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vamgard/vamgard-backend/internal/domain"
)

// SubscriberExists reports whether email is already subscribed. The caller
// passes the normalized (trimmed, lower-cased) address.
func SubscriberExists(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.NewsletterSubscriber{}).
		Where("email = ?", email).
		Count(&n).Error
	return n > 0, err
}

// CreateSubscriber inserts s. SubscribedAt defaults to now (UTC).
func CreateSubscriber(ctx context.Context, db *gorm.DB, s *domain.NewsletterSubscriber) error {
	if s.SubscribedAt.IsZero() {
		s.SubscribedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(s).Error
}

// ListSubscribers returns subscribers newest first. activeOnly restricts the
// result to active subscriptions.
func ListSubscribers(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.NewsletterSubscriber, error) {
	q := db.WithContext(ctx).Order("subscribed_at DESC").Order("id DESC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []domain.NewsletterSubscriber
	err := q.Find(&out).Error
	return out, err
}

// DeleteSubscriber removes a subscriber by id, or returns ErrNotFound.
func DeleteSubscriber(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.NewsletterSubscriber{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountSubscribers returns the total number of subscribers.
func CountSubscribers(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.NewsletterSubscriber{}).Count(&n).Error
	return n, err
}

// CountPosts returns the number of blog posts, optionally only published ones.
func CountPosts(ctx context.Context, db *gorm.DB, publishedOnly bool) (int64, error) {
	var n int64
	q := db.WithContext(ctx).Model(&domain.BlogPost{})
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	err := q.Count(&n).Error
	return n, err
}

// GetAdminByUsername fetches an admin account or ErrNotFound.
func GetAdminByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.AdminUser, error) {
	var a domain.AdminUser
	if err := db.WithContext(ctx).Where("username = ?", username).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// CountAdmins returns the number of admin accounts.
func CountAdmins(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.AdminUser{}).Count(&n).Error
	return n, err
}

// CreateAdmin inserts a new admin account.
func CreateAdmin(ctx context.Context, db *gorm.DB, a *domain.AdminUser) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(a).Error
}

// UpdateAdminPassword replaces the stored hash, or returns ErrNotFound.
func UpdateAdminPassword(ctx context.Context, db *gorm.DB, id uint, hash string) error {
	res := db.WithContext(ctx).
		Model(&domain.AdminUser{}).
		Where("id = ?", id).
		Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
