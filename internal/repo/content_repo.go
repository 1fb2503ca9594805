// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the back-office queries that manage the
// catalogue and the blog regardless of their active or published flags.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vamgard/vamgard-backend/internal/domain"
)

// Content is any back-office managed row with a unique slug.
type Content interface {
	domain.Bank | domain.LoanType | domain.Loan | domain.BlogPost
}

// GetContentByID loads one row of T by primary key, or returns ErrNotFound.
func GetContentByID[T Content](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var v T
	if err := db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// ContentExists reports whether a row of T with the given id exists.
func ContentExists[T Content](ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// SlugTaken reports whether another row of T already uses slug. exceptID
// excludes the row being edited; pass 0 on create.
func SlugTaken[T Content](ctx context.Context, db *gorm.DB, slug string, exceptID uint) (bool, error) {
	var n int64
	q := db.WithContext(ctx).Model(new(T)).Where("slug = ?", slug)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

// CreateContent inserts v without touching its associations.
func CreateContent[T Content](ctx context.Context, db *gorm.DB, v *T) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(v).Error
}

// SaveContent writes every column of v (an existing row) without touching its
// associations.
func SaveContent[T Content](ctx context.Context, db *gorm.DB, v *T) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(v).Error
}

// DeleteContent removes the row of T with id, or returns ErrNotFound. Loans
// of a deleted bank or loan type go with it through the foreign keys.
func DeleteContent[T Content](ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAllBanks returns every bank by display order.
func ListAllBanks(ctx context.Context, db *gorm.DB) ([]domain.Bank, error) {
	var out []domain.Bank
	err := db.WithContext(ctx).Order("display_order ASC").Order("id ASC").Find(&out).Error
	return out, err
}

// ListAllLoanTypes returns every loan type by display order.
func ListAllLoanTypes(ctx context.Context, db *gorm.DB) ([]domain.LoanType, error) {
	var out []domain.LoanType
	err := db.WithContext(ctx).Order("display_order ASC").Order("id ASC").Find(&out).Error
	return out, err
}

// ListAllLoans returns every loan with its bank and type, most recently
// updated first.
func ListAllLoans(ctx context.Context, db *gorm.DB) ([]domain.Loan, error) {
	var out []domain.Loan
	err := db.WithContext(ctx).
		Preload("Bank").Preload("LoanType").
		Order("updated_at DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

// ListAllPosts returns every blog post, most recently updated first.
func ListAllPosts(ctx context.Context, db *gorm.DB) ([]domain.BlogPost, error) {
	var out []domain.BlogPost
	err := db.WithContext(ctx).Order("updated_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}
