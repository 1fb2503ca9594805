// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for banks and loan
// types, the two catalogue dimensions loans are grouped by.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/vamgard/vamgard-backend/internal/domain"
)

// ListActiveBanks returns active banks by display order. When withLoans is
// set, each bank's active loans (with their loan type) are preloaded.
func ListActiveBanks(ctx context.Context, db *gorm.DB, withLoans bool) ([]domain.Bank, error) {
	q := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order ASC").Order("id ASC")
	if withLoans {
		q = q.
			Preload("Loans", "is_active = ?", true).
			Preload("Loans.LoanType")
	}
	var out []domain.Bank
	err := q.Find(&out).Error
	return out, err
}

// GetActiveBankBySlug fetches an active bank or ErrNotFound.
func GetActiveBankBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Bank, error) {
	var b domain.Bank
	err := db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBankBySlug fetches a bank regardless of its active flag.
func GetBankBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Bank, error) {
	var b domain.Bank
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// CountBanks returns the number of banks, optionally only active ones.
func CountBanks(ctx context.Context, db *gorm.DB, activeOnly bool) (int64, error) {
	var n int64
	q := db.WithContext(ctx).Model(&domain.Bank{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Count(&n).Error
	return n, err
}

// ListActiveLoanTypes returns active loan types by display order.
func ListActiveLoanTypes(ctx context.Context, db *gorm.DB) ([]domain.LoanType, error) {
	var out []domain.LoanType
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order ASC").Order("id ASC").
		Find(&out).Error
	return out, err
}

// GetActiveLoanTypeBySlug fetches an active loan type or ErrNotFound.
func GetActiveLoanTypeBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.LoanType, error) {
	var lt domain.LoanType
	err := db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&lt).Error
	if err != nil {
		return nil, err
	}
	return &lt, nil
}

// CountLoanTypes returns the number of loan types, optionally only active ones.
func CountLoanTypes(ctx context.Context, db *gorm.DB, activeOnly bool) (int64, error) {
	var n int64
	q := db.WithContext(ctx).Model(&domain.LoanType{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Count(&n).Error
	return n, err
}
