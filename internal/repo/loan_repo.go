// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Loan model.
//
// All functions are context-aware and accept a *gorm.DB handle. They follow
// the "thin repository" approach: no business logic, only persistence and
// query composition. Listing functions preload Bank and LoanType.
//
// Error semantics:
//   - Single-row lookups return gorm.ErrRecordNotFound (ErrNotFound) when the
//     loan is missing or inactive.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/vamgard/vamgard-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// LoanFilter narrows the public loan listing. Empty fields are ignored.
type LoanFilter struct {
	BankSlug string `json:"bank,omitempty"`
	TypeSlug string `json:"type,omitempty"`
	Query    string `json:"q,omitempty"` // substring of title or short description
}

// activeLoans is the base query for public listings.
func activeLoans(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).
		Model(&domain.Loan{}).
		Where("loans.is_active = ?", true)
}

func applyLoanFilter(ctx context.Context, db, q *gorm.DB, f LoanFilter) *gorm.DB {
	if s := strings.TrimSpace(f.BankSlug); s != "" {
		q = q.Where("loans.bank_id IN (?)", db.WithContext(ctx).
			Model(&domain.Bank{}).Select("id").Where("slug = ?", s))
	}
	if s := strings.TrimSpace(f.TypeSlug); s != "" {
		q = q.Where("loans.loan_type_id IN (?)", db.WithContext(ctx).
			Model(&domain.LoanType{}).Select("id").Where("slug = ?", s))
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + s + "%"
		q = q.Where("(loans.title LIKE ? OR loans.short_description LIKE ?)", like, like)
	}
	return q
}

// ListActiveLoans returns active loans matching f, featured first and then
// most recently updated.
func ListActiveLoans(ctx context.Context, db *gorm.DB, f LoanFilter) ([]domain.Loan, error) {
	var out []domain.Loan
	err := applyLoanFilter(ctx, db, activeLoans(ctx, db), f).
		Preload("Bank").Preload("LoanType").
		Order("loans.is_featured DESC").
		Order("loans.updated_at DESC").
		Find(&out).Error
	return out, err
}

// FeaturedLoans returns up to limit active featured loans, newest update first.
func FeaturedLoans(ctx context.Context, db *gorm.DB, limit int) ([]domain.Loan, error) {
	var out []domain.Loan
	err := activeLoans(ctx, db).
		Where("loans.is_featured = ?", true).
		Preload("Bank").Preload("LoanType").
		Order("loans.updated_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// HotLoans returns up to limit active loans ordered by view count.
func HotLoans(ctx context.Context, db *gorm.DB, limit int) ([]domain.Loan, error) {
	var out []domain.Loan
	err := activeLoans(ctx, db).
		Preload("Bank").Preload("LoanType").
		Order("loans.view_count DESC").
		Order("loans.updated_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// LatestLoans returns up to limit most recently created active loans.
func LatestLoans(ctx context.Context, db *gorm.DB, limit int) ([]domain.Loan, error) {
	var out []domain.Loan
	err := activeLoans(ctx, db).
		Preload("Bank").Preload("LoanType").
		Order("loans.created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// BubbleLoans returns up to limit popular active loans whose bank has a logo.
func BubbleLoans(ctx context.Context, db *gorm.DB, limit int) ([]domain.Loan, error) {
	var out []domain.Loan
	withLogo := db.WithContext(ctx).Model(&domain.Bank{}).Select("id").Where("logo_url IS NOT NULL")
	err := activeLoans(ctx, db).
		Where("loans.bank_id IN (?)", withLogo).
		Preload("Bank").Preload("LoanType").
		Order("loans.view_count DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetActiveLoanBySlug fetches an active loan with its bank and type, or
// ErrNotFound.
func GetActiveLoanBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Loan, error) {
	var l domain.Loan
	err := activeLoans(ctx, db).
		Where("loans.slug = ?", slug).
		Preload("Bank").Preload("LoanType").
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// IncrementLoanViewCount adds one to the loan's view counter in a single
// UPDATE. UpdatedAt is left untouched.
func IncrementLoanViewCount(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).
		Model(&domain.Loan{}).
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

// RelatedLoansByType returns other active loans of the same type.
func RelatedLoansByType(ctx context.Context, db *gorm.DB, l *domain.Loan, limit int) ([]domain.Loan, error) {
	var out []domain.Loan
	err := activeLoans(ctx, db).
		Where("loans.loan_type_id = ? AND loans.id <> ?", l.LoanTypeID, l.ID).
		Preload("Bank").
		Order("loans.id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// SameBankLoans returns other active loans of the same bank.
func SameBankLoans(ctx context.Context, db *gorm.DB, l *domain.Loan, limit int) ([]domain.Loan, error) {
	var out []domain.Loan
	err := activeLoans(ctx, db).
		Where("loans.bank_id = ? AND loans.id <> ?", l.BankID, l.ID).
		Preload("LoanType").
		Order("loans.id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListActiveLoansByType returns active loans of a loan type, featured first.
func ListActiveLoansByType(ctx context.Context, db *gorm.DB, loanTypeID uint) ([]domain.Loan, error) {
	var out []domain.Loan
	err := activeLoans(ctx, db).
		Where("loans.loan_type_id = ?", loanTypeID).
		Preload("Bank").Preload("LoanType").
		Order("loans.is_featured DESC").
		Order("loans.updated_at DESC").
		Find(&out).Error
	return out, err
}

// ListActiveLoansByBank returns active loans of a bank, featured first.
func ListActiveLoansByBank(ctx context.Context, db *gorm.DB, bankID uint) ([]domain.Loan, error) {
	var out []domain.Loan
	err := activeLoans(ctx, db).
		Where("loans.bank_id = ?", bankID).
		Preload("LoanType").
		Order("loans.is_featured DESC").
		Order("loans.updated_at DESC").
		Find(&out).Error
	return out, err
}

// CountLoans returns the number of loans, optionally only active ones.
func CountLoans(ctx context.Context, db *gorm.DB, activeOnly bool) (int64, error) {
	var n int64
	q := db.WithContext(ctx).Model(&domain.Loan{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Count(&n).Error
	return n, err
}

// RecentlyUpdatedLoans returns loans of any state, newest update first.
func RecentlyUpdatedLoans(ctx context.Context, db *gorm.DB, limit int) ([]domain.Loan, error) {
	var out []domain.Loan
	err := db.WithContext(ctx).
		Preload("Bank").Preload("LoanType").
		Order("updated_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
