package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vamgard/vamgard-backend/internal/domain"
	"github.com/vamgard/vamgard-backend/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One connection so the foreign_keys pragma covers every query.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

type fixture struct {
	melli, old *domain.Bank
	marriage   *domain.LoanType
	loan       *domain.Loan
	sibling    *domain.Loan
	post       *domain.BlogPost
}

func seed(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	var f fixture
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	f.melli = &domain.Bank{Name: "بانک ملی ایران", Slug: "bank-melli", IsActive: true, DisplayOrder: 1, LogoURL: strPtr("/l.png")}
	f.old = &domain.Bank{Name: "قرض‌الحسنه مهر", Slug: "mehr", IsActive: false}
	must(db.Create(f.melli).Error)
	must(db.Create(f.old).Error)

	f.marriage = &domain.LoanType{Name: "وام ازدواج", Slug: "ezdevaj", IsActive: true, DisplayOrder: 1}
	must(db.Create(f.marriage).Error)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.loan = &domain.Loan{Title: "وام ازدواج ملی", Slug: "vam-ezdevaj-melli", BankID: f.melli.ID, LoanTypeID: f.marriage.ID,
		IsActive: true, IsFeatured: true, ViewCount: 10, CreatedAt: base, UpdatedAt: base}
	f.sibling = &domain.Loan{Title: "وام ازدواج دوم", Slug: "vam-ezdevaj-2", BankID: f.melli.ID, LoanTypeID: f.marriage.ID,
		IsActive: true, CreatedAt: base.AddDate(0, 0, 1), UpdatedAt: base.AddDate(0, 0, 1)}
	must(db.Create(f.loan).Error)
	must(db.Create(f.sibling).Error)

	pub := base.AddDate(0, 1, 0)
	f.post = &domain.BlogPost{Title: "راهنمای وام ازدواج", Slug: "rahnama", Content: `<p>متن</p><script>alert(1)</script>`,
		IsPublished: true, PublishedAt: &pub, Category: strPtr("آموزش"), RelatedLoanID: &f.loan.ID, UpdatedAt: pub}
	must(db.Create(f.post).Error)
	return f
}

// fakeGate answers ShouldCountView from a fixed result and records calls.
type fakeGate struct {
	mu    sync.Mutex
	count bool
	err   error
	calls []string
}

func (g *fakeGate) ShouldCountView(_ context.Context, path, ip string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, path+"|"+ip)
	return g.count, g.err
}
