package repo

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vamgard/vamgard-backend/internal/domain"
)

// newTestDB opens a private in-memory database. With migrate=true every site
// table is created.
func newTestDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if migrate {
		if err := AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func strPtr(s string) *string { return &s }

// catalog is a small seeded data set shared by the catalogue tests.
type catalog struct {
	melli, mellat *domain.Bank
	marriage, car *domain.LoanType
	loans         map[string]*domain.Loan
}

func seedCatalog(t *testing.T, db *gorm.DB) catalog {
	t.Helper()
	c := catalog{loans: map[string]*domain.Loan{}}

	c.melli = &domain.Bank{Name: "بانک ملی", Slug: "bank-melli", IsActive: true, DisplayOrder: 2, LogoURL: strPtr("/logos/melli.png")}
	c.mellat = &domain.Bank{Name: "بانک ملت", Slug: "bank-mellat", IsActive: true, DisplayOrder: 1}
	hidden := &domain.Bank{Name: "بانک قدیمی", Slug: "bank-old", IsActive: false, DisplayOrder: 0}
	for _, b := range []*domain.Bank{c.melli, c.mellat, hidden} {
		if err := db.Create(b).Error; err != nil {
			t.Fatalf("seed bank: %v", err)
		}
	}

	c.marriage = &domain.LoanType{Name: "وام ازدواج", Slug: "ezdevaj", IsActive: true, DisplayOrder: 1}
	c.car = &domain.LoanType{Name: "وام خودرو", Slug: "khodro", IsActive: true, DisplayOrder: 2}
	for _, lt := range []*domain.LoanType{c.marriage, c.car} {
		if err := db.Create(lt).Error; err != nil {
			t.Fatalf("seed loan type: %v", err)
		}
	}

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(slug, title string, b *domain.Bank, lt *domain.LoanType, active, featured bool, views int, day int) {
		l := &domain.Loan{
			Title: title, Slug: slug, BankID: b.ID, LoanTypeID: lt.ID,
			IsActive: active, IsFeatured: featured, ViewCount: views,
			ShortDescription: strPtr("توضیح " + title),
			CreatedAt:        base.AddDate(0, 0, day),
			UpdatedAt:        base.AddDate(0, 0, day),
		}
		if err := db.Create(l).Error; err != nil {
			t.Fatalf("seed loan %s: %v", slug, err)
		}
		c.loans[slug] = l
	}
	mk("vam-ezdevaj-melli", "وام ازدواج ملی", c.melli, c.marriage, true, true, 50, 1)
	mk("vam-ezdevaj-mellat", "وام ازدواج ملت", c.mellat, c.marriage, true, false, 90, 2)
	mk("vam-khodro-melli", "وام خودرو ملی", c.melli, c.car, true, false, 10, 3)
	mk("vam-khodro-mellat", "وام خودرو ملت", c.mellat, c.car, true, true, 5, 4)
	mk("vam-inactive", "وام غیرفعال", c.melli, c.car, false, true, 1000, 5)
	return c
}
