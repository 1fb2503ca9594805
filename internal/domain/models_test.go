package domain

import (
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:domain_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(&Bank{}, &LoanType{}, &Loan{}, &BlogPost{}, &NewsletterSubscriber{}, &PageVisit{}, &AdminUser{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(Bank{}).TableName():                 "banks",
		(LoanType{}).TableName():             "loan_types",
		(Loan{}).TableName():                 "loans",
		(BlogPost{}).TableName():             "blog_posts",
		(NewsletterSubscriber{}).TableName(): "newsletter_subscribers",
		(PageVisit{}).TableName():            "page_visits",
		(AdminUser{}).TableName():            "admin_users",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestMigrations_Indexes(t *testing.T) {
	db := newDomainDB(t)
	m := db.Migrator()

	if !m.HasIndex(&PageVisit{}, "idx_visit_dedup") {
		t.Fatalf("expected composite index idx_visit_dedup on page_visits")
	}
	if !m.HasIndex(&Loan{}, "idx_loan_bank_type") {
		t.Fatalf("expected index idx_loan_bank_type on loans")
	}
	for _, tbl := range []any{&Bank{}, &LoanType{}, &Loan{}, &BlogPost{}} {
		if !m.HasColumn(tbl, "slug") {
			t.Fatalf("expected slug column on %T", tbl)
		}
	}
}

func TestUniqueSlugAndEmail(t *testing.T) {
	db := newDomainDB(t)

	if err := db.Create(&Bank{Name: "بانک ملی", Slug: "bank-melli", IsActive: true}).Error; err != nil {
		t.Fatalf("insert bank: %v", err)
	}
	if err := db.Create(&Bank{Name: "dup", Slug: "bank-melli"}).Error; err == nil {
		t.Fatalf("expected unique violation on duplicate bank slug")
	}

	now := time.Now().UTC()
	if err := db.Create(&NewsletterSubscriber{Email: "a@b.ir", IsActive: true, SubscribedAt: now}).Error; err != nil {
		t.Fatalf("insert subscriber: %v", err)
	}
	if err := db.Create(&NewsletterSubscriber{Email: "a@b.ir", SubscribedAt: now}).Error; err == nil {
		t.Fatalf("expected unique violation on duplicate subscriber email")
	}
}

func TestLoanCascadeOnBankDelete(t *testing.T) {
	db := newDomainDB(t)

	bank := &Bank{Name: "بانک ملت", Slug: "bank-mellat", IsActive: true}
	lt := &LoanType{Name: "ازدواج", Slug: "ezdevaj", IsActive: true}
	if err := db.Create(bank).Error; err != nil {
		t.Fatalf("insert bank: %v", err)
	}
	if err := db.Create(lt).Error; err != nil {
		t.Fatalf("insert type: %v", err)
	}
	loan := &Loan{Title: "وام ازدواج", Slug: "vam-ezdevaj-mellat", BankID: bank.ID, LoanTypeID: lt.ID, IsActive: true}
	if err := db.Create(loan).Error; err != nil {
		t.Fatalf("insert loan: %v", err)
	}
	if loan.ViewCount != 0 {
		t.Fatalf("new loan view_count = %d; want 0", loan.ViewCount)
	}

	if err := db.Delete(&Bank{}, bank.ID).Error; err != nil {
		t.Fatalf("delete bank: %v", err)
	}
	var cnt int64
	if err := db.Model(&Loan{}).Where("bank_id = ?", bank.ID).Count(&cnt).Error; err != nil {
		t.Fatalf("count loans: %v", err)
	}
	if cnt != 0 {
		t.Fatalf("expected loans to cascade-delete with bank, got %d", cnt)
	}
}

func TestPageVisit_NullableColumns(t *testing.T) {
	db := newDomainDB(t)

	v := &PageVisit{Path: "/", VisitedAt: time.Now().UTC()}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("insert visit without ip/ua: %v", err)
	}
	var got PageVisit
	if err := db.First(&got, v.ID).Error; err != nil {
		t.Fatalf("load visit: %v", err)
	}
	if got.IPAddress != nil || got.UserAgent != nil {
		t.Fatalf("expected nil ip/ua, got %+v", got)
	}
}

func TestLoanCascadeOnLoanTypeDelete(t *testing.T) {
	db := newDomainDB(t)

	bank := &Bank{Name: "بانک ملت", Slug: "bank-mellat", IsActive: true}
	lt := &LoanType{Name: "خودرو", Slug: "khodro", IsActive: true}
	if err := db.Create(bank).Error; err != nil {
		t.Fatalf("insert bank: %v", err)
	}
	if err := db.Create(lt).Error; err != nil {
		t.Fatalf("insert type: %v", err)
	}
	if err := db.Create(&Loan{Title: "وام خودرو", Slug: "vam-khodro", BankID: bank.ID, LoanTypeID: lt.ID}).Error; err != nil {
		t.Fatalf("insert loan: %v", err)
	}

	var ddl string
	db.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = 'loans'").Scan(&ddl)
	if !strings.Contains(strings.ToUpper(ddl), "ON DELETE CASCADE") {
		t.Fatalf("loans DDL lacks ON DELETE CASCADE: %s", ddl)
	}

	if err := db.Delete(&LoanType{}, lt.ID).Error; err != nil {
		t.Fatalf("delete loan type: %v", err)
	}
	var cnt int64
	db.Model(&Loan{}).Where("loan_type_id = ?", lt.ID).Count(&cnt)
	if cnt != 0 {
		t.Fatalf("expected loans to cascade-delete with loan type, got %d", cnt)
	}
}
