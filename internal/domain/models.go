// Package domain defines the persistence models for the loan catalogue:
// banks, loan types, loans, blog posts and newsletter subscribers. These
// types are mapped with GORM and shared by the repository, service and
// HTTP layers.
package domain

import "time"

// Bank is a financial institution (bank or credit institution) offering loans.
//
// Fields:
//   - Slug: URL key used by /bank/{slug}; unique.
//   - BankType: "bank" or "credit" (credit institutions), free-form otherwise.
//   - ParentBankID: optional parent for subsidiaries.
//   - BranchesJSON: admin-maintained branch list as raw JSON.
//   - Loans: populated only when explicitly preloaded.
type Bank struct {
	ID               uint      `json:"id"                gorm:"primaryKey"`
	Name             string    `json:"name"              gorm:"size:100;not null"`
	Slug             string    `json:"slug"              gorm:"size:200;not null;uniqueIndex"`
	LogoURL          *string   `json:"logo_url,omitempty" gorm:"size:500"`
	Website          *string   `json:"website,omitempty" gorm:"size:300"`
	Description      *string   `json:"description,omitempty" gorm:"type:text"`
	History          *string   `json:"history,omitempty" gorm:"type:text"`
	FoundedYear      *int      `json:"founded_year,omitempty"`
	BranchCount      *int      `json:"branch_count,omitempty"`
	HeadquartersCity *string   `json:"headquarters_city,omitempty" gorm:"size:100"`
	Latitude         *float64  `json:"latitude,omitempty"`
	Longitude        *float64  `json:"longitude,omitempty"`
	BankType         string    `json:"bank_type"         gorm:"size:20;not null;default:'bank'"`
	ParentBankID     *uint     `json:"parent_bank_id,omitempty"`
	OwnershipType    *string   `json:"ownership_type,omitempty" gorm:"size:100"`
	IsActive         bool      `json:"is_active"         gorm:"not null;index"`
	DisplayOrder     int       `json:"display_order"     gorm:"not null"`
	Address          *string   `json:"address,omitempty" gorm:"size:500"`
	PhoneNumber      *string   `json:"phone_number,omitempty" gorm:"size:20"`
	Email            *string   `json:"email,omitempty"   gorm:"size:100"`
	BranchesJSON     *string   `json:"branches_json,omitempty" gorm:"column:branches_json;type:text"`
	MetaTitle        *string   `json:"meta_title,omitempty" gorm:"size:200"`
	MetaDescription  *string   `json:"meta_description,omitempty" gorm:"size:500"`
	CreatedAt        time.Time `json:"created_at"`

	// Loans are cascade-deleted with their bank.
	Loans []Loan `json:"loans,omitempty" gorm:"foreignKey:BankID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Bank.
func (Bank) TableName() string { return "banks" }

// LoanType groups loans by purpose (marriage, housing, car, ...).
type LoanType struct {
	ID           uint    `json:"id"            gorm:"primaryKey"`
	Name         string  `json:"name"          gorm:"size:150;not null"`
	Slug         string  `json:"slug"          gorm:"size:200;not null;uniqueIndex"`
	Description  *string `json:"description,omitempty" gorm:"type:text"`
	IconClass    *string `json:"icon_class,omitempty" gorm:"size:100"`
	IsActive     bool    `json:"is_active"     gorm:"not null;index"`
	DisplayOrder int     `json:"display_order" gorm:"not null"`

	Loans []Loan `json:"loans,omitempty" gorm:"foreignKey:LoanTypeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for LoanType.
func (LoanType) TableName() string { return "loan_types" }

// Loan is a single loan product offered by a bank.
//
// ViewCount is the deduplicated page-view counter of /vam/{slug}; it is only
// incremented by the loan detail flow and admin edits leave it unchanged.
// RelatedArticleIDs is a comma separated list of BlogPost ids.
type Loan struct {
	ID                 uint      `json:"id"                 gorm:"primaryKey"`
	Title              string    `json:"title"              gorm:"size:250;not null"`
	Slug               string    `json:"slug"               gorm:"size:300;not null;uniqueIndex"`
	ShortDescription   *string   `json:"short_description,omitempty" gorm:"size:500"`
	FullDescription    *string   `json:"full_description,omitempty" gorm:"type:text"`
	InterestRate       *float64  `json:"interest_rate,omitempty"`
	MinAmount          *int64    `json:"min_amount,omitempty"`
	MaxAmount          *int64    `json:"max_amount,omitempty"`
	RepaymentMonths    *int      `json:"repayment_months,omitempty"`
	Requirements       *string   `json:"requirements,omitempty" gorm:"type:text"`
	IsActive           bool      `json:"is_active"          gorm:"not null;index"`
	IsFeatured         bool      `json:"is_featured"        gorm:"not null;index"`
	BankID             uint      `json:"bank_id"            gorm:"not null;index:idx_loan_bank_type,priority:1"`
	LoanTypeID         uint      `json:"loan_type_id"       gorm:"not null;index:idx_loan_bank_type,priority:2"`
	ExternalURL        *string   `json:"external_url,omitempty" gorm:"size:500"`
	ViewCount          int       `json:"view_count"         gorm:"not null;default:0"`
	MetaTitle          *string   `json:"meta_title,omitempty" gorm:"size:200"`
	MetaDescription    *string   `json:"meta_description,omitempty" gorm:"size:500"`
	MetaKeywords       *string   `json:"meta_keywords,omitempty" gorm:"size:500"`
	AnalysisContent    *string   `json:"analysis_content,omitempty" gorm:"type:text"`
	HasCalculator      bool      `json:"has_calculator"     gorm:"not null"`
	CalcMinMonths      *int      `json:"calc_min_months,omitempty"`
	CalcMaxMonths      *int      `json:"calc_max_months,omitempty"`
	CalcMonthStep      *int      `json:"calc_month_step,omitempty"`
	CalcAdjustableRate bool      `json:"calc_adjustable_rate" gorm:"not null"`
	CalcMinRate        *float64  `json:"calc_min_rate,omitempty"`
	CalcMaxRate        *float64  `json:"calc_max_rate,omitempty"`
	RelatedArticleIDs  *string   `json:"related_article_ids,omitempty" gorm:"column:related_article_ids;size:500"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Bank     *Bank     `json:"bank,omitempty"      gorm:"foreignKey:BankID"`
	LoanType *LoanType `json:"loan_type,omitempty" gorm:"foreignKey:LoanTypeID"`
}

// TableName returns the database table name for Loan.
func (Loan) TableName() string { return "loans" }

// BlogPost is an editorial article. Only published posts are visible on the
// public site. RelatedLoanIDs is a comma separated list of Loan ids.
type BlogPost struct {
	ID              uint       `json:"id"          gorm:"primaryKey"`
	Title           string     `json:"title"       gorm:"size:300;not null"`
	Slug            string     `json:"slug"        gorm:"size:400;not null;uniqueIndex"`
	Summary         *string    `json:"summary,omitempty" gorm:"size:500"`
	Content         string     `json:"content"     gorm:"type:text;not null"`
	CoverImageURL   *string    `json:"cover_image_url,omitempty" gorm:"size:500"`
	MetaTitle       *string    `json:"meta_title,omitempty" gorm:"size:200"`
	MetaDescription *string    `json:"meta_description,omitempty" gorm:"size:500"`
	MetaKeywords    *string    `json:"meta_keywords,omitempty" gorm:"size:500"`
	IsPublished     bool       `json:"is_published" gorm:"not null;index"`
	ViewCount       int        `json:"view_count"  gorm:"not null;default:0"`
	Category        *string    `json:"category,omitempty" gorm:"size:200"`
	Tags            *string    `json:"tags,omitempty" gorm:"size:500"`
	RelatedBankID   *uint      `json:"related_bank_id,omitempty"`
	RelatedLoanID   *uint      `json:"related_loan_id,omitempty"`
	RelatedLoanIDs  *string    `json:"related_loan_ids,omitempty" gorm:"column:related_loan_ids;size:500"`
	CreatedAt       time.Time  `json:"created_at"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName returns the database table name for BlogPost.
func (BlogPost) TableName() string { return "blog_posts" }

// NewsletterSubscriber is a newsletter sign-up. Email is stored trimmed and
// lower-cased and is unique.
type NewsletterSubscriber struct {
	ID           uint      `json:"id"            gorm:"primaryKey"`
	Email        string    `json:"email"         gorm:"size:250;not null;uniqueIndex"`
	Name         *string   `json:"name,omitempty" gorm:"size:100"`
	IsActive     bool      `json:"is_active"     gorm:"not null"`
	SubscribedAt time.Time `json:"subscribed_at" gorm:"not null"`
	IPAddress    *string   `json:"ip_address,omitempty" gorm:"size:50"`
}

// TableName returns the database table name for NewsletterSubscriber.
func (NewsletterSubscriber) TableName() string { return "newsletter_subscribers" }
