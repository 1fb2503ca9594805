// Package handlers implements the HTTP endpoints of the loan comparison site.
//
// Public pages are served as JSON page models at the same paths the site
// uses for its HTML pages (/, /Loans, /vam/{slug}, /Blog, ...), so the visit
// recorder sees the real page paths. Handlers stay transport-thin: parse and
// validate input, call a service, map service errors to the error envelope.
package handlers

import (
	"context"
	"io"
	"time"

	"github.com/vamgard/vamgard-backend/internal/auth"
	"github.com/vamgard/vamgard-backend/internal/domain"
	"github.com/vamgard/vamgard-backend/internal/repo"
	"github.com/vamgard/vamgard-backend/internal/services"
)

// LoanService serves the loan catalogue pages.
type LoanService interface {
	Home(ctx context.Context) (*services.HomePage, error)
	List(ctx context.Context, f repo.LoanFilter) (*services.LoanListing, error)
	ListStats(ctx context.Context, f repo.LoanFilter) (int64, *time.Time, error)
	Detail(ctx context.Context, slug, clientIP string) (*services.LoanDetail, error)
	ByType(ctx context.Context, slug string) (*services.LoanTypePage, error)
}

// BankService serves the bank pages.
type BankService interface {
	List(ctx context.Context) ([]domain.Bank, error)
	Detail(ctx context.Context, slug string) (*services.BankPage, error)
}

// BranchService finds bank branches on the map.
type BranchService interface {
	Nearby(ctx context.Context, slug string, lat, lng float64) ([]services.Branch, error)
}

// BlogService serves the blog pages.
type BlogService interface {
	List(ctx context.Context, page int, category string) (*services.BlogListing, error)
	Stats(ctx context.Context, category string) (int64, *time.Time, error)
	Detail(ctx context.Context, slug, clientIP string) (*services.BlogDetail, error)
}

// NewsletterService handles sign-ups.
type NewsletterService interface {
	Subscribe(ctx context.Context, email, name, clientIP string) (*services.SubscribeResult, error)
}

// SitemapService renders sitemap.xml.
type SitemapService interface {
	Build(ctx context.Context) ([]byte, error)
}

// AdminService backs the admin area.
type AdminService interface {
	Authenticate(ctx context.Context, username, password string) (*domain.AdminUser, error)
	ChangePassword(ctx context.Context, username, current, next, confirm string) error
	Dashboard(ctx context.Context) (*services.Dashboard, error)
	Subscribers(ctx context.Context) ([]domain.NewsletterSubscriber, error)
	DeleteSubscriber(ctx context.Context, id uint) error
	ExportSubscribersCSV(ctx context.Context, w io.Writer) error
}

// ContentService edits the catalogue and the blog from the admin area.
type ContentService interface {
	Banks(ctx context.Context) ([]domain.Bank, error)
	Bank(ctx context.Context, id uint) (*domain.Bank, error)
	CreateBank(ctx context.Context, b *domain.Bank) error
	UpdateBank(ctx context.Context, id uint, b *domain.Bank) error
	DeleteBank(ctx context.Context, id uint) error

	LoanTypes(ctx context.Context) ([]domain.LoanType, error)
	LoanType(ctx context.Context, id uint) (*domain.LoanType, error)
	CreateLoanType(ctx context.Context, lt *domain.LoanType) error
	UpdateLoanType(ctx context.Context, id uint, lt *domain.LoanType) error
	DeleteLoanType(ctx context.Context, id uint) error

	Loans(ctx context.Context) ([]domain.Loan, error)
	Loan(ctx context.Context, id uint) (*domain.Loan, error)
	CreateLoan(ctx context.Context, l *domain.Loan) error
	UpdateLoan(ctx context.Context, id uint, l *domain.Loan) error
	DeleteLoan(ctx context.Context, id uint) error

	Posts(ctx context.Context) ([]domain.BlogPost, error)
	Post(ctx context.Context, id uint) (*domain.BlogPost, error)
	CreatePost(ctx context.Context, p *domain.BlogPost) error
	UpdatePost(ctx context.Context, id uint, p *domain.BlogPost) error
	DeletePost(ctx context.Context, id uint) error
}

// Services bundles the handler dependencies.
type Services struct {
	Loans      LoanService
	Banks      BankService
	Branches   BranchService
	Blog       BlogService
	Newsletter NewsletterService
	Sitemap    SitemapService
	Admin      AdminService
	Content    ContentService
}

// DefaultCookieName names the admin session cookie when none is configured.
const DefaultCookieName = "vamgard_admin"

// SessionCookie describes the admin session cookie.
type SessionCookie struct {
	Sessions *auth.Sessions
	Name     string
	Secure   bool
}

// Handlers groups every endpoint.
type Handlers struct {
	svc    Services
	cookie SessionCookie
}

// New returns Handlers bound to svc and the admin cookie settings.
func New(svc Services, cookie SessionCookie) *Handlers {
	if cookie.Name == "" {
		cookie.Name = DefaultCookieName
	}
	return &Handlers{svc: svc, cookie: cookie}
}
