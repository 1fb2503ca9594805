// Package services – LoanService
//
// LoanService serves the public loan catalogue: the home page aggregates, the
// filtered loan listing, loan detail pages with deduplicated view counting,
// and per-type listings.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/vamgard/vamgard-backend/internal/domain"
	"github.com/vamgard/vamgard-backend/internal/repo"
	"github.com/vamgard/vamgard-backend/internal/utils"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LoanPathPrefix is the public URL prefix of loan detail pages.
const LoanPathPrefix = "/vam/"

// LoanPath returns the canonical detail path for a loan slug.
func LoanPath(slug string) string { return LoanPathPrefix + slug }

// HomePage is everything the landing page shows.
type HomePage struct {
	Featured       []domain.Loan     `json:"featured_loans"`
	Hot            []domain.Loan     `json:"hot_loans"`
	Latest         []domain.Loan     `json:"latest_loans"`
	Bubble         []domain.Loan     `json:"bubble_loans"`
	Banks          []domain.Bank     `json:"banks"`
	LoanTypes      []domain.LoanType `json:"loan_types"`
	TotalLoans     int64             `json:"total_loans"`
	TotalBanks     int64             `json:"total_banks"`
	TotalLoanTypes int64             `json:"total_loan_types"`
}

// LoanListing is the filtered /Loans page.
type LoanListing struct {
	Loans     []domain.Loan     `json:"loans"`
	Banks     []domain.Bank     `json:"banks"`
	LoanTypes []domain.LoanType `json:"loan_types"`
	Filter    repo.LoanFilter   `json:"filter"`
}

// LoanDetail is a loan page plus its neighbours.
type LoanDetail struct {
	Loan            *domain.Loan      `json:"loan"`
	ViewCounted     bool              `json:"view_counted"`
	RelatedLoans    []domain.Loan     `json:"related_loans"`
	SameBankLoans   []domain.Loan     `json:"same_bank_loans"`
	RelatedArticles []domain.BlogPost `json:"related_articles"`
}

// LoanTypePage lists the active loans of one loan type.
type LoanTypePage struct {
	LoanType *domain.LoanType `json:"loan_type"`
	Loans    []domain.Loan    `json:"loans"`
}

// LoanService provides the public loan pages.
type LoanService struct {
	DB    *gorm.DB
	Views ViewGate

	HomeLimit     int // featured, hot and latest
	BubbleLimit   int
	RelatedLimit  int // related-by-type and same-bank
	ArticlesLimit int

	policy *bluemonday.Policy
}

// NewLoanService constructs a LoanService with the site's list sizes.
func NewLoanService(db *gorm.DB, views ViewGate) *LoanService {
	return &LoanService{
		DB:            db,
		Views:         views,
		HomeLimit:     6,
		BubbleLimit:   12,
		RelatedLimit:  4,
		ArticlesLimit: 5,
		policy:        bluemonday.UGCPolicy(),
	}
}

// sanitizeRichText cleans the admin-authored HTML fields of l in place.
func (s *LoanService) sanitizeRichText(l *domain.Loan) {
	if s.policy == nil {
		s.policy = bluemonday.UGCPolicy()
	}
	for _, f := range []*string{l.FullDescription, l.Requirements} {
		if f != nil {
			*f = s.policy.Sanitize(*f)
		}
	}
}

// Home gathers the landing page lists and totals.
func (s *LoanService) Home(ctx context.Context) (*HomePage, error) {
	tr := otel.Tracer("services/LoanService")
	ctx, span := tr.Start(ctx, "Home")
	defer span.End()

	var (
		p   HomePage
		err error
	)
	if p.Featured, err = repo.FeaturedLoans(ctx, s.DB, s.HomeLimit); err != nil {
		return nil, err
	}
	if p.Hot, err = repo.HotLoans(ctx, s.DB, s.HomeLimit); err != nil {
		return nil, err
	}
	if p.Latest, err = repo.LatestLoans(ctx, s.DB, s.HomeLimit); err != nil {
		return nil, err
	}
	if p.Bubble, err = repo.BubbleLoans(ctx, s.DB, s.BubbleLimit); err != nil {
		return nil, err
	}
	if p.Banks, err = repo.ListActiveBanks(ctx, s.DB, true); err != nil {
		return nil, err
	}
	if p.LoanTypes, err = repo.ListActiveLoanTypes(ctx, s.DB); err != nil {
		return nil, err
	}
	if p.TotalLoans, err = repo.CountLoans(ctx, s.DB, true); err != nil {
		return nil, err
	}
	if p.TotalBanks, err = repo.CountBanks(ctx, s.DB, true); err != nil {
		return nil, err
	}
	if p.TotalLoanTypes, err = repo.CountLoanTypes(ctx, s.DB, true); err != nil {
		return nil, err
	}
	return &p, nil
}

// normalizeFilter trims the filter values and normalizes the free-text query.
func normalizeFilter(f repo.LoanFilter) repo.LoanFilter {
	return repo.LoanFilter{
		BankSlug: strings.TrimSpace(f.BankSlug),
		TypeSlug: strings.TrimSpace(f.TypeSlug),
		Query:    utils.NormalizeText(f.Query),
	}
}

// List returns active loans matching f with the bank and type filter options.
func (s *LoanService) List(ctx context.Context, f repo.LoanFilter) (*LoanListing, error) {
	f = normalizeFilter(f)
	tr := otel.Tracer("services/LoanService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("filter.bank", f.BankSlug),
			attribute.String("filter.type", f.TypeSlug),
			attribute.String("filter.q", f.Query),
		),
	)
	defer span.End()

	loans, err := repo.ListActiveLoans(ctx, s.DB, f)
	if err != nil {
		return nil, err
	}
	banks, err := repo.ListActiveBanks(ctx, s.DB, false)
	if err != nil {
		return nil, err
	}
	types, err := repo.ListActiveLoanTypes(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	return &LoanListing{Loans: loans, Banks: banks, LoanTypes: types, Filter: f}, nil
}

// ListStats returns the row count and newest update of the listing for f,
// used to build a weak ETag.
func (s *LoanService) ListStats(ctx context.Context, f repo.LoanFilter) (int64, *time.Time, error) {
	return repo.LoansStats(ctx, s.DB, normalizeFilter(f))
}

// Detail loads an active loan by slug, counts the view when the visitor has
// not seen /vam/{slug} within the dedup window, and gathers related content.
func (s *LoanService) Detail(ctx context.Context, slug, clientIP string) (*LoanDetail, error) {
	tr := otel.Tracer("services/LoanService")
	ctx, span := tr.Start(ctx, "Detail",
		trace.WithAttributes(attribute.String("loan.slug", slug)),
	)
	defer span.End()

	loan, err := repo.GetActiveLoanBySlug(ctx, s.DB, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}

	d := &LoanDetail{Loan: loan}
	d.ViewCounted = countView(ctx, s.Views, "loan", LoanPath(slug), clientIP, func(ctx context.Context) error {
		return repo.IncrementLoanViewCount(ctx, s.DB, loan.ID)
	})
	if d.ViewCounted {
		loan.ViewCount++
	}
	span.SetAttributes(attribute.Bool("view.counted", d.ViewCounted))
	s.sanitizeRichText(loan)

	if d.RelatedLoans, err = repo.RelatedLoansByType(ctx, s.DB, loan, s.RelatedLimit); err != nil {
		return nil, err
	}
	if d.SameBankLoans, err = repo.SameBankLoans(ctx, s.DB, loan, s.RelatedLimit); err != nil {
		return nil, err
	}
	if d.RelatedArticles, err = s.relatedArticles(ctx, loan); err != nil {
		return nil, err
	}
	return d, nil
}

// relatedArticles prefers the loan's explicit article list and falls back to
// posts that point at the loan.
func (s *LoanService) relatedArticles(ctx context.Context, loan *domain.Loan) ([]domain.BlogPost, error) {
	if loan.RelatedArticleIDs != nil {
		if ids := utils.ParseIDList(*loan.RelatedArticleIDs); len(ids) > 0 {
			posts, err := repo.PublishedPostsByIDs(ctx, s.DB, ids)
			if err != nil {
				return nil, err
			}
			if len(posts) > 0 {
				return posts, nil
			}
		}
	}
	return repo.PostsRelatedToLoan(ctx, s.DB, loan.ID, s.ArticlesLimit)
}

// ByType lists the active loans of an active loan type.
func (s *LoanService) ByType(ctx context.Context, slug string) (*LoanTypePage, error) {
	tr := otel.Tracer("services/LoanService")
	ctx, span := tr.Start(ctx, "ByType",
		trace.WithAttributes(attribute.String("loan_type.slug", slug)),
	)
	defer span.End()

	lt, err := repo.GetActiveLoanTypeBySlug(ctx, s.DB, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanTypeNotFound
		}
		return nil, err
	}
	loans, err := repo.ListActiveLoansByType(ctx, s.DB, lt.ID)
	if err != nil {
		return nil, err
	}
	return &LoanTypePage{LoanType: lt, Loans: loans}, nil
}
