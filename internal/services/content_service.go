// Package services – ContentService
//
// ContentService is the back-office editor of the catalogue and the blog:
// list, load, create, update and delete banks, loan types, loans and posts.
// A blank slug is derived from the name or title, and slugs stay unique per
// kind. Counters and creation times are owned by the server and survive
// every edit.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/vamgard/vamgard-backend/internal/domain"
	"github.com/vamgard/vamgard-backend/internal/repo"
	"github.com/vamgard/vamgard-backend/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Admin-facing validation messages.
const (
	msgBankNameRequired  = "نام بانک الزامی است"
	msgTypeNameRequired  = "نام نوع وام الزامی است"
	msgLoanTitleRequired = "عنوان وام الزامی است"
	msgPostTitleRequired = "عنوان الزامی است"
	msgContentRequired   = "محتوا الزامی است"
	msgBankRequired      = "انتخاب بانک الزامی است"
	msgLoanTypeRequired  = "انتخاب نوع وام الزامی است"
	msgTooLong           = "طول مقدار بیش از حد مجاز است"
	msgSlugRequired      = "اسلاگ الزامی است"
)

// ContentService manages catalogue and blog rows for the admin area.
type ContentService struct {
	DB *gorm.DB

	now func() time.Time
}

// NewContentService constructs a ContentService.
func NewContentService(db *gorm.DB) *ContentService {
	return &ContentService{DB: db, now: time.Now}
}

func (s *ContentService) start(ctx context.Context, op string, id uint) (context.Context, trace.Span) {
	return otel.Tracer("services/ContentService").Start(ctx, op,
		trace.WithAttributes(attribute.Int64("content.id", int64(id))),
	)
}

func (s *ContentService) clock() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

// ---- banks ----

// Banks lists every bank by display order.
func (s *ContentService) Banks(ctx context.Context) ([]domain.Bank, error) {
	ctx, span := s.start(ctx, "Banks", 0)
	defer span.End()
	return repo.ListAllBanks(ctx, s.DB)
}

// Bank loads one bank by id.
func (s *ContentService) Bank(ctx context.Context, id uint) (*domain.Bank, error) {
	ctx, span := s.start(ctx, "Bank", id)
	defer span.End()
	return load[domain.Bank](ctx, s.DB, id)
}

// CreateBank validates and inserts b.
func (s *ContentService) CreateBank(ctx context.Context, b *domain.Bank) error {
	ctx, span := s.start(ctx, "CreateBank", 0)
	defer span.End()

	b.ID, b.Loans = 0, nil
	if err := s.checkBank(ctx, b, 0); err != nil {
		return err
	}
	b.CreatedAt = s.clock()
	return repo.CreateContent(ctx, s.DB, b)
}

// UpdateBank replaces the editable fields of bank id with b.
func (s *ContentService) UpdateBank(ctx context.Context, id uint, b *domain.Bank) error {
	ctx, span := s.start(ctx, "UpdateBank", id)
	defer span.End()

	existing, err := load[domain.Bank](ctx, s.DB, id)
	if err != nil {
		return err
	}
	if err := s.checkBank(ctx, b, id); err != nil {
		return err
	}
	b.ID, b.CreatedAt, b.Loans = existing.ID, existing.CreatedAt, nil
	return repo.SaveContent(ctx, s.DB, b)
}

// DeleteBank removes a bank together with its loans.
func (s *ContentService) DeleteBank(ctx context.Context, id uint) error {
	ctx, span := s.start(ctx, "DeleteBank", id)
	defer span.End()
	return remove[domain.Bank](ctx, s.DB, id)
}

func (s *ContentService) checkBank(ctx context.Context, b *domain.Bank, id uint) error {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return &ValidationError{Field: "name", Message: msgBankNameRequired}
	}
	if utf8.RuneCountInString(b.Name) > 100 {
		return &ValidationError{Field: "name", Message: msgTooLong}
	}
	if b.BankType = strings.TrimSpace(b.BankType); b.BankType == "" {
		b.BankType = "bank"
	}
	if b.ParentBankID != nil && *b.ParentBankID == id && id != 0 {
		b.ParentBankID = nil
	}
	return ensureSlug[domain.Bank](ctx, s.DB, &b.Slug, b.Name, 200, id)
}

// ---- loan types ----

// LoanTypes lists every loan type by display order.
func (s *ContentService) LoanTypes(ctx context.Context) ([]domain.LoanType, error) {
	ctx, span := s.start(ctx, "LoanTypes", 0)
	defer span.End()
	return repo.ListAllLoanTypes(ctx, s.DB)
}

// LoanType loads one loan type by id.
func (s *ContentService) LoanType(ctx context.Context, id uint) (*domain.LoanType, error) {
	ctx, span := s.start(ctx, "LoanType", id)
	defer span.End()
	return load[domain.LoanType](ctx, s.DB, id)
}

// CreateLoanType validates and inserts lt.
func (s *ContentService) CreateLoanType(ctx context.Context, lt *domain.LoanType) error {
	ctx, span := s.start(ctx, "CreateLoanType", 0)
	defer span.End()

	lt.ID, lt.Loans = 0, nil
	if err := s.checkLoanType(ctx, lt, 0); err != nil {
		return err
	}
	return repo.CreateContent(ctx, s.DB, lt)
}

// UpdateLoanType replaces the editable fields of loan type id with lt.
func (s *ContentService) UpdateLoanType(ctx context.Context, id uint, lt *domain.LoanType) error {
	ctx, span := s.start(ctx, "UpdateLoanType", id)
	defer span.End()

	if _, err := load[domain.LoanType](ctx, s.DB, id); err != nil {
		return err
	}
	if err := s.checkLoanType(ctx, lt, id); err != nil {
		return err
	}
	lt.ID, lt.Loans = id, nil
	return repo.SaveContent(ctx, s.DB, lt)
}

// DeleteLoanType removes a loan type together with its loans.
func (s *ContentService) DeleteLoanType(ctx context.Context, id uint) error {
	ctx, span := s.start(ctx, "DeleteLoanType", id)
	defer span.End()
	return remove[domain.LoanType](ctx, s.DB, id)
}

func (s *ContentService) checkLoanType(ctx context.Context, lt *domain.LoanType, id uint) error {
	lt.Name = strings.TrimSpace(lt.Name)
	if lt.Name == "" {
		return &ValidationError{Field: "name", Message: msgTypeNameRequired}
	}
	if utf8.RuneCountInString(lt.Name) > 150 {
		return &ValidationError{Field: "name", Message: msgTooLong}
	}
	return ensureSlug[domain.LoanType](ctx, s.DB, &lt.Slug, lt.Name, 200, id)
}

// ---- loans ----

// Loans lists every loan, active or not, most recently updated first.
func (s *ContentService) Loans(ctx context.Context) ([]domain.Loan, error) {
	ctx, span := s.start(ctx, "Loans", 0)
	defer span.End()
	return repo.ListAllLoans(ctx, s.DB)
}

// Loan loads one loan by id.
func (s *ContentService) Loan(ctx context.Context, id uint) (*domain.Loan, error) {
	ctx, span := s.start(ctx, "Loan", id)
	defer span.End()
	return load[domain.Loan](ctx, s.DB, id)
}

// CreateLoan validates and inserts l with a zero view count.
func (s *ContentService) CreateLoan(ctx context.Context, l *domain.Loan) error {
	ctx, span := s.start(ctx, "CreateLoan", 0)
	defer span.End()

	l.ID, l.Bank, l.LoanType, l.ViewCount = 0, nil, nil, 0
	if err := s.checkLoan(ctx, l, 0); err != nil {
		return err
	}
	now := s.clock()
	l.CreatedAt, l.UpdatedAt = now, now
	return repo.CreateContent(ctx, s.DB, l)
}

// UpdateLoan replaces the editable fields of loan id with l. The view count
// and creation time are kept.
func (s *ContentService) UpdateLoan(ctx context.Context, id uint, l *domain.Loan) error {
	ctx, span := s.start(ctx, "UpdateLoan", id)
	defer span.End()

	existing, err := load[domain.Loan](ctx, s.DB, id)
	if err != nil {
		return err
	}
	if err := s.checkLoan(ctx, l, id); err != nil {
		return err
	}
	l.ID, l.Bank, l.LoanType = existing.ID, nil, nil
	l.ViewCount, l.CreatedAt = existing.ViewCount, existing.CreatedAt
	l.UpdatedAt = s.clock()
	return repo.SaveContent(ctx, s.DB, l)
}

// DeleteLoan removes a loan.
func (s *ContentService) DeleteLoan(ctx context.Context, id uint) error {
	ctx, span := s.start(ctx, "DeleteLoan", id)
	defer span.End()
	return remove[domain.Loan](ctx, s.DB, id)
}

func (s *ContentService) checkLoan(ctx context.Context, l *domain.Loan, id uint) error {
	l.Title = strings.TrimSpace(l.Title)
	if l.Title == "" {
		return &ValidationError{Field: "title", Message: msgLoanTitleRequired}
	}
	if utf8.RuneCountInString(l.Title) > 250 {
		return &ValidationError{Field: "title", Message: msgTooLong}
	}
	if err := mustExist[domain.Bank](ctx, s.DB, l.BankID, "bank_id", msgBankRequired); err != nil {
		return err
	}
	if err := mustExist[domain.LoanType](ctx, s.DB, l.LoanTypeID, "loan_type_id", msgLoanTypeRequired); err != nil {
		return err
	}
	return ensureSlug[domain.Loan](ctx, s.DB, &l.Slug, l.Title, 300, id)
}

// ---- blog posts ----

// Posts lists every post, published or not, most recently updated first.
func (s *ContentService) Posts(ctx context.Context) ([]domain.BlogPost, error) {
	ctx, span := s.start(ctx, "Posts", 0)
	defer span.End()
	return repo.ListAllPosts(ctx, s.DB)
}

// Post loads one post by id.
func (s *ContentService) Post(ctx context.Context, id uint) (*domain.BlogPost, error) {
	ctx, span := s.start(ctx, "Post", id)
	defer span.End()
	return load[domain.BlogPost](ctx, s.DB, id)
}

// CreatePost validates and inserts p. A published post without a publish
// time is stamped now.
func (s *ContentService) CreatePost(ctx context.Context, p *domain.BlogPost) error {
	ctx, span := s.start(ctx, "CreatePost", 0)
	defer span.End()

	p.ID, p.ViewCount = 0, 0
	if err := s.checkPost(ctx, p, 0); err != nil {
		return err
	}
	now := s.clock()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.IsPublished && p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	return repo.CreateContent(ctx, s.DB, p)
}

// UpdatePost replaces the editable fields of post id with p. The view count,
// creation time and first publish time are kept; an empty cover image keeps
// the current one.
func (s *ContentService) UpdatePost(ctx context.Context, id uint, p *domain.BlogPost) error {
	ctx, span := s.start(ctx, "UpdatePost", id)
	defer span.End()

	existing, err := load[domain.BlogPost](ctx, s.DB, id)
	if err != nil {
		return err
	}
	if err := s.checkPost(ctx, p, id); err != nil {
		return err
	}
	now := s.clock()
	p.ID, p.ViewCount, p.CreatedAt, p.UpdatedAt = existing.ID, existing.ViewCount, existing.CreatedAt, now
	if p.CoverImageURL == nil || *p.CoverImageURL == "" {
		p.CoverImageURL = existing.CoverImageURL
	}
	p.PublishedAt = existing.PublishedAt
	if p.IsPublished && p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	return repo.SaveContent(ctx, s.DB, p)
}

// DeletePost removes a post.
func (s *ContentService) DeletePost(ctx context.Context, id uint) error {
	ctx, span := s.start(ctx, "DeletePost", id)
	defer span.End()
	return remove[domain.BlogPost](ctx, s.DB, id)
}

func (s *ContentService) checkPost(ctx context.Context, p *domain.BlogPost, id uint) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return &ValidationError{Field: "title", Message: msgPostTitleRequired}
	}
	if utf8.RuneCountInString(p.Title) > 300 {
		return &ValidationError{Field: "title", Message: msgTooLong}
	}
	if strings.TrimSpace(p.Content) == "" {
		return &ValidationError{Field: "content", Message: msgContentRequired}
	}
	return ensureSlug[domain.BlogPost](ctx, s.DB, &p.Slug, p.Title, 400, id)
}

// ---- shared ----

func load[T repo.Content](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	v, err := repo.GetContentByID[T](ctx, db, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrContentNotFound
	}
	return v, err
}

func remove[T repo.Content](ctx context.Context, db *gorm.DB, id uint) error {
	if err := repo.DeleteContent[T](ctx, db, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrContentNotFound
		}
		return err
	}
	return nil
}

func mustExist[T repo.Content](ctx context.Context, db *gorm.DB, id uint, field, msg string) error {
	if id == 0 {
		return &ValidationError{Field: field, Message: msg}
	}
	ok, err := repo.ContentExists[T](ctx, db, id)
	if err != nil {
		return err
	}
	if !ok {
		return &ValidationError{Field: field, Message: msg}
	}
	return nil
}

// ensureSlug fills a blank slug from source and checks its length and that
// no other row of T (besides exceptID) uses it.
func ensureSlug[T repo.Content](ctx context.Context, db *gorm.DB, slug *string, source string, limit int, exceptID uint) error {
	*slug = strings.TrimSpace(*slug)
	if *slug == "" {
		*slug = utils.Slugify(source)
	}
	if *slug == "" {
		return &ValidationError{Field: "slug", Message: msgSlugRequired}
	}
	if utf8.RuneCountInString(*slug) > limit {
		return &ValidationError{Field: "slug", Message: msgTooLong}
	}
	taken, err := repo.SlugTaken[T](ctx, db, *slug, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlugTaken
	}
	return nil
}
