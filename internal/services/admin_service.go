// Package services – AdminService
//
// AdminService backs the cookie-authenticated back-office: bootstrap of the
// first admin account, login, password change, the dashboard summary and
// newsletter subscriber management.
package services

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vamgard/vamgard-backend/internal/auth"
	"github.com/vamgard/vamgard-backend/internal/domain"
	"github.com/vamgard/vamgard-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MinPasswordLen is the minimum admin password length in characters.
const MinPasswordLen = 6

// Dashboard is the admin landing summary.
type Dashboard struct {
	TotalBanks       int64              `json:"total_banks"`
	TotalLoanTypes   int64              `json:"total_loan_types"`
	TotalLoans       int64              `json:"total_loans"`
	ActiveLoans      int64              `json:"active_loans"`
	TotalSubscribers int64              `json:"total_subscribers"`
	TotalBlogPosts   int64              `json:"total_blog_posts"`
	RecentLoans      []domain.Loan      `json:"recent_loans"`
	RecentVisitors   []domain.PageVisit `json:"recent_visitors"`
}

// AdminService provides back-office operations.
type AdminService struct {
	DB *gorm.DB

	RecentLoans    int
	RecentVisitors int
}

// NewAdminService constructs an AdminService with the dashboard list sizes.
func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{DB: db, RecentLoans: 5, RecentVisitors: 100}
}

// EnsureBootstrapAdmin creates the initial admin account when none exists.
// It reports whether an account was created.
func (s *AdminService) EnsureBootstrapAdmin(ctx context.Context, username, password, displayName string) (bool, error) {
	n, err := repo.CountAdmins(ctx, s.DB)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	a := &domain.AdminUser{Username: username, PasswordHash: hash}
	if dn := strings.TrimSpace(displayName); dn != "" {
		a.DisplayName = &dn
	}
	if err := repo.CreateAdmin(ctx, s.DB, a); err != nil {
		return false, err
	}
	log.Info().Str("username", username).Msg("bootstrap admin created")
	return true, nil
}

// Authenticate verifies the credentials and returns the admin.
func (s *AdminService) Authenticate(ctx context.Context, username, password string) (*domain.AdminUser, error) {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "Authenticate",
		trace.WithAttributes(attribute.String("admin.username", username)),
	)
	defer span.End()

	a, err := repo.GetAdminByUsername(ctx, s.DB, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// ChangePassword replaces the admin's password after checking the
// confirmation, the minimum length and the current password, in that order.
func (s *AdminService) ChangePassword(ctx context.Context, username, current, next, confirm string) error {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "ChangePassword",
		trace.WithAttributes(attribute.String("admin.username", username)),
	)
	defer span.End()

	if next != confirm {
		return ErrPasswordMismatch
	}
	if strings.TrimSpace(next) == "" || utf8.RuneCountInString(next) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	a, err := repo.GetAdminByUsername(ctx, s.DB, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAdminNotFound
		}
		return err
	}
	if !auth.CheckPassword(a.PasswordHash, current) {
		return ErrWrongPassword
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return repo.UpdateAdminPassword(ctx, s.DB, a.ID, hash)
}

// Dashboard collects the admin summary counts and recent activity.
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "Dashboard")
	defer span.End()

	var (
		d   Dashboard
		err error
	)
	if d.TotalBanks, err = repo.CountBanks(ctx, s.DB, false); err != nil {
		return nil, err
	}
	if d.TotalLoanTypes, err = repo.CountLoanTypes(ctx, s.DB, false); err != nil {
		return nil, err
	}
	if d.TotalLoans, err = repo.CountLoans(ctx, s.DB, false); err != nil {
		return nil, err
	}
	if d.ActiveLoans, err = repo.CountLoans(ctx, s.DB, true); err != nil {
		return nil, err
	}
	if d.TotalSubscribers, err = repo.CountSubscribers(ctx, s.DB); err != nil {
		return nil, err
	}
	if d.TotalBlogPosts, err = repo.CountPosts(ctx, s.DB, true); err != nil {
		return nil, err
	}
	if d.RecentLoans, err = repo.RecentlyUpdatedLoans(ctx, s.DB, s.RecentLoans); err != nil {
		return nil, err
	}
	if d.RecentVisitors, err = repo.RecentVisits(ctx, s.DB, s.RecentVisitors); err != nil {
		return nil, err
	}
	return &d, nil
}

// Subscribers lists every subscriber, newest first.
func (s *AdminService) Subscribers(ctx context.Context) ([]domain.NewsletterSubscriber, error) {
	return repo.ListSubscribers(ctx, s.DB, false)
}

// DeleteSubscriber removes one subscriber.
func (s *AdminService) DeleteSubscriber(ctx context.Context, id uint) error {
	if err := repo.DeleteSubscriber(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubscriberNotFound
		}
		return err
	}
	return nil
}

// csvTimeLayout is the SubscribedAt format of the export.
const csvTimeLayout = "2006-01-02 15:04"

// ExportSubscribersCSV writes active subscribers as Email,Name,SubscribedAt.
func (s *AdminService) ExportSubscribersCSV(ctx context.Context, w io.Writer) error {
	subs, err := repo.ListSubscribers(ctx, s.DB, true)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Email", "Name", "SubscribedAt"}); err != nil {
		return err
	}
	for _, sub := range subs {
		name := ""
		if sub.Name != nil {
			name = *sub.Name
		}
		if err := cw.Write([]string{sub.Email, name, sub.SubscribedAt.UTC().Format(csvTimeLayout)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
