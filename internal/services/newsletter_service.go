package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vamgard/vamgard-backend/internal/domain"
	"github.com/vamgard/vamgard-backend/internal/mail"
	"github.com/vamgard/vamgard-backend/internal/repo"
	"github.com/vamgard/vamgard-backend/internal/utils"

	"go.opentelemetry.io/otel"
)

// SubscribeResult reports the outcome of a newsletter sign-up.
type SubscribeResult struct {
	Subscriber        *domain.NewsletterSubscriber
	AlreadySubscribed bool
}

// NewsletterService handles newsletter sign-ups.
type NewsletterService struct {
	DB     *gorm.DB
	Mailer mail.Mailer

	// MailTimeout bounds the background welcome email.
	MailTimeout time.Duration
	// wait is set by tests to observe the background send.
	wait func()
	now  func() time.Time
}

// NewNewsletterService constructs the service; mailer may be nil.
func NewNewsletterService(db *gorm.DB, mailer mail.Mailer) *NewsletterService {
	return &NewsletterService{DB: db, Mailer: mailer, MailTimeout: 30 * time.Second, now: time.Now}
}

// Subscribe registers email (trimmed and lower-cased). An address that is
// already registered succeeds without changes. New subscribers get a welcome
// email sent in the background; mail failures never affect the result.
func (s *NewsletterService) Subscribe(ctx context.Context, email, name, clientIP string) (*SubscribeResult, error) {
	tr := otel.Tracer("services/NewsletterService")
	ctx, span := tr.Start(ctx, "Subscribe")
	defer span.End()

	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	email = strings.ToLower(strings.TrimSpace(email))

	exists, err := repo.SubscriberExists(ctx, s.DB, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return &SubscribeResult{AlreadySubscribed: true}, nil
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	sub := &domain.NewsletterSubscriber{
		Email:        utils.TruncateRunes(email, 250),
		IsActive:     true,
		SubscribedAt: now().UTC(),
	}
	if n := strings.TrimSpace(name); n != "" {
		n = utils.TruncateRunes(n, 100)
		sub.Name = &n
	}
	if ip := strings.TrimSpace(clientIP); ip != "" {
		ip = utils.TruncateRunes(ip, 50)
		sub.IPAddress = &ip
	}
	if err := repo.CreateSubscriber(ctx, s.DB, sub); err != nil {
		// lost a race with a concurrent sign-up of the same address
		if exists, xerr := repo.SubscriberExists(ctx, s.DB, email); xerr == nil && exists {
			return &SubscribeResult{AlreadySubscribed: true}, nil
		}
		return nil, err
	}

	s.sendWelcome(ctx, email)
	return &SubscribeResult{Subscriber: sub}, nil
}

func (s *NewsletterService) sendWelcome(ctx context.Context, email string) {
	if s.Mailer == nil {
		return
	}
	timeout := s.MailTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	go func() {
		defer cancel()
		if s.wait != nil {
			defer s.wait()
		}
		err := s.Mailer.SendWelcome(bg, email)
		switch {
		case errors.Is(err, mail.ErrNotConfigured):
			log.Warn().Msg("SMTP password not configured, skipping welcome email")
		case err != nil:
			log.Error().Err(err).Str("email", email).Msg("failed to send welcome email")
		default:
			log.Info().Str("email", email).Msg("welcome email sent")
		}
	}()
}
