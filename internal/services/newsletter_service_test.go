package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vamgard/vamgard-backend/internal/mail"
	"github.com/vamgard/vamgard-backend/internal/repo"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMailer) SendWelcome(_ context.Context, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return m.err
}

func TestNewsletter_Subscribe(t *testing.T) {
	db := newTestDB(t)
	m := &fakeMailer{}
	svc := NewNewsletterService(db, m)
	fixed := time.Date(2025, 6, 1, 8, 0, 0, 0, time.FixedZone("IRST", 12600))
	svc.now = func() time.Time { return fixed }
	var wg sync.WaitGroup
	svc.wait = wg.Done
	ctx := context.Background()

	wg.Add(1)
	res, err := svc.Subscribe(ctx, "  Ali@Example.IR ", " علی ", "203.0.113.9")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	wg.Wait()
	if res.AlreadySubscribed || res.Subscriber == nil {
		t.Fatalf("expected a new subscriber: %+v", res)
	}
	s := res.Subscriber
	if s.Email != "ali@example.ir" || s.Name == nil || *s.Name != "علی" || !s.IsActive {
		t.Fatalf("stored subscriber: %+v", s)
	}
	if s.SubscribedAt.Location() != time.UTC || !s.SubscribedAt.Equal(fixed) {
		t.Fatalf("subscribed_at = %v", s.SubscribedAt)
	}
	if len(m.sent) != 1 || m.sent[0] != "ali@example.ir" {
		t.Fatalf("welcome mail: %v", m.sent)
	}

	again, err := svc.Subscribe(ctx, "ALI@example.ir", "", "")
	if err != nil || !again.AlreadySubscribed {
		t.Fatalf("duplicate: %+v err=%v", again, err)
	}
	if len(m.sent) != 1 {
		t.Fatalf("no mail for existing subscriber")
	}
	if n, _ := repo.CountSubscribers(ctx, db); n != 1 {
		t.Fatalf("subscribers = %d", n)
	}
}

func TestNewsletter_InvalidAndMailFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewNewsletterService(db, &fakeMailer{err: mail.ErrNotConfigured})
	var wg sync.WaitGroup
	svc.wait = wg.Done

	for _, in := range []string{"", "   ", "no-at-sign"} {
		if _, err := svc.Subscribe(context.Background(), in, "", ""); !errors.Is(err, ErrInvalidEmail) {
			t.Fatalf("%q: want ErrInvalidEmail, got %v", in, err)
		}
	}

	wg.Add(1)
	res, err := svc.Subscribe(context.Background(), "x@y.ir", "", "")
	wg.Wait()
	if err != nil || res.Subscriber == nil {
		t.Fatalf("mail failure must not fail sign-up: %+v %v", res, err)
	}
	if res.Subscriber.Name != nil || res.Subscriber.IPAddress != nil {
		t.Fatalf("blank name/ip should be stored as NULL")
	}
}
