package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vamgard/vamgard-backend/internal/domain"
	"github.com/vamgard/vamgard-backend/internal/repo"
)

func TestAdmin_BootstrapAndAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db)
	ctx := context.Background()

	created, err := svc.EnsureBootstrapAdmin(ctx, "admin", "admin123", "مدیر سیستم")
	if err != nil || !created {
		t.Fatalf("bootstrap: %v %v", created, err)
	}
	created, err = svc.EnsureBootstrapAdmin(ctx, "other", "x", "")
	if err != nil || created {
		t.Fatalf("second bootstrap must be a no-op: %v %v", created, err)
	}

	a, err := svc.Authenticate(ctx, " admin ", "admin123")
	if err != nil || a.DisplayName == nil || *a.DisplayName != "مدیر سیستم" {
		t.Fatalf("Authenticate: %+v %v", a, err)
	}
	if _, err := svc.Authenticate(ctx, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost", "admin123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestAdmin_ChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db)
	ctx := context.Background()
	if _, err := svc.EnsureBootstrapAdmin(ctx, "admin", "admin123", ""); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name                   string
		user, cur, next, again string
		want                   error
	}{
		{"mismatch", "admin", "admin123", "newpass1", "newpass2", ErrPasswordMismatch},
		{"too short", "admin", "admin123", "abc", "abc", ErrPasswordTooShort},
		{"blank", "admin", "admin123", "      ", "      ", ErrPasswordTooShort},
		{"persian runes count", "admin", "wrong", "رمزعبور", "رمزعبور", ErrWrongPassword},
		{"unknown admin", "ghost", "admin123", "newpass1", "newpass1", ErrAdminNotFound},
		{"wrong current", "admin", "nope", "newpass1", "newpass1", ErrWrongPassword},
	}
	for _, tc := range cases {
		if err := svc.ChangePassword(ctx, tc.user, tc.cur, tc.next, tc.again); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v; want %v", tc.name, err, tc.want)
		}
	}

	if err := svc.ChangePassword(ctx, "admin", "admin123", "newpass1", "newpass1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "admin", "newpass1"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "admin", "admin123"); err == nil {
		t.Fatalf("old password still accepted")
	}
}

func TestAdmin_DashboardAndSubscribers(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	svc := NewAdminService(db)
	ctx := context.Background()

	at := time.Date(2025, 7, 1, 10, 30, 0, 0, time.UTC)
	for i, e := range []string{"a@x.ir", "b@x.ir"} {
		s := &domain.NewsletterSubscriber{Email: e, IsActive: i == 0, SubscribedAt: at.Add(time.Duration(i) * time.Hour)}
		if i == 0 {
			s.Name = strPtr("علی, رضایی")
		}
		if err := repo.CreateSubscriber(ctx, db, s); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.CreateVisit(ctx, db, &domain.PageVisit{Path: "/"}); err != nil {
		t.Fatal(err)
	}

	d, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.TotalBanks != 2 || d.TotalLoans != 2 || d.ActiveLoans != 2 || d.TotalSubscribers != 2 || d.TotalBlogPosts != 1 {
		t.Fatalf("dashboard counts: %+v", d)
	}
	if len(d.RecentLoans) != 2 || len(d.RecentVisitors) != 1 {
		t.Fatalf("dashboard lists: %d loans %d visits", len(d.RecentLoans), len(d.RecentVisitors))
	}

	var buf bytes.Buffer
	if err := svc.ExportSubscribersCSV(ctx, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "Email,Name,SubscribedAt\na@x.ir,\"علی, رضایی\",2025-07-01 10:30\n"
	if buf.String() != want {
		t.Fatalf("csv:\n%s\nwant:\n%s", buf.String(), want)
	}

	subs, err := svc.Subscribers(ctx)
	if err != nil || len(subs) != 2 || subs[0].Email != "b@x.ir" {
		t.Fatalf("Subscribers: %+v %v", subs, err)
	}
	if err := svc.DeleteSubscriber(ctx, subs[0].ID); err != nil {
		t.Fatalf("DeleteSubscriber: %v", err)
	}
	if err := svc.DeleteSubscriber(ctx, subs[0].ID); !errors.Is(err, ErrSubscriberNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}
