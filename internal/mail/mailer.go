// Package mail sends the newsletter welcome email over SMTP.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no SMTP password is set; callers treat it
// as "skip sending".
var ErrNotConfigured = errors.New("smtp not configured")

// Mailer sends transactional emails.
type Mailer interface {
	SendWelcome(ctx context.Context, to string) error
}

// Config mirrors the SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
	SiteURL  string
}

// SMTP delivers mail through an SMTP relay. Port 465 uses implicit TLS; any
// other port upgrades with STARTTLS when the server offers it.
type SMTP struct {
	Cfg Config

	// deliver is replaced in tests.
	deliver func(ctx context.Context, from string, to []string, msg []byte) error
}

// NewSMTP returns a mailer for cfg.
func NewSMTP(cfg Config) *SMTP {
	m := &SMTP{Cfg: cfg}
	m.deliver = m.dial
	return m
}

const welcomeSubject = "به خبرنامه وام‌گرد خوش آمدید!"

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<div dir="rtl" style="font-family:Tahoma,Arial,sans-serif;max-width:600px;margin:0 auto;padding:20px;">
  <div style="background:linear-gradient(135deg,#2563eb,#059669);padding:30px;border-radius:16px 16px 0 0;text-align:center;">
    <h1 style="color:#fff;margin:0;font-size:24px;">{{.SiteName}}</h1>
    <p style="color:rgba(255,255,255,0.8);margin:8px 0 0;">مرجع جامع مقایسه وام‌های بانکی ایران</p>
  </div>
  <div style="background:#fff;padding:30px;border:1px solid #e5e7eb;border-top:none;border-radius:0 0 16px 16px;">
    <h2 style="color:#1e293b;font-size:18px;margin:0 0 16px;">سلام!</h2>
    <p style="color:#475569;line-height:1.8;">از اینکه در خبرنامه وام‌گرد عضو شدید متشکریم.</p>
    <p style="color:#475569;line-height:1.8;">از این پس، جدیدترین اخبار وام‌های بانکی، تغییرات نرخ سود و فرصت‌های ویژه تسهیلات را در ایمیل خود دریافت خواهید کرد.</p>
    <div style="text-align:center;margin:24px 0;">
      <a href="{{.SiteURL}}" style="display:inline-block;background:#2563eb;color:#fff;padding:12px 32px;border-radius:8px;text-decoration:none;font-weight:bold;">مشاهده وام‌ها</a>
    </div>
    <p style="color:#94a3b8;font-size:13px;text-align:center;margin:16px 0 0;">این ایمیل به {{.To}} ارسال شده است.</p>
  </div>
</div>`))

// SendWelcome sends the newsletter welcome message to one address.
func (m *SMTP) SendWelcome(ctx context.Context, to string) error {
	if m.Cfg.Password == "" {
		return ErrNotConfigured
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("recipient: %w", err)
	}
	msg, err := m.buildWelcome(to)
	if err != nil {
		return err
	}
	return m.deliver(ctx, m.Cfg.Username, []string{to}, msg)
}

func (m *SMTP) buildWelcome(to string) ([]byte, error) {
	siteName := m.Cfg.FromName
	if siteName == "" {
		siteName = "وام‌گرد"
	}
	siteURL := m.Cfg.SiteURL
	if siteURL == "" {
		siteURL = "https://vamgard.org"
	}

	var body bytes.Buffer
	if err := welcomeTmpl.Execute(&body, map[string]string{
		"SiteName": siteName, "SiteURL": siteURL, "To": to,
	}); err != nil {
		return nil, err
	}

	from := (&mail.Address{Name: siteName, Address: m.Cfg.Username}).String()
	var msg strings.Builder
	for _, h := range [][2]string{
		{"From", from},
		{"To", to},
		{"Subject", mime.BEncoding.Encode("UTF-8", welcomeSubject)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	} {
		msg.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return []byte(msg.String()), nil
}

// dial opens the SMTP session and sends msg.
func (m *SMTP) dial(ctx context.Context, from string, to []string, msg []byte) error {
	addr := net.JoinHostPort(m.Cfg.Host, strconv.Itoa(m.Cfg.Port))
	d := net.Dialer{Timeout: 10 * time.Second}

	var (
		conn net.Conn
		err  error
	)
	if m.Cfg.Port == 465 {
		conn, err = tls.DialWithDialer(&d, "tcp", addr, &tls.Config{ServerName: m.Cfg.Host})
	} else {
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}
	deadline := time.Now().Add(30 * time.Second)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, m.Cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if m.Cfg.Port != 465 {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: m.Cfg.Host}); err != nil {
				return err
			}
		}
	}
	if m.Cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", m.Cfg.Username, m.Cfg.Password, m.Cfg.Host)); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(msg); err != nil {
		_ = wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return c.Quit()
}
