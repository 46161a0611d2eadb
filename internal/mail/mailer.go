// Package mail sends transactional emails over SMTP. Sending is always
// best-effort: callers log failures and carry on, they never surface them
// as the primary operation's failure.
package mail

import (
	"errors"
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

var ErrNotConfigured = errors.New("smtp is not configured")

// Mailer wraps an SMTP dialer plus the site base URL used in links.
type Mailer struct {
	host    string
	port    int
	user    string
	pass    string
	from    string
	baseURL string
}

// New creates a Mailer. Missing host or from address leaves it disabled.
func New(host string, port int, user, pass, from, baseURL string) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass, from: from, baseURL: baseURL}
}

// Enabled reports whether SMTP credentials were provided.
func (m *Mailer) Enabled() bool {
	return m.host != "" && m.from != ""
}

// SendVerification emails a verification link for a freshly issued token.
func (m *Mailer) SendVerification(to, token string) error {
	subject := "Verify your email address"
	body := fmt.Sprintf(
		"<p>Welcome! Please confirm your email address by opening the link below.</p>"+
			"<p><a href=%q>%s/verify-email?token=%s</a></p>"+
			"<p>The link is valid for 24 hours.</p>",
		fmt.Sprintf("%s/verify-email?token=%s", m.baseURL, token), m.baseURL, token)
	return m.send(to, subject, body)
}

// SendPasswordReset emails a reset link for a freshly issued token.
func (m *Mailer) SendPasswordReset(to, token string) error {
	subject := "Reset your password"
	body := fmt.Sprintf(
		"<p>A password reset was requested for your account. If this was you, open the link below.</p>"+
			"<p><a href=%q>%s/reset-password?token=%s</a></p>"+
			"<p>If you did not request a reset you can ignore this email.</p>",
		fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, token), m.baseURL, token)
	return m.send(to, subject, body)
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	if !m.Enabled() {
		return ErrNotConfigured
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return dialer.DialAndSend(msg)
}
