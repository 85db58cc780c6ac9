package mailer

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// SMTPMailer delivers through a plain SMTP relay. Used for local capture
// tools like Mailpit (no auth, no TLS) and for staging relays with PLAIN auth.
type SMTPMailer struct {
	host string
	port int
	from string
	user string
	pass string
}

func NewSMTPMailer(host string, port int, from, user, pass string) *SMTPMailer {
	return &SMTPMailer{
		host: strings.TrimSpace(host),
		port: port,
		from: strings.TrimSpace(from),
		user: strings.TrimSpace(user),
		pass: strings.TrimSpace(pass),
	}
}

func (s *SMTPMailer) SendBookingConfirmation(toEmail, toName string, startsAt time.Time, slot string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return fmt.Errorf("empty recipient email")
	}

	day := startsAt.Format("Monday, January 2, 2006")
	subject := "Your appointment is confirmed"
	text := fmt.Sprintf("Your appointment has been scheduled for %s at %s.", day, slot)
	html := fmt.Sprintf(`
		<h2>You're all set!</h2>
		<p>Hi %s,</p>
		<p>Your appointment has been scheduled for:</p>
		<p><strong>%s</strong> at <strong>%s</strong></p>
		<p>If you need to make changes, please reply to this email.</p>
	`, toName, day, slot)

	var buf bytes.Buffer
	boundary := "mixed-boundary"
	fmt.Fprintf(&buf, "From: %s\r\n", s.from)
	fmt.Fprintf(&buf, "To: %s\r\n", toEmail)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", text)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/html; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", html)

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	// SendMail upgrades via STARTTLS when the relay advertises it.
	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}
	return smtp.SendMail(addr, auth, s.from, []string{toEmail}, buf.Bytes())
}
