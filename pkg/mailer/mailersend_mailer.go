package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendBookingConfirmation(toEmail, toName string, startsAt time.Time, slot string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	day := startsAt.Format("Monday, January 2, 2006")
	subject := "Your appointment is confirmed"
	html := fmt.Sprintf(`
		<h2>You're all set!</h2>
		<p>Hi %s,</p>
		<p>Your appointment has been scheduled for:</p>
		<p><strong>%s</strong> at <strong>%s</strong></p>
		<p>If you need to make changes, please reply to this email.</p>
	`, toName, day, slot)

	text := fmt.Sprintf("Your appointment has been scheduled for %s at %s.", day, slot)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) sendEmail(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
