package mailer

import (
	"time"

	"github.com/nexgen-digital/agenda-bookings/pkg/logger"
)

type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendBookingConfirmation(toEmail, toName string, startsAt time.Time, slot string) error {
	logger.Info("📧 [DEV MAIL] Booking Confirmation",
		"to", toEmail,
		"name", toName,
		"starts_at", startsAt.Format(time.RFC3339),
		"slot", slot,
	)
	return nil
}
