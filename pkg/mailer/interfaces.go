package mailer

import "time"

type Service interface {
	SendBookingConfirmation(toEmail, toName string, startsAt time.Time, slot string) error
}
