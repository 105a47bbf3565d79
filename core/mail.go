package core

import "net/mail"

type (
	EmailMessage struct {
		To       []mail.Address
		Subject  string
		BodyText string
		BodyHTML string
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently; delivery failures are
		// logged, never returned.
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.BodyText != "" || m.BodyHTML != "" }
