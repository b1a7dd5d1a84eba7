package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  "Crestview Residences",
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendAgreementDecision(toEmail, apartmentNo, decision string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := fmt.Sprintf("Your rental application was %s", decision)
	html := fmt.Sprintf(`
		<h2>Application %s</h2>
		<p>Your application for apartment <strong>%s</strong> has been <strong>%s</strong>.</p>
		<p>Sign in to your resident account for details.</p>
	`, decision, apartmentNo, decision)
	text := fmt.Sprintf("Your application for apartment %s has been %s.", apartmentNo, decision)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetText(text)
	msg.SetHTML(html)

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
