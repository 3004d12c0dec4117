package mailingservices

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// Mailer is the outbound email surface used by the notification dispatcher
// and the signup flow.
type Mailer interface {
	SendWelcomeMessage(toEmail, subject string) (string, error)
	SendNotificationEmail(toEmail, firstName, message, incidentID string) error
}

type Mailgun struct {
	Client *mailgun.MailgunImpl
	From   string
}

func (m *Mailgun) Init(domain, apiKey, from string) {
	m.From = from
	m.Client = mailgun.NewMailgun(domain, apiKey)
	log.Println("Mailgun client initialized")
}

func (m *Mailgun) SendWelcomeMessage(toEmail, subject string) (string, error) {
	body := "Welcome! Your account has been created on the Incident Reporting System."
	message := m.Client.NewMessage(m.From, subject, body, toEmail)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, id, err := m.Client.Send(ctx, message)
	if err != nil {
		return "", err
	}
	return id, nil
}

// SendNotificationEmail is the offline fallback delivery channel. Fixed
// subject, templated body carrying the notification text and incident id.
func (m *Mailgun) SendNotificationEmail(toEmail, firstName, messageText, incidentID string) error {
	subject := "New Notification"
	html := fmt.Sprintf(`
      <p>Hello %s,</p>
      <p>%s</p>
      <p><b>Incident ID:</b> %s</p>
      <hr />
      <small>Incident Reporting System</small>
    `, firstName, messageText, incidentID)

	message := m.Client.NewMessage(m.From, subject, messageText, toEmail)
	message.SetHtml(html)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _, err := m.Client.Send(ctx, message)
	if err != nil {
		return err
	}
	log.Printf("Notification email sent to %s", toEmail)
	return nil
}
