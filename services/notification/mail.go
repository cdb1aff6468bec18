package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"

	"busreserve/models"

	gomail "gopkg.in/gomail.v2"
)

var inviteTemplate = template.Must(template.New("invite").Parse(`<p>Hello,</p>
<p>{{.Body}}</p>
<p>Booking reference: <strong>{{.BookingID}}</strong></p>`))

// MailDispatcher emails group invitations to members addressed by email.
type MailDispatcher struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailDispatcher(host string, port int, username, password, from string) *MailDispatcher {
	dialer := gomail.NewDialer(host, port, username, password)
	dialer.TLSConfig = &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         host,
	}
	return &MailDispatcher{dialer: dialer, from: from}
}

func (m *MailDispatcher) Dispatch(_ context.Context, event models.Event) error {
	if event.Type != models.EventGroupInvite || event.MemberEmail == "" {
		return nil
	}
	msg, err := m.InviteMessage(event)
	if err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send invite to %s: %w", event.MemberEmail, err)
	}
	return nil
}

// InviteMessage renders the invitation email for a GroupInvite event.
func (m *MailDispatcher) InviteMessage(event models.Event) (*gomail.Message, error) {
	title, body := Render(event)

	var html bytes.Buffer
	err := inviteTemplate.Execute(&html, struct {
		Body      string
		BookingID string
	}{Body: body, BookingID: event.BookingID})
	if err != nil {
		return nil, fmt.Errorf("failed to execute invite template: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", event.MemberEmail)
	msg.SetHeader("Subject", title)
	msg.SetBody("text/html", html.String())
	return msg, nil
}
