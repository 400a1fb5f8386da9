package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/haircarelog/haircarelog-api/internal/config"
	"github.com/haircarelog/haircarelog-api/internal/core/domain"
	"github.com/haircarelog/haircarelog-api/internal/platform/logger"
)

var _ domain.Mailer = (*SendGridMailer)(nil)

const reminderSubject = "Daily Reminder"

type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer builds a client per send; sendgrid.Client stores the request
// body on itself and cannot be shared between goroutines.
type SendGridMailer struct {
	newClient func() sender
	fromName  string
	fromEmail string
	log       *logger.Logger
}

func NewSendGridMailer(cfg config.SendGridConfig, log *logger.Logger) *SendGridMailer {
	if log == nil {
		log = logger.NewNop()
	}
	return &SendGridMailer{
		newClient: func() sender { return sendgrid.NewSendClient(cfg.APIKey) },
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
		log:       log,
	}
}

func (m *SendGridMailer) SendReport(ctx context.Context, msg domain.ReportEmail) error {
	message := m.reportMessage(msg)
	if err := m.send(ctx, message); err != nil {
		return fmt.Errorf("mailer: send report to %s: %w", msg.To, err)
	}
	m.log.Info("report email sent", "to", msg.To, "filename", msg.Filename, "bytes", len(msg.Content))
	return nil
}

func (m *SendGridMailer) SendReminder(ctx context.Context, to, name string) error {
	message := m.reminderMessage(to, name)
	if err := m.send(ctx, message); err != nil {
		return fmt.Errorf("mailer: send reminder to %s: %w", to, err)
	}
	return nil
}

func (m *SendGridMailer) send(ctx context.Context, message *mail.SGMailV3) error {
	resp, err := m.newClient().SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func (m *SendGridMailer) newMessage(to, toName, subject string) *mail.SGMailV3 {
	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(m.fromName, m.fromEmail))
	message.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(toName, to))
	message.AddPersonalizations(p)
	return message
}

func (m *SendGridMailer) reportMessage(msg domain.ReportEmail) *mail.SGMailV3 {
	message := m.newMessage(msg.To, msg.To, msg.Subject)
	message.AddContent(mail.NewContent("text/plain", msg.TextBody))
	if msg.HTMLBody != "" {
		message.AddContent(mail.NewContent("text/html", msg.HTMLBody))
	}

	attachment := mail.NewAttachment()
	attachment.SetContent(base64.StdEncoding.EncodeToString(msg.Content))
	attachment.SetType(msg.ContentType)
	attachment.SetFilename(msg.Filename)
	attachment.SetDisposition("attachment")
	message.AddAttachment(attachment)

	return message
}

func (m *SendGridMailer) reminderMessage(to, name string) *mail.SGMailV3 {
	if name == "" {
		name = "there"
	}
	message := m.newMessage(to, name, reminderSubject)
	message.AddContent(mail.NewContent("text/plain",
		"Hi "+name+", you haven’t created a log today. Please add it now."))
	message.AddContent(mail.NewContent("text/html",
		"<p>Hi "+html.EscapeString(name)+",</p><p>You haven’t created a log today. Please add it now.</p>"))
	return message
}
