package mailer

import (
	"context"

	"github.com/haircarelog/haircarelog-api/internal/core/domain"
	"github.com/haircarelog/haircarelog-api/internal/platform/logger"
)

var _ domain.Mailer = (*LogMailer)(nil)

// LogMailer only logs. It is used when no SendGrid key is configured.
type LogMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	if log == nil {
		log = logger.NewNop()
	}
	return &LogMailer{log: log}
}

func (m *LogMailer) SendReport(ctx context.Context, msg domain.ReportEmail) error {
	m.log.Warn("mail disabled, report not sent", "to", msg.To, "filename", msg.Filename, "bytes", len(msg.Content))
	return nil
}

func (m *LogMailer) SendReminder(ctx context.Context, to, name string) error {
	m.log.Warn("mail disabled, reminder not sent", "to", to)
	return nil
}
