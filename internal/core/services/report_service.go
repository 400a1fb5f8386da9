package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/mail"
	"strings"
	"time"

	"github.com/haircarelog/haircarelog-api/internal/core/domain"
	"github.com/haircarelog/haircarelog-api/internal/core/report"
	"github.com/haircarelog/haircarelog-api/internal/platform/logger"
	"github.com/haircarelog/haircarelog-api/internal/platform/metrics"
)

type ReportAggregator interface {
	Aggregate(ctx context.Context, userID string, now time.Time) (domain.AggregateOutcome, error)
}

type ReportRenderer interface {
	Render(userName string, r *domain.AggregateReport) ([]byte, error)
}

// GeneratedReport is a rendered document plus the metadata needed to serve it.
type GeneratedReport struct {
	UserName    string
	Filename    string
	ContentType string
	Content     []byte
	Size        int
	WindowStart time.Time
	WindowEnd   time.Time
	EntryCount  int
}

type ReportService struct {
	users      domain.UserRepository
	aggregator ReportAggregator
	renderer   ReportRenderer
	mailer     domain.Mailer
	log        *logger.Logger
	loc        *time.Location
	now        func() time.Time
}

type ReportServiceOption func(*ReportService)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ReportServiceOption {
	return func(s *ReportService) { s.now = now }
}

// WithLocation sets the zone used for the window and report dates.
func WithLocation(loc *time.Location) ReportServiceOption {
	return func(s *ReportService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewReportService(
	users domain.UserRepository,
	aggregator ReportAggregator,
	renderer ReportRenderer,
	mailer domain.Mailer,
	log *logger.Logger,
	opts ...ReportServiceOption,
) *ReportService {
	if log == nil {
		log = logger.NewNop()
	}
	s := &ReportService{
		users:      users,
		aggregator: aggregator,
		renderer:   renderer,
		mailer:     mailer,
		log:        log,
		loc:        time.UTC,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReportService) GenerateReportForDownload(ctx context.Context, userID string) (*GeneratedReport, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		metrics.ReportGeneratedTotal.WithLabelValues("user_error").Inc()
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("report service: failed to load user %s: %w", userID, err)
	}
	return s.generate(ctx, user)
}

// EmailReportToRecipient generates the report and mails it to recipient.
// When only delivery fails, the generated report is returned together with
// a *domain.ReportError of kind domain.ErrReportDelivery.
func (s *ReportService) EmailReportToRecipient(ctx context.Context, userID, recipient string) (*GeneratedReport, error) {
	recipient = strings.TrimSpace(recipient)
	addr, err := mail.ParseAddress(recipient)
	if recipient == "" || err != nil {
		return nil, domain.ErrInvalidEmail
	}

	rep, err := s.GenerateReportForDownload(ctx, userID)
	if err != nil {
		return nil, err
	}

	msg := domain.ReportEmail{
		To:          addr.Address,
		UserName:    rep.UserName,
		Subject:     "Your HairCareLog Report — " + rep.UserName,
		TextBody:    "Hi " + rep.UserName + ",\n\nYour 30-day report is attached.\n\n— HairCareLog",
		HTMLBody:    "<p>Hi " + html.EscapeString(rep.UserName) + ",</p><p>Your 30-day report is attached.</p><p>— HairCareLog</p>",
		Filename:    rep.Filename,
		ContentType: rep.ContentType,
		Content:     rep.Content,
	}

	if err := s.mailer.SendReport(ctx, msg); err != nil {
		metrics.ReportEmailTotal.WithLabelValues("error").Inc()
		s.log.Error("report email delivery failed",
			"user_id", userID,
			"recipient", addr.Address,
			"error", err,
		)
		return rep, &domain.ReportError{
			Kind:        domain.ErrReportDelivery,
			UserID:      userID,
			WindowStart: rep.WindowStart,
			WindowEnd:   rep.WindowEnd,
			Err:         err,
		}
	}

	metrics.ReportEmailTotal.WithLabelValues("sent").Inc()
	s.log.Info("report emailed", "user_id", userID, "recipient", addr.Address, "entries", rep.EntryCount)
	return rep, nil
}

func (s *ReportService) generate(ctx context.Context, user *domain.User) (*GeneratedReport, error) {
	now := s.now().In(s.loc)

	outcome, err := s.aggregator.Aggregate(ctx, user.ID, now)
	if err != nil {
		metrics.ReportGeneratedTotal.WithLabelValues("aggregate_error").Inc()
		start, end := report.Window(now)
		s.log.Error("report aggregation failed", "user_id", user.ID, "error", err)
		return nil, &domain.ReportError{
			Kind: domain.ErrReportAggregate, UserID: user.ID,
			WindowStart: start, WindowEnd: end, Err: err,
		}
	}

	var rep *domain.AggregateReport
	switch o := outcome.(type) {
	case domain.EmptyWindow:
		metrics.ReportGeneratedTotal.WithLabelValues("empty").Inc()
		return nil, &domain.ReportError{
			Kind: domain.ErrNoLogsInWindow, UserID: user.ID,
			WindowStart: o.WindowStart, WindowEnd: o.WindowEnd,
		}
	case *domain.AggregateReport:
		rep = o
	default:
		return nil, fmt.Errorf("report service: unexpected aggregate outcome %T", outcome)
	}

	started := time.Now()
	content, err := s.renderer.Render(user.Name, rep)
	metrics.ReportRenderDurationSeconds.Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.ReportGeneratedTotal.WithLabelValues("render_error").Inc()
		s.log.Error("report rendering failed", "user_id", user.ID, "entries", rep.EntryCount, "error", err)
		return nil, &domain.ReportError{
			Kind: domain.ErrReportRender, UserID: user.ID,
			WindowStart: rep.WindowStart, WindowEnd: rep.WindowEnd, Err: err,
		}
	}

	metrics.ReportGeneratedTotal.WithLabelValues("ok").Inc()
	s.log.Info("report generated", "user_id", user.ID, "entries", rep.EntryCount, "bytes", len(content))

	return &GeneratedReport{
		UserName:    user.Name,
		Filename:    ReportFilename(user.Name, now),
		ContentType: report.DocxContentType,
		Content:     content,
		Size:        len(content),
		WindowStart: rep.WindowStart,
		WindowEnd:   rep.WindowEnd,
		EntryCount:  rep.EntryCount,
	}, nil
}

// ReportFilename uses the UTC calendar date of now.
func ReportFilename(userName string, now time.Time) string {
	return fmt.Sprintf("hair-care-report-%s-%s.docx", userName, now.UTC().Format("2006-01-02"))
}
