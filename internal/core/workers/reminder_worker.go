package workers

import (
	"context"
	"time"

	"github.com/haircarelog/haircarelog-api/internal/core/domain"
	"github.com/haircarelog/haircarelog-api/internal/core/services"
	"github.com/haircarelog/haircarelog-api/internal/platform/logger"
	"github.com/haircarelog/haircarelog-api/internal/platform/metrics"
)

type UserRepository interface {
	ListDueForReminder(ctx context.Context, now time.Time) ([]*domain.User, error)
	SetNextReminder(ctx context.Context, id string, next time.Time, lastSent *time.Time) error
}

type LogRepository interface {
	ExistsSince(ctx context.Context, userID string, since time.Time) (bool, error)
}

type ReminderMailer interface {
	SendReminder(ctx context.Context, to, name string) error
}

// SweepResult summarizes one pass over the due users.
type SweepResult struct {
	Due     int
	Sent    int
	Skipped int
	Failed  int
}

type ReminderWorker struct {
	userRepo UserRepository
	logRepo  LogRepository
	mailer   ReminderMailer
	log      *logger.Logger
	interval time.Duration
	loc      *time.Location
	now      func() time.Time
}

func NewReminderWorker(uRepo UserRepository, lRepo LogRepository, mailer ReminderMailer, log *logger.Logger, interval time.Duration, loc *time.Location) *ReminderWorker {
	if log == nil {
		log = logger.NewNop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderWorker{
		userRepo: uRepo,
		logRepo:  lRepo,
		mailer:   mailer,
		log:      log,
		interval: interval,
		loc:      loc,
		now:      time.Now,
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	go func() {
		w.log.Info("reminder worker started", "interval", w.interval.String())
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.Sweep(ctx, w.now())
			case <-ctx.Done():
				w.log.Info("reminder worker shutting down")
				return
			}
		}
	}()
}

// Sweep emails every due user who has not logged since the start of their
// day and moves each due user's next reminder forward. Per-user failures are
// logged and do not stop the sweep.
func (w *ReminderWorker) Sweep(ctx context.Context, now time.Time) SweepResult {
	now = now.In(w.loc)
	var res SweepResult

	users, err := w.userRepo.ListDueForReminder(ctx, now)
	if err != nil {
		w.log.Error("reminder sweep: failed to list due users", "error", err)
		return res
	}
	res.Due = len(users)

	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, u := range users {
		if ctx.Err() != nil {
			return res
		}

		var sentAt *time.Time
		logged, err := w.logRepo.ExistsSince(ctx, u.ID, startOfToday)
		switch {
		case err != nil:
			res.Failed++
			metrics.ReminderSentTotal.WithLabelValues("error").Inc()
			w.log.Error("reminder sweep: failed to check logs", "user_id", u.ID, "error", err)
		case logged:
			res.Skipped++
			metrics.ReminderSentTotal.WithLabelValues("skipped").Inc()
		default:
			if err := w.mailer.SendReminder(ctx, u.Email, u.Name); err != nil {
				res.Failed++
				metrics.ReminderSentTotal.WithLabelValues("error").Inc()
				w.log.Error("reminder sweep: failed to send reminder", "user_id", u.ID, "error", err)
			} else {
				res.Sent++
				metrics.ReminderSentTotal.WithLabelValues("sent").Inc()
				t := now.UTC()
				sentAt = &t
			}
		}

		if u.ReminderTime == nil {
			continue
		}
		next, err := services.NextReminder(*u.ReminderTime, now)
		if err != nil {
			w.log.Warn("reminder sweep: stored reminder time is invalid", "user_id", u.ID, "reminder_time", *u.ReminderTime)
			continue
		}
		if err := w.userRepo.SetNextReminder(ctx, u.ID, next, sentAt); err != nil {
			w.log.Error("reminder sweep: failed to advance reminder", "user_id", u.ID, "error", err)
		}
	}

	if res.Due > 0 {
		w.log.Info("reminder sweep finished", "due", res.Due, "sent", res.Sent, "skipped", res.Skipped, "failed", res.Failed)
	}
	return res
}
