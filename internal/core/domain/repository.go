package domain

import (
	"context"
	"errors"
	"io"
	"time"
)

type UserRepository interface {
	// Create persists a new user. Returns ErrEmailAlreadyExists on a duplicate email.
	Create(ctx context.Context, user *User) error

	GetByID(ctx context.Context, id string) (*User, error)

	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdateReminder persists the reminder settings of the user.
	UpdateReminder(ctx context.Context, user *User) error

	// ListDueForReminder returns opted-in users whose next reminder is at or before now.
	ListDueForReminder(ctx context.Context, now time.Time) ([]*User, error)

	// SetNextReminder advances the reminder schedule. A nil lastSent leaves the
	// stored value untouched.
	SetNextReminder(ctx context.Context, id string, next time.Time, lastSent *time.Time) error
}

type ScalpLogRepository interface {
	Create(ctx context.Context, log *ScalpLog) error

	// ListByUserSince returns the logs created at or after since, oldest first.
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*ScalpLog, error)

	// CountByUserBetween counts logs created in [from, to).
	CountByUserBetween(ctx context.Context, userID string, from, to time.Time) (int, error)

	// LatestByUser returns the most recent log or ErrLogNotFound.
	LatestByUser(ctx context.Context, userID string) (*ScalpLog, error)

	// ListByUser returns every log of the user, oldest first.
	ListByUser(ctx context.Context, userID string) ([]*ScalpLog, error)

	ExistsSince(ctx context.Context, userID string, since time.Time) (bool, error)
}

// ReportEmail is a rendered report ready to be delivered as an attachment.
type ReportEmail struct {
	To          string
	UserName    string
	Subject     string
	TextBody    string
	HTMLBody    string
	Filename    string
	ContentType string
	Content     []byte
}

type Mailer interface {
	SendReport(ctx context.Context, msg ReportEmail) error
	SendReminder(ctx context.Context, to, name string) error
}

var ErrUnsupportedPhotoType = errors.New("unsupported photo type")

type PhotoStorage interface {
	// Upload stores the photo and returns its public URL.
	Upload(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, error)
}
