package domain

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters long")
	ErrInvalidReminder    = errors.New("invalid reminder format (must be HH:MM 24h)")
	ErrUnauthorized       = errors.New("unauthorized")
)

const (
	AuthProviderLocal = "local"
	MinPasswordLen    = 6
)

var reminderRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

type User struct {
	ID           string `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	AuthProvider string `json:"auth_provider" db:"auth_provider"`

	EmailReminder    bool       `json:"email_reminder" db:"email_reminder"`
	ReminderTime     *string    `json:"reminder_time,omitempty" db:"reminder_time"`
	NextReminder     *time.Time `json:"next_reminder,omitempty" db:"next_reminder"`
	LastReminderSent *time.Time `json:"last_reminder_sent,omitempty" db:"last_reminder_sent"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser normalizes the email and falls back to it when no name is given.
func NewUser(id, name, email string) (*User, error) {
	email = strings.TrimSpace(email)
	if !IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	email = strings.ToLower(email)

	name = strings.TrimSpace(name)
	if name == "" {
		name = email
	}

	now := time.Now().UTC()

	return &User{
		ID:            id,
		Name:          name,
		Email:         email,
		AuthProvider:  AuthProviderLocal,
		EmailReminder: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (u *User) SetPassword(plainPassword string) error {
	if utf8.RuneCountInString(plainPassword) < MinPasswordLen {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), 12)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now().UTC()

	return nil
}

func (u *User) CheckPassword(plainPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plainPassword))
}

// SetReminder stores the daily reminder time and the instant it fires next.
func (u *User) SetReminder(reminderTime string, emailReminder bool, next time.Time) error {
	if !ValidReminderTime(reminderTime) {
		return ErrInvalidReminder
	}

	rt := reminderTime
	nx := next.UTC()

	u.ReminderTime = &rt
	u.NextReminder = &nx
	u.EmailReminder = emailReminder
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// ReminderDue reports whether the sweep should handle this user at now.
func (u *User) ReminderDue(now time.Time) bool {
	if !u.EmailReminder || u.ReminderTime == nil || u.NextReminder == nil {
		return false
	}
	return !u.NextReminder.After(now)
}

func ValidReminderTime(s string) bool {
	return reminderRegex.MatchString(s)
}

func IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
