package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haircarelog/haircarelog-api/internal/core/domain"
)

type UserService struct {
	repo domain.UserRepository
	loc  *time.Location
	now  func() time.Time
}

// NewUserService schedules reminders in loc; nil means UTC.
func NewUserService(repo domain.UserRepository, loc *time.Location) *UserService {
	if loc == nil {
		loc = time.UTC
	}
	return &UserService{
		repo: repo,
		loc:  loc,
		now:  time.Now,
	}
}

type SetReminderInput struct {
	UserID       string
	ReminderTime string
	// EmailReminder keeps the stored preference when nil.
	EmailReminder *bool
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("user service: failed to load user: %w", err)
	}
	return user, nil
}

func (s *UserService) SetReminder(ctx context.Context, input SetReminderInput) (*domain.User, error) {
	next, err := NextReminder(input.ReminderTime, s.now().In(s.loc))
	if err != nil {
		return nil, err
	}

	user, err := s.Get(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	enabled := user.EmailReminder
	if input.EmailReminder != nil {
		enabled = *input.EmailReminder
	}

	if err := user.SetReminder(input.ReminderTime, enabled, next); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateReminder(ctx, user); err != nil {
		return nil, fmt.Errorf("user service: failed to save reminder: %w", err)
	}
	return user, nil
}
