package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/haircarelog/haircarelog-api/internal/core/domain"
)

var (
	_ domain.UserRepository     = (*InMemoryUserRepository)(nil)
	_ domain.ScalpLogRepository = (*InMemoryScalpLogRepository)(nil)
)

// InMemoryUserRepository keeps copies so callers cannot mutate stored users.
type InMemoryUserRepository struct {
	store   map[string]*domain.User
	byEmail map[string]string

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store:   make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.ReminderTime != nil {
		rt := *u.ReminderTime
		c.ReminderTime = &rt
	}
	if u.NextReminder != nil {
		nr := *u.NextReminder
		c.NextReminder = &nr
	}
	if u.LastReminderSent != nil {
		ls := *u.LastReminderSent
		c.LastReminderSent = &ls
	}
	return &c
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return domain.ErrEmailAlreadyExists
	}
	r.store[user.ID] = cloneUser(user)
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.store[id]), nil
}

func (r *InMemoryUserRepository) UpdateReminder(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.store[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	src := cloneUser(user)
	u.ReminderTime = src.ReminderTime
	u.NextReminder = src.NextReminder
	u.EmailReminder = src.EmailReminder
	u.UpdatedAt = src.UpdatedAt
	return nil
}

func (r *InMemoryUserRepository) ListDueForReminder(ctx context.Context, now time.Time) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var due []*domain.User
	for _, u := range r.store {
		if u.ReminderDue(now) {
			due = append(due, cloneUser(u))
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].NextReminder.Before(*due[j].NextReminder)
	})
	return due, nil
}

func (r *InMemoryUserRepository) SetNextReminder(ctx context.Context, id string, next time.Time, lastSent *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.store[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	n := next.UTC()
	u.NextReminder = &n
	if lastSent != nil {
		ls := lastSent.UTC()
		u.LastReminderSent = &ls
	}
	return nil
}

type InMemoryScalpLogRepository struct {
	byUser map[string][]*domain.ScalpLog

	mu sync.RWMutex
}

func NewInMemoryScalpLogRepository() *InMemoryScalpLogRepository {
	return &InMemoryScalpLogRepository{
		byUser: make(map[string][]*domain.ScalpLog),
	}
}

func (r *InMemoryScalpLogRepository) Create(ctx context.Context, l *domain.ScalpLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logs := append(r.byUser[l.UserID], l)
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].CreatedAt.Before(logs[j].CreatedAt)
	})
	r.byUser[l.UserID] = logs
	return nil
}

func (r *InMemoryScalpLogRepository) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*domain.ScalpLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.ScalpLog
	for _, l := range r.byUser[userID] {
		if !l.CreatedAt.Before(since) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *InMemoryScalpLogRepository) CountByUserBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, l := range r.byUser[userID] {
		if !l.CreatedAt.Before(from) && l.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryScalpLogRepository) LatestByUser(ctx context.Context, userID string) (*domain.ScalpLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logs := r.byUser[userID]
	if len(logs) == 0 {
		return nil, domain.ErrLogNotFound
	}
	return logs[len(logs)-1], nil
}

func (r *InMemoryScalpLogRepository) ListByUser(ctx context.Context, userID string) ([]*domain.ScalpLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.ScalpLog, len(r.byUser[userID]))
	copy(out, r.byUser[userID])
	return out, nil
}

func (r *InMemoryScalpLogRepository) ExistsSince(ctx context.Context, userID string, since time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.byUser[userID] {
		if !l.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}
