package repository

import (
	"context"
	"time"

	"github.com/haircarelog/haircarelog-api/internal/core/domain"
	"github.com/haircarelog/haircarelog-api/internal/platform/logger"
)

var _ domain.UserRepository = (*CachedUserRepository)(nil)

type JSONCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}) error
	Delete(ctx context.Context, key string) error
}

// CachedUserRepository serves GetByID from the cache. Every authenticated
// request validates its token through that lookup.
type CachedUserRepository struct {
	next  domain.UserRepository
	cache JSONCache
	log   *logger.Logger
}

func NewCachedUserRepository(next domain.UserRepository, cache JSONCache, log *logger.Logger) *CachedUserRepository {
	if log == nil {
		log = logger.NewNop()
	}
	return &CachedUserRepository{
		next:  next,
		cache: cache,
		log:   log,
	}
}

// cachedUser keeps the password hash, which domain.User hides from JSON.
type cachedUser struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"password_hash"`
	AuthProvider     string     `json:"auth_provider"`
	EmailReminder    bool       `json:"email_reminder"`
	ReminderTime     *string    `json:"reminder_time"`
	NextReminder     *time.Time `json:"next_reminder"`
	LastReminderSent *time.Time `json:"last_reminder_sent"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toCached(u *domain.User) cachedUser {
	return cachedUser{
		ID: u.ID, Name: u.Name, Email: u.Email, PasswordHash: u.PasswordHash,
		AuthProvider: u.AuthProvider, EmailReminder: u.EmailReminder,
		ReminderTime: u.ReminderTime, NextReminder: u.NextReminder, LastReminderSent: u.LastReminderSent,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func (c cachedUser) toDomain() *domain.User {
	return &domain.User{
		ID: c.ID, Name: c.Name, Email: c.Email, PasswordHash: c.PasswordHash,
		AuthProvider: c.AuthProvider, EmailReminder: c.EmailReminder,
		ReminderTime: c.ReminderTime, NextReminder: c.NextReminder, LastReminderSent: c.LastReminderSent,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

func (r *CachedUserRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("user cache invalidation failed", "user_id", id, "error", err)
	}
}

func (r *CachedUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var cu cachedUser
	hit, err := r.cache.GetJSON(ctx, id, &cu)
	if err != nil {
		r.log.Warn("user cache read failed", "user_id", id, "error", err)
	}
	if hit {
		return cu.toDomain(), nil
	}

	user, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.SetJSON(ctx, id, toCached(user)); err != nil {
		r.log.Warn("user cache write failed", "user_id", id, "error", err)
	}
	return user, nil
}

func (r *CachedUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.next.Create(ctx, user)
}

func (r *CachedUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.next.GetByEmail(ctx, email)
}

func (r *CachedUserRepository) ListDueForReminder(ctx context.Context, now time.Time) ([]*domain.User, error) {
	return r.next.ListDueForReminder(ctx, now)
}

func (r *CachedUserRepository) UpdateReminder(ctx context.Context, user *domain.User) error {
	if err := r.next.UpdateReminder(ctx, user); err != nil {
		return err
	}
	r.invalidate(ctx, user.ID)
	return nil
}

func (r *CachedUserRepository) SetNextReminder(ctx context.Context, id string, next time.Time, lastSent *time.Time) error {
	if err := r.next.SetNextReminder(ctx, id, next, lastSent); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}
