package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/haircarelog/haircarelog-api/internal/core/domain"
)

var _ domain.UserRepository = (*PostgresUserRepository)(nil)

type PostgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

const userColumns = `id, name, email, password_hash, auth_provider, email_reminder,
		reminder_time, next_reminder, last_reminder_sent, created_at, updated_at`

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (:id, :name, :email, :password_hash, :auth_provider, :email_reminder,
		        :reminder_time, :next_reminder, :last_reminder_sent, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("repository: create user failed: %w", err)
	}

	return nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "id", id)
}

func (r *PostgresUserRepository) getOne(ctx context.Context, column, value string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: get user by %s failed: %w", column, err)
	}

	return &user, nil
}

func (r *PostgresUserRepository) UpdateReminder(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
		UPDATE users
		SET reminder_time = $1, next_reminder = $2, email_reminder = $3, updated_at = $4
		WHERE id = $5
	`

	res, err := r.db.ExecContext(ctx, query,
		user.ReminderTime, user.NextReminder, user.EmailReminder, user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("repository: update reminder failed: %w", err)
	}
	return expectOneRow(res, domain.ErrUserNotFound)
}

func (r *PostgresUserRepository) ListDueForReminder(ctx context.Context, now time.Time) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users
		WHERE email_reminder = TRUE
		  AND reminder_time IS NOT NULL
		  AND next_reminder <= $1
		ORDER BY next_reminder ASC`

	var users []*domain.User
	if err := r.db.SelectContext(ctx, &users, query, now); err != nil {
		return nil, fmt.Errorf("repository: list due reminders failed: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepository) SetNextReminder(ctx context.Context, id string, next time.Time, lastSent *time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
		UPDATE users
		SET next_reminder = $1, last_reminder_sent = COALESCE($2, last_reminder_sent)
		WHERE id = $3
	`

	res, err := r.db.ExecContext(ctx, query, next, lastSent, id)
	if err != nil {
		return fmt.Errorf("repository: set next reminder failed: %w", err)
	}
	return expectOneRow(res, domain.ErrUserNotFound)
}

func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
