package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/haircarelog/haircarelog-api/internal/core/domain"
)

var _ domain.ScalpLogRepository = (*PostgresScalpLogRepository)(nil)

type PostgresScalpLogRepository struct {
	db *sqlx.DB
}

func NewPostgresScalpLogRepository(db *sqlx.DB) *PostgresScalpLogRepository {
	return &PostgresScalpLogRepository{db: db}
}

// scalpLogRow mirrors the scalp_logs table. Nested values are jsonb.
type scalpLogRow struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	Symptoms        []byte    `db:"symptoms"`
	SymptomTiming   []byte    `db:"symptom_timing"`
	ScalpPhotos     []byte    `db:"scalp_photos"`
	ProductsUsed    []byte    `db:"products_used"`
	HaircareRoutine []byte    `db:"haircare_routine"`
	StressLevel     int       `db:"stress_level"`
	DietLifestyle   []byte    `db:"diet_lifestyle"`
	PersonalNotes   string    `db:"personal_notes"`
	CreatedAt       time.Time `db:"created_at"`
}

const scalpLogColumns = `id, user_id, symptoms, symptom_timing, scalp_photos, products_used,
		haircare_routine, stress_level, diet_lifestyle, personal_notes, created_at`

func (row *scalpLogRow) toDomain() (*domain.ScalpLog, error) {
	l := &domain.ScalpLog{
		ID:            row.ID,
		UserID:        row.UserID,
		StressLevel:   row.StressLevel,
		PersonalNotes: row.PersonalNotes,
		CreatedAt:     row.CreatedAt.UTC(),
	}

	fields := []struct {
		name string
		raw  []byte
		dst  interface{}
	}{
		{"symptoms", row.Symptoms, &l.Symptoms},
		{"symptom_timing", row.SymptomTiming, &l.SymptomTiming},
		{"scalp_photos", row.ScalpPhotos, &l.ScalpPhotos},
		{"products_used", row.ProductsUsed, &l.ProductsUsed},
		{"haircare_routine", row.HaircareRoutine, &l.HaircareRoutine},
		{"diet_lifestyle", row.DietLifestyle, &l.DietLifestyle},
	}
	for _, f := range fields {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s for log %s: %w", f.name, row.ID, err)
		}
	}

	if l.Symptoms == nil {
		l.Symptoms = domain.Symptoms{}
	}
	if l.ScalpPhotos == nil {
		l.ScalpPhotos = []string{}
	}
	return l, nil
}

func jsonArg(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *PostgresScalpLogRepository) Create(ctx context.Context, l *domain.ScalpLog) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	values := []interface{}{l.Symptoms, l.SymptomTiming, l.ScalpPhotos, l.ProductsUsed, l.HaircareRoutine, l.DietLifestyle}
	encoded := make([]string, len(values))
	for i, v := range values {
		s, err := jsonArg(v)
		if err != nil {
			return fmt.Errorf("repository: encode log %s: %w", l.ID, err)
		}
		encoded[i] = s
	}

	query := `
		INSERT INTO scalp_logs (` + scalpLogColumns + `)
		VALUES ($1, $2, $3::jsonb, $4::jsonb, $5::jsonb, $6::jsonb, $7::jsonb, $8, $9::jsonb, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.UserID,
		encoded[0], encoded[1], encoded[2], encoded[3], encoded[4],
		l.StressLevel,
		encoded[5],
		l.PersonalNotes, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: create log failed: %w", err)
	}
	return nil
}

func (r *PostgresScalpLogRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.ScalpLog, error) {
	var rows []scalpLogRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	logs := make([]*domain.ScalpLog, 0, len(rows))
	for i := range rows {
		l, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}

func (r *PostgresScalpLogRepository) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*domain.ScalpLog, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + scalpLogColumns + ` FROM scalp_logs
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at ASC`

	logs, err := r.list(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("repository: list logs since failed: %w", err)
	}
	return logs, nil
}

func (r *PostgresScalpLogRepository) ListByUser(ctx context.Context, userID string) ([]*domain.ScalpLog, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + scalpLogColumns + ` FROM scalp_logs
		WHERE user_id = $1
		ORDER BY created_at ASC`

	logs, err := r.list(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: list logs failed: %w", err)
	}
	return logs, nil
}

func (r *PostgresScalpLogRepository) CountByUserBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `SELECT COUNT(*) FROM scalp_logs WHERE user_id = $1 AND created_at >= $2 AND created_at < $3`

	var n int
	if err := r.db.GetContext(ctx, &n, query, userID, from, to); err != nil {
		return 0, fmt.Errorf("repository: count logs failed: %w", err)
	}
	return n, nil
}

func (r *PostgresScalpLogRepository) LatestByUser(ctx context.Context, userID string) (*domain.ScalpLog, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `SELECT ` + scalpLogColumns + ` FROM scalp_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var row scalpLogRow
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLogNotFound
		}
		return nil, fmt.Errorf("repository: latest log failed: %w", err)
	}
	return row.toDomain()
}

func (r *PostgresScalpLogRepository) ExistsSince(ctx context.Context, userID string, since time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `SELECT EXISTS (SELECT 1 FROM scalp_logs WHERE user_id = $1 AND created_at >= $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, since); err != nil {
		return false, fmt.Errorf("repository: exists since failed: %w", err)
	}
	return exists, nil
}
