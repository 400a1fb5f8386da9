package services

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/haircarelog/haircarelog-api/internal/core/domain"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateReminder(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) ListDueForReminder(ctx context.Context, now time.Time) ([]*domain.User, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) SetNextReminder(ctx context.Context, id string, next time.Time, lastSent *time.Time) error {
	return m.Called(ctx, id, next, lastSent).Error(0)
}

type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) Create(ctx context.Context, l *domain.ScalpLog) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockLogRepository) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*domain.ScalpLog, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScalpLog), args.Error(1)
}

func (m *MockLogRepository) CountByUserBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockLogRepository) LatestByUser(ctx context.Context, userID string) (*domain.ScalpLog, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScalpLog), args.Error(1)
}

func (m *MockLogRepository) ListByUser(ctx context.Context, userID string) ([]*domain.ScalpLog, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScalpLog), args.Error(1)
}

func (m *MockLogRepository) ExistsSince(ctx context.Context, userID string, since time.Time) (bool, error) {
	args := m.Called(ctx, userID, since)
	return args.Bool(0), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendReport(ctx context.Context, msg domain.ReportEmail) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockMailer) SendReminder(ctx context.Context, to, name string) error {
	return m.Called(ctx, to, name).Error(0)
}

type MockPhotoStorage struct {
	mock.Mock
}

func (m *MockPhotoStorage) Upload(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, userID, filename, contentType, r)
	return args.String(0), args.Error(1)
}
