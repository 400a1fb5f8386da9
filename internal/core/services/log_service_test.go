package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haircarelog/haircarelog-api/internal/core/domain"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestLogService_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	validInput := func() CreateLogInput {
		return CreateLogInput{
			UserID:       "user-1",
			Symptoms:     domain.Symptoms{domain.SymptomItching: 4},
			StressLevel:  5,
			ProductsUsed: domain.ProductsUsed{CatalogProducts: []string{"Argan Oil", ""}},
		}
	}

	t.Run("Success: JSON log without photo", func(t *testing.T) {
		repo := new(MockLogRepository)
		svc := NewLogService(repo, nil)
		svc.now = fixedNow(now)

		repo.On("Create", ctx, mock.AnythingOfType("*domain.ScalpLog")).Return(nil)

		log, err := svc.Create(ctx, validInput())

		require.NoError(t, err)
		assert.NotEmpty(t, log.ID)
		assert.Equal(t, now, log.CreatedAt)
		assert.Equal(t, []string{}, log.ScalpPhotos)
		assert.Equal(t, []string{"Argan Oil"}, log.ProductsUsed.CatalogProducts)
		assert.Len(t, log.Symptoms, len(domain.AllSymptoms()))
		repo.AssertExpectations(t)
	})

	t.Run("Success: photo is uploaded and linked", func(t *testing.T) {
		repo := new(MockLogRepository)
		photos := new(MockPhotoStorage)
		svc := NewLogService(repo, photos)

		body := strings.NewReader("jpeg-bytes")
		in := validInput()
		in.Photo = &PhotoUpload{Filename: "scalp.jpg", ContentType: "image/jpeg", Body: body}

		photos.On("Upload", ctx, "user-1", "scalp.jpg", "image/jpeg", body).
			Return("https://storage.googleapis.com/bucket/scalp/user-1/x.jpg", nil)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.ScalpLog")).Return(nil)

		log, err := svc.Create(ctx, in)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://storage.googleapis.com/bucket/scalp/user-1/x.jpg"}, log.ScalpPhotos)
		photos.AssertExpectations(t)
	})

	t.Run("Fail: invalid log is rejected before upload", func(t *testing.T) {
		repo := new(MockLogRepository)
		photos := new(MockPhotoStorage)
		svc := NewLogService(repo, photos)

		in := validInput()
		in.StressLevel = 0
		in.Photo = &PhotoUpload{Filename: "scalp.jpg", Body: strings.NewReader("x")}

		_, err := svc.Create(ctx, in)

		assert.ErrorIs(t, err, domain.ErrInvalidLog)
		photos.AssertNotCalled(t, "Upload")
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: photo without storage", func(t *testing.T) {
		svc := NewLogService(new(MockLogRepository), nil)

		in := validInput()
		in.Photo = &PhotoUpload{Filename: "scalp.jpg", Body: strings.NewReader("x")}

		_, err := svc.Create(ctx, in)

		assert.ErrorIs(t, err, ErrPhotoStorageUnavailable)
	})

	t.Run("Fail: upload error", func(t *testing.T) {
		repo := new(MockLogRepository)
		photos := new(MockPhotoStorage)
		svc := NewLogService(repo, photos)

		uploadErr := errors.New("bucket unavailable")
		in := validInput()
		in.Photo = &PhotoUpload{Filename: "scalp.jpg", Body: strings.NewReader("x")}
		photos.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", uploadErr)

		_, err := svc.Create(ctx, in)

		assert.ErrorIs(t, err, uploadErr)
		repo.AssertNotCalled(t, "Create")
	})
}

func TestLogService_MonthCount(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLogRepository)
	svc := NewLogService(repo, nil)
	svc.now = fixedNow(time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC))

	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	repo.On("CountByUserBetween", ctx, "user-1", from, to).Return(7, nil)

	mc, err := svc.MonthCount(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, &MonthCount{Count: 7, Month: "February"}, mc)
}

func TestLogService_LastLogInfo(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		repo := new(MockLogRepository)
		svc := NewLogService(repo, nil)
		svc.now = fixedNow(now)

		last := &domain.ScalpLog{ID: "log-9", CreatedAt: now.Add(-49 * time.Hour)}
		repo.On("LatestByUser", ctx, "user-1").Return(last, nil)

		info, err := svc.LastLogInfo(ctx, "user-1")

		require.NoError(t, err)
		assert.Equal(t, "log-9", info.LastLogID)
		assert.Equal(t, 2, info.DaysSinceLastLog)
	})

	t.Run("No logs", func(t *testing.T) {
		repo := new(MockLogRepository)
		svc := NewLogService(repo, nil)
		repo.On("LatestByUser", ctx, "user-1").Return(nil, domain.ErrLogNotFound)

		_, err := svc.LastLogInfo(ctx, "user-1")

		assert.ErrorIs(t, err, domain.ErrNoLogs)
	})
}

func TestLogService_SymptomTrend(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("Averages all tracked symptoms", func(t *testing.T) {
		repo := new(MockLogRepository)
		svc := NewLogService(repo, nil)
		svc.now = fixedNow(now)

		logs := []*domain.ScalpLog{
			{ID: "a", CreatedAt: now.AddDate(0, 0, -3), Symptoms: domain.Symptoms{domain.SymptomItching: 9, domain.SymptomDryness: 1}},
			{ID: "b", CreatedAt: now.Add(-time.Hour), Symptoms: domain.Symptoms{domain.SymptomRedness: 2}},
			{ID: "c", CreatedAt: now, Symptoms: nil},
		}
		repo.On("ListByUser", ctx, "user-1").Return(logs, nil)

		points, err := svc.SymptomTrend(ctx, "user-1")

		require.NoError(t, err)
		require.Len(t, points, 3)
		assert.Equal(t, "1.11", points[0].AverageSymptomScore)
		assert.Equal(t, 3, points[0].DaysSinceLog)
		assert.Equal(t, "0.22", points[1].AverageSymptomScore)
		assert.Equal(t, 0, points[1].DaysSinceLog)
		assert.Equal(t, "0.00", points[2].AverageSymptomScore)
	})

	t.Run("No logs", func(t *testing.T) {
		repo := new(MockLogRepository)
		svc := NewLogService(repo, nil)
		repo.On("ListByUser", ctx, "user-1").Return([]*domain.ScalpLog{}, nil)

		_, err := svc.SymptomTrend(ctx, "user-1")

		assert.ErrorIs(t, err, domain.ErrNoLogs)
	})
}
