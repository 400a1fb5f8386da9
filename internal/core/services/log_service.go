package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haircarelog/haircarelog-api/internal/core/domain"
)

var ErrPhotoStorageUnavailable = errors.New("photo storage is not configured")

type LogService struct {
	repo   domain.ScalpLogRepository
	photos domain.PhotoStorage
	now    func() time.Time
}

// NewLogService accepts a nil photo storage; uploads then fail with
// ErrPhotoStorageUnavailable.
func NewLogService(repo domain.ScalpLogRepository, photos domain.PhotoStorage) *LogService {
	return &LogService{
		repo:   repo,
		photos: photos,
		now:    time.Now,
	}
}

type PhotoUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type CreateLogInput struct {
	UserID          string
	Symptoms        domain.Symptoms
	SymptomTiming   domain.SymptomTiming
	ProductsUsed    domain.ProductsUsed
	HaircareRoutine domain.HaircareRoutine
	StressLevel     int
	DietLifestyle   domain.DietLifestyle
	PersonalNotes   string
	Photo           *PhotoUpload
}

type MonthCount struct {
	Count int    `json:"log_count"`
	Month string `json:"month"`
}

type LastLogInfo struct {
	LastLogDate      time.Time `json:"last_log_date"`
	DaysSinceLastLog int       `json:"days_since_last_log"`
	LastLogID        string    `json:"last_log_id"`
}

type TrendPoint struct {
	LogID               string    `json:"log_id"`
	Date                time.Time `json:"date"`
	AverageSymptomScore string    `json:"average_symptom_score"`
	DaysSinceLog        int       `json:"days_since_log"`
}

func (s *LogService) Create(ctx context.Context, input CreateLogInput) (*domain.ScalpLog, error) {
	params := domain.NewScalpLogParams{
		UserID:          input.UserID,
		Symptoms:        input.Symptoms,
		SymptomTiming:   input.SymptomTiming,
		ProductsUsed:    input.ProductsUsed,
		HaircareRoutine: input.HaircareRoutine,
		StressLevel:     input.StressLevel,
		DietLifestyle:   input.DietLifestyle,
		PersonalNotes:   input.PersonalNotes,
	}

	// Validate before uploading anything.
	if _, err := domain.NewScalpLog(params); err != nil {
		return nil, err
	}

	if input.Photo != nil {
		if s.photos == nil {
			return nil, ErrPhotoStorageUnavailable
		}
		url, err := s.photos.Upload(ctx, input.UserID, input.Photo.Filename, input.Photo.ContentType, input.Photo.Body)
		if err != nil {
			return nil, fmt.Errorf("log service: failed to upload photo: %w", err)
		}
		params.PhotoURL = url
	}

	log, err := domain.NewScalpLog(params)
	if err != nil {
		return nil, err
	}
	log.ID = uuid.NewString()
	log.CreatedAt = s.now().UTC()

	if err := s.repo.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("log service: failed to create log: %w", err)
	}
	return log, nil
}

// MonthCount counts the logs of the calendar month containing now.
func (s *LogService) MonthCount(ctx context.Context, userID string) (*MonthCount, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)

	n, err := s.repo.CountByUserBetween(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("log service: failed to count logs: %w", err)
	}
	return &MonthCount{Count: n, Month: start.Month().String()}, nil
}

func (s *LogService) LastLogInfo(ctx context.Context, userID string) (*LastLogInfo, error) {
	last, err := s.repo.LatestByUser(ctx, userID)
	if errors.Is(err, domain.ErrLogNotFound) {
		return nil, domain.ErrNoLogs
	}
	if err != nil {
		return nil, fmt.Errorf("log service: failed to load last log: %w", err)
	}

	return &LastLogInfo{
		LastLogDate:      last.CreatedAt.UTC(),
		DaysSinceLastLog: daysBetween(last.CreatedAt, s.now()),
		LastLogID:        last.ID,
	}, nil
}

// SymptomTrend returns, oldest first, the mean of all tracked symptoms per log.
func (s *LogService) SymptomTrend(ctx context.Context, userID string) ([]TrendPoint, error) {
	logs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("log service: failed to list logs: %w", err)
	}
	if len(logs) == 0 {
		return nil, domain.ErrNoLogs
	}

	now := s.now()
	symptoms := domain.AllSymptoms()
	count := decimal.NewFromInt(int64(len(symptoms)))

	points := make([]TrendPoint, 0, len(logs))
	for _, l := range logs {
		var total int64
		for _, sym := range symptoms {
			total += int64(l.Symptoms.Severity(sym))
		}
		points = append(points, TrendPoint{
			LogID:               l.ID,
			Date:                l.CreatedAt.UTC(),
			AverageSymptomScore: decimal.NewFromInt(total).Div(count).StringFixed(2),
			DaysSinceLog:        daysBetween(l.CreatedAt, now),
		})
	}
	return points, nil
}

// daysBetween counts whole 24h periods from then to now.
func daysBetween(then, now time.Time) int {
	return int(math.Floor(now.Sub(then).Hours() / 24))
}
