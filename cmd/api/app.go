package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/haircarelog/haircarelog-api/internal/adapters/cache"
	adapterHTTP "github.com/haircarelog/haircarelog-api/internal/adapters/handler/http"
	"github.com/haircarelog/haircarelog-api/internal/adapters/mailer"
	"github.com/haircarelog/haircarelog-api/internal/adapters/photostore"
	"github.com/haircarelog/haircarelog-api/internal/adapters/repository"
	"github.com/haircarelog/haircarelog-api/internal/config"
	"github.com/haircarelog/haircarelog-api/internal/core/domain"
	"github.com/haircarelog/haircarelog-api/internal/core/report"
	"github.com/haircarelog/haircarelog-api/internal/core/services"
	"github.com/haircarelog/haircarelog-api/internal/core/workers"
	"github.com/haircarelog/haircarelog-api/internal/platform/logger"
)

const userCacheTTL = 10 * time.Minute

type app struct {
	router *gin.Engine
	worker *workers.ReminderWorker
	users  domain.UserRepository
	logs   domain.ScalpLogRepository

	closers []func() error
}

// appOptions lets tests swap out collaborators that talk to the outside world.
type appOptions struct {
	mailer domain.Mailer
	photos domain.PhotoStorage
}

func buildApp(ctx context.Context, cfg *config.Config, log *logger.Logger, opts appOptions) (*app, error) {
	a := &app{}

	var db *sqlx.DB
	switch cfg.DB.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory repositories, data is lost on restart")
		a.users = repository.NewInMemoryUserRepository()
		a.logs = repository.NewInMemoryScalpLogRepository()
	default:
		var err error
		db, err = repository.OpenPostgres(cfg.DB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		log.Info("database connected", "driver", cfg.DB.Driver, "host", cfg.DB.Host)
		a.users = repository.NewPostgresUserRepository(db)
		a.logs = repository.NewPostgresScalpLogRepository(db)
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		var err error
		rdb, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		a.users = repository.NewCachedUserRepository(a.users, cache.NewStore(rdb, "user", userCacheTTL), log)
		log.Info("redis connected", "host", cfg.Redis.Host)
	}

	mail := opts.mailer
	if mail == nil {
		if cfg.SendGrid.APIKey != "" {
			mail = mailer.NewSendGridMailer(cfg.SendGrid, log)
		} else {
			log.Warn("SENDGRID_API_KEY not set, emails are only logged")
			mail = mailer.NewLogMailer(log)
		}
	}

	photos := opts.photos
	if photos == nil && cfg.Storage.GCSBucket != "" {
		store, err := photostore.NewGCSPhotoStore(ctx, cfg.Storage, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("photo storage: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		photos = store
	}

	tokenService := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, a.users)
	authService := services.NewAuthService(a.users)
	logService := services.NewLogService(a.logs, photos)
	userService := services.NewUserService(a.users, cfg.ReportLocation)
	reportService := services.NewReportService(
		a.users,
		report.NewAggregator(a.logs),
		report.NewDocxRenderer(),
		mail,
		log.With("component", "report"),
		services.WithLocation(cfg.ReportLocation),
	)

	a.worker = workers.NewReminderWorker(a.users, a.logs, mail, log.With("component", "reminder"), cfg.ReminderSweepInterval, cfg.ReportLocation)

	a.router = adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:              adapterHTTP.NewAuthHandler(authService, tokenService, cfg.Auth.CookieSecure),
		LogHandler:               adapterHTTP.NewLogHandler(logService),
		UserHandler:              adapterHTTP.NewUserHandler(userService),
		ReportHandler:            adapterHTTP.NewReportHandler(reportService),
		TokenService:             tokenService,
		DB:                       db,
		Redis:                    rdb,
		Log:                      log,
		CORSAllowedOrigins:       cfg.CORSAllowedOrigins,
		RateLimitPerMinute:       cfg.RateLimitPerMinute,
		ReportRateLimitPerMinute: cfg.ReportRateLimitPerMinute,
		StartTime:                time.Now(),
	})

	return a, nil
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}
