package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Freeeeeet/tutoring_bot/internal/apiclient"
	"github.com/Freeeeeet/tutoring_bot/internal/app"
	"github.com/Freeeeeet/tutoring_bot/internal/chat"
	"github.com/Freeeeeet/tutoring_bot/internal/config"
	"github.com/Freeeeeet/tutoring_bot/internal/controller"
	"github.com/Freeeeeet/tutoring_bot/internal/httpserver"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/repository"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
	"github.com/Freeeeeet/tutoring_bot/internal/session"
)

// reminderSource собирает для планировщика текущего пользователя и его уроки
type reminderSource struct {
	users   *service.UserService
	lessons *service.LessonService
}

func (r reminderSource) Current(ctx context.Context, sess *model.Session) (*model.User, error) {
	return r.users.Current(ctx, sess)
}

func (r reminderSource) StartingSoon(ctx context.Context, sess *model.Session, role model.Role, window time.Duration) ([]model.Lesson, error) {
	return r.lessons.StartingSoon(ctx, sess, role, window)
}

func main() {
	envFile := pflag.String("env-file", ".env", "path to .env file")
	migrateOnly := pflag.Bool("migrate-only", false, "apply migrations and exit")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting tutoring bot",
		zap.String("environment", cfg.Environment),
		zap.String("api", cfg.APIBaseURL),
		zap.String("session_backend", cfg.SessionBackend),
		zap.Int("token_length", len(cfg.TelegramToken)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *migrateOnly, logger); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}
	logger.Info("Bot stopped")
}

func run(ctx context.Context, cfg *config.Config, migrateOnly bool, logger *zap.Logger) error {
	ops := httpserver.New(cfg.HTTPAddr, logger.Named("http"))

	store, closeStore, err := openSessionStore(ctx, cfg, migrateOnly, ops, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	if migrateOnly {
		return nil
	}

	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, logger)
	sessions := session.NewService(store, logger)
	guard := session.NewGuard(sessions, api, logger)

	// хаб создаётся раньше контроллера, доставка идёт через замыкание
	var ctrl *controller.BotController
	hub := chat.NewHub(cfg.ChatWSURL, func(telegramID int64, msg model.Message) {
		if ctrl != nil {
			ctrl.Deliver(telegramID, msg)
		}
	}, logger)
	defer hub.CloseAll()

	users := service.NewUserService(api, sessions, logger)
	lessons := service.NewLessonService(api, time.Local, logger)
	tutors := service.NewTutorService(api, logger)
	payments := service.NewPaymentService(api, logger)
	chats := service.NewChatService(api, hub, logger)

	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	ctrl = controller.NewBotController(b, controller.Services{
		Users:    users,
		Lessons:  lessons,
		Tutors:   tutors,
		Payments: payments,
		Chat:     chats,
		Guard:    guard,
	}, logger)
	if err := ctrl.RegisterHandlers(ctx); err != nil {
		return fmt.Errorf("register handlers: %w", err)
	}

	scheduler := app.NewScheduler(cfg.ReminderSchedule, cfg.ReminderWindow, sessions, guard,
		reminderSource{users: users, lessons: lessons}, ctrl.Notify, logger.Named("scheduler"))
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ctrl.Start(gctx) })
	g.Go(func() error { return ops.Run(gctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openSessionStore поднимает хранилище токенов и регистрирует его health check
func openSessionStore(ctx context.Context, cfg *config.Config, migrateOnly bool, ops *httpserver.Server, logger *zap.Logger) (session.Store, func(), error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		if migrateOnly {
			logger.Info("Redis backend has no migrations")
			return nil, func() {}, nil
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		repo := repository.NewRedisSessionRepository(client)
		if err := repo.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		ops.AddCheck("redis", repo.Ping)
		logger.Info("Connected to redis", zap.String("addr", cfg.RedisAddr))
		return repo, func() { client.Close() }, nil

	default:
		pool, err := pgxpool.New(ctx, cfg.DBDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}

		migrator, err := app.NewMigrator(pool, logger)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		err = migrator.Run(ctx)
		migrator.Close()
		if err != nil {
			pool.Close()
			return nil, nil, err
		}

		repo := repository.NewSessionRepository(pool)
		ops.AddCheck("postgres", repo.Ping)
		logger.Info("Connected to postgres")
		return repo, pool.Close, nil
	}
}
