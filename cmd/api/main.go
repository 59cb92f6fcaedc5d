package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/repository/sqlite"
	"github.com/spec-kit/helpdesk/internal/service"
)

type options struct {
	envFiles []string
	migrate  bool
	store    string
}

type store struct {
	users   repository.UserRepository
	tickets repository.TicketRepository
	pinger  repository.Pinger
	close   func()
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Fatalf("invalid flags: %v", err)
	}

	cfg, err := config.Load(opts.envFiles...)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if opts.store != "" {
		cfg.Store.Driver = strings.ToLower(opts.store)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(ctx, cfg, opts.migrate, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer st.close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, logger, cfg.Notification).RegisterHandlers()

	tokens := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.SessionTTL(), logger)
	cookies := auth.NewSessionCookie(cfg.Auth.CookieName, cfg.Auth.SessionTTL(), cfg.App.IsProduction(), logger)
	resolver := auth.NewResolver(cookies, tokens, st.users, logger)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: st.users,
		Tokens:   tokens,
		Logger:   logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: st.tickets,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:       handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, st.pinger, redis, metrics),
		Users:        handlers.NewUsersHandler(authService, cookies, logger),
		Tickets:      handlers.NewTicketsHandler(ticketService),
		Resolver:     resolver,
		LoginLimiter: httptransport.LoginRateLimiter(redis, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow(), logger),
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("helpdesk-api", pflag.ContinueOnError)
	flagSet.StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load before reading the environment")
	flagSet.BoolVar(&opts.migrate, "migrate", true, "apply database migrations on startup (postgres)")
	flagSet.StringVar(&opts.store, "store", "", "persistence backend: postgres or sqlite (overrides STORE_DRIVER)")

	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return opts, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return opts, nil
}

func openStore(ctx context.Context, cfg *config.Config, migrate bool, logger *zap.Logger) (*store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverSQLite:
		db, err := persistence.OpenSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		return &store{
			users:   sqlite.NewUserRepository(db.DB),
			tickets: sqlite.NewTicketRepository(db.DB),
			pinger:  db,
			close:   db.Close,
		}, nil
	default:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if migrate && cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		pool := pg.PoolHandle()
		return &store{
			users:   repository.NewUserRepository(pool),
			tickets: repository.NewTicketRepository(pool),
			pinger:  pg,
			close:   pg.Close,
		}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
