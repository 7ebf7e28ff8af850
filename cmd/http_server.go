package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aburizalp/ministry-management/internal"
	"github.com/aburizalp/ministry-management/internal/auth"
	authPostgres "github.com/aburizalp/ministry-management/internal/auth/postgres"
	"github.com/aburizalp/ministry-management/internal/core/events"
	"github.com/aburizalp/ministry-management/internal/event"
	eventPostgres "github.com/aburizalp/ministry-management/internal/event/postgres"
	"github.com/aburizalp/ministry-management/internal/finance"
	financePostgres "github.com/aburizalp/ministry-management/internal/finance/postgres"
	"github.com/aburizalp/ministry-management/internal/gate"
	"github.com/aburizalp/ministry-management/internal/hierarchy"
	hierarchyPostgres "github.com/aburizalp/ministry-management/internal/hierarchy/postgres"
	"github.com/aburizalp/ministry-management/internal/member"
	memberPostgres "github.com/aburizalp/ministry-management/internal/member/postgres"
	"github.com/aburizalp/ministry-management/internal/rbac"
	rbacPostgres "github.com/aburizalp/ministry-management/internal/rbac/postgres"
	"github.com/aburizalp/ministry-management/internal/scope"
	scopePostgres "github.com/aburizalp/ministry-management/internal/scope/postgres"
	"github.com/aburizalp/ministry-management/internal/transport/middleware"
	"github.com/aburizalp/ministry-management/internal/transport/rest"
	"github.com/aburizalp/ministry-management/internal/user"
	userPostgres "github.com/aburizalp/ministry-management/internal/user/postgres"
	"github.com/aburizalp/ministry-management/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config     *internal.Config
	DB         *sqlx.DB
	GormDB     *gorm.DB
	Router     *chi.Mux
	Handlers   rest.Handlers
	ScopeCache *scope.RedisCache
	Registry   *prometheus.Registry
	Metrics    *middleware.Metrics
	Logger     *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if deps.ScopeCache != nil {
			if err := deps.ScopeCache.Close(); err != nil {
				slog.Error("Redis close error", "error", err)
			}
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	var redisClient *redis.Client
	if deps.ScopeCache != nil {
		redisClient = deps.ScopeCache.Client()
	}
	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, redisClient, deps.Handlers, deps.Registry, deps.Metrics, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Repositories share the health connection so pool limits apply once.
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	// Startup fails on a malformed API contract.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := rest.LoadContract(ctx, "./api/openapi.yml"); err != nil {
		return nil, err
	}

	bus := events.NewEventBus(lg)

	var scopeCache *scope.RedisCache
	var cacheAPI scope.CacheAPI
	if config.Redis.URL != "" {
		scopeCache, err = scope.NewRedisCache(config.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize scope cache: %w", err)
		}
		scopeCache.SubscribeInvalidation(bus)
		cacheAPI = scopeCache
	} else {
		lg.Warn("redis URL not configured, scope contexts resolve from the database on every request")
	}

	var registry *prometheus.Registry
	var metrics *middleware.Metrics
	if config.Observability.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		metrics = middleware.NewMetrics(registry)
	}

	scopeRepo := scopePostgres.NewScopeRepository(gormDB)
	resolver := scope.NewResolver(scopeRepo, cacheAPI, lg)

	rbacRepo := rbacPostgres.NewRBACRepository(gormDB)
	accessGate := gate.New(rbacRepo, lg)

	if metrics != nil {
		resolver.WithMetrics(metrics.ScopeCacheHitsTotal, metrics.ScopeCacheMissesTotal)
		accessGate.WithMetrics(metrics.GateDecisionsTotal)
	}

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authRepo := authPostgres.NewAuthRepository(gormDB)
	authService := auth.NewService(authRepo, tokenGen, resolver, config.Security.BCryptCost)

	userRepo := userPostgres.NewUserRepository(gormDB)
	userService := user.NewService(userRepo, resolver, bus, config.Security.BCryptCost, lg)

	hierarchyRepo := hierarchyPostgres.NewHierarchyRepository(gormDB)
	hierarchyService := hierarchy.NewService(hierarchyRepo, lg)

	rbacService := rbac.NewService(rbacRepo, bus, lg)

	memberRepo := memberPostgres.NewMemberRepository(gormDB)
	memberService := member.NewService(memberRepo, hierarchyRepo, accessGate, lg)

	eventRepo := eventPostgres.NewEventRepository(gormDB)
	eventService := event.NewService(eventRepo, hierarchyRepo, memberRepo, accessGate, lg)

	financeRepo := financePostgres.NewFinanceRepository(gormDB)
	financeService := finance.NewService(financeRepo, memberRepo, accessGate, lg)

	handlers := rest.Handlers{
		Auth:      auth.NewHandler(authService),
		User:      user.NewHandler(userService),
		Hierarchy: hierarchy.NewHandler(hierarchyService),
		RBAC:      rbac.NewHandler(rbacService),
		Member:    member.NewHandler(memberService),
		Event:     event.NewHandler(eventService),
		Finance:   finance.NewHandler(financeService),
	}

	return &Dependencies{
		Config:     config,
		Logger:     lg,
		DB:         db,
		GormDB:     gormDB,
		Router:     chi.NewRouter(),
		Handlers:   handlers,
		ScopeCache: scopeCache,
		Registry:   registry,
		Metrics:    metrics,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
