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

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/msaada/donation-platform/internal"
	"github.com/msaada/donation-platform/internal/auth"
	authpostgres "github.com/msaada/donation-platform/internal/auth/postgres"
	"github.com/msaada/donation-platform/internal/core/events"
	"github.com/msaada/donation-platform/internal/donation"
	donationpostgres "github.com/msaada/donation-platform/internal/donation/postgres"
	"github.com/msaada/donation-platform/internal/mpesa"
	"github.com/msaada/donation-platform/internal/project"
	projectpostgres "github.com/msaada/donation-platform/internal/project/postgres"
	"github.com/msaada/donation-platform/internal/stats"
	statspostgres "github.com/msaada/donation-platform/internal/stats/postgres"
	"github.com/msaada/donation-platform/internal/transport/rest"
	"github.com/msaada/donation-platform/pkg/logger"
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
	Config          *internal.Config
	DB              *sqlx.DB
	GormDB          *gorm.DB
	Router          *chi.Mux
	Logger          *slog.Logger
	AuthHandler     *auth.Handler
	ProjectHandler  *project.Handler
	DonationHandler *donation.Handler
	WebhookHandler  *donation.WebhookHandler
	StatsHandler    *stats.Handler
	Sweeper         *donation.Sweeper
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	// background reconciliation for donations stuck in pending
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	deps.Sweeper.Start(sweepCtx)

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
		stopSweeper()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		stopSweeper()
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		deps.AuthHandler,
		deps.ProjectHandler,
		deps.DonationHandler,
		deps.WebhookHandler,
		deps.StatsHandler,
		deps.Logger,
	)
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

	// gorm shares the pgx pool the health check pings
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	// repositories
	adminRepo := authpostgres.NewAdminRepository(gormDB)
	projectRepo := projectpostgres.NewProjectRepository(gormDB)
	donationRepo := donationpostgres.NewDonationRepository(gormDB)
	statsRepo := statspostgres.NewStatsRepository(gormDB)

	// services
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(adminRepo, tokenGen, config.Security.BCryptCost, lg)
	projectService := project.NewService(projectRepo, lg)
	projectService.RegisterEventHandlers(eventBus)

	mpesaClient := mpesa.NewClient(mpesa.Config{
		BaseURL:        config.Mpesa.BaseURL,
		ConsumerKey:    config.Mpesa.ConsumerKey,
		ConsumerSecret: config.Mpesa.ConsumerSecret,
		Passkey:        config.Mpesa.Passkey,
		ShortCode:      config.Mpesa.ShortCode,
		CallbackURL:    config.Mpesa.CallbackURL,
		PushTimeout:    config.Mpesa.PushTimeout,
	}, lg)

	donationService := donation.NewService(donationRepo, projectService, mpesaClient, eventBus, lg)
	statsService := stats.NewService(statsRepo, lg)

	sweeper := donation.NewSweeper(donationRepo, config.Reconcile.Interval, config.Reconcile.PendingAfter, lg)

	return &Dependencies{
		Config:          config,
		Logger:          lg,
		DB:              db,
		GormDB:          gormDB,
		Router:          chi.NewRouter(),
		AuthHandler:     auth.NewHandler(authService),
		ProjectHandler:  project.NewHandler(projectService),
		DonationHandler: donation.NewHandler(donationService, lg),
		WebhookHandler:  donation.NewWebhookHandler(donationService, lg),
		StatsHandler:    stats.NewHandler(statsService),
		Sweeper:         sweeper,
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
