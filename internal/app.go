// internal/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	router "fintrack/internal/api"
	"fintrack/internal/api/handler"
	"fintrack/internal/auth"
	"fintrack/internal/config"
	"fintrack/internal/events"
	"fintrack/internal/repository"
	"fintrack/internal/repository/memory"
	"fintrack/internal/repository/postgres"
	"fintrack/internal/service"
	"fintrack/internal/util"
	"fintrack/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB // nil with the memory backend

	// Repositories
	UserRepository        repository.UserRepository
	TransactionRepository repository.TransactionRepository

	// Services
	AuthService   service.AuthService
	LedgerService service.LedgerService
	ReportService service.ReportService

	Publisher events.Publisher

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{Logger: util.GetLogger()}
}

// Initialize loads configuration from the environment and builds every component.
func (app *Application) Initialize(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return app.InitializeWithConfig(ctx, cfg)
}

// InitializeWithConfig builds every component from an already validated cfg.
func (app *Application) InitializeWithConfig(ctx context.Context, cfg *config.AppConfig) error {
	app.Config = cfg

	// 1. Initialize Logger
	util.InitLogger(cfg.LogLevel)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.", "backend", cfg.DataBackend)

	// Amounts travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// 2. Storage
	if err := app.initRepositories(ctx); err != nil {
		return err
	}

	// 3. Ledger events
	if cfg.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to connect to AMQP broker: %w", err)
		}
		app.Publisher = publisher
		app.Logger.Info("Ledger events will be published.", "exchange", cfg.AMQPExchange)
	} else {
		app.Publisher = events.NopPublisher{}
	}

	// 4. Initialize Services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	app.AuthService = service.NewAuthService(app.UserRepository, tokens)
	app.LedgerService = service.NewLedgerService(app.TransactionRepository, app.Publisher, app.Logger)
	app.ReportService = service.NewReportService(app.TransactionRepository)
	app.Logger.Info("Services initialized.")

	// 5. Initialize HTTP Handlers and Router
	app.HTTPHandler = router.NewRouter(router.Handlers{
		Auth:          handler.NewAuthHandler(app.AuthService, app.Logger),
		Transactions:  handler.NewTransactionHandler(app.LedgerService, app.ReportService, app.Logger),
		Authenticator: app.AuthService,
	}, cfg.RequestTimeout, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

func (app *Application) initRepositories(ctx context.Context) error {
	switch app.Config.DataBackend {
	case config.BackendMemory:
		app.UserRepository = memory.NewUserStore()
		app.TransactionRepository = memory.NewTransactionStore()
		app.Logger.Warn("Using in-memory storage; data will not survive a restart.")
		return nil
	case config.BackendPostgres:
	default:
		return fmt.Errorf("unsupported data backend %q", app.Config.DataBackend)
	}

	database, err := db.NewPostgresDB(ctx, app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if app.Config.AutoMigrate {
		if err := db.RunMigrations(app.DB.DB, db.Up); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		app.Logger.Info("Database schema is up to date.")
	}

	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.Logger.Info("Repositories initialized.")
	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")

	var errs []error
	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			app.Logger.Error("Failed to close event publisher", "error", err)
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		} else {
			app.Logger.Info("Database connection closed.")
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	app.Logger.Info("Application shut down gracefully.")
	return nil
}
