package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Evgen-Mutagen/qr-wallet/internal/controller"
	"github.com/Evgen-Mutagen/qr-wallet/internal/events"
	"github.com/Evgen-Mutagen/qr-wallet/internal/middlewareinternal"
	"github.com/Evgen-Mutagen/qr-wallet/internal/repository"
	"github.com/Evgen-Mutagen/qr-wallet/internal/service"
	"github.com/Evgen-Mutagen/qr-wallet/internal/util/qr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	cfg       *Config
	Router    *chi.Mux
	store     repository.Store
	publisher events.Publisher
	Logger    *zap.Logger
	Server    *http.Server
}

// New wires the services on top of store and publisher. The App owns both
// and closes them in Close.
func New(cfg *Config, store repository.Store, publisher events.Publisher, logger *zap.Logger) *App {
	if publisher == nil {
		publisher = events.Nop{}
	}
	app := &App{
		cfg:       cfg,
		Router:    chi.NewRouter(),
		store:     store,
		publisher: publisher,
		Logger:    logger,
	}

	app.initRouter()
	return app
}

// NewFromConfig opens the configured store and event publisher.
func NewFromConfig(cfg *Config, logger *zap.Logger) (*App, error) {
	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	publisher, err := openPublisher(cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	return New(cfg, store, publisher, logger), nil
}

func openStore(cfg *Config, logger *zap.Logger) (repository.Store, error) {
	switch cfg.StoreBackend {
	case StorePostgres:
		db, err := repository.NewDatabase(repository.DatabaseConfig{
			DSN:            cfg.DatabaseURI,
			MigrationsPath: cfg.MigrationsPath,
			MaxOpenConns:   cfg.DBMaxConns,
		})
		if err != nil {
			logger.Error("Database initialization failed",
				zap.String("dsn", cfg.MaskDBPassword()),
				zap.Error(err))
			return nil, fmt.Errorf("database initialization failed: %w", err)
		}
		logger.Info("Database initialized successfully",
			zap.String("migrations_path", cfg.MigrationsPath))
		return db, nil

	case StoreMemory:
		logger.Warn("Using in-memory store, data is lost on restart")
		return repository.NewMemoryStore(), nil

	default:
		store, err := repository.NewRedisStore(repository.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			logger.Error("Redis initialization failed",
				zap.String("addr", cfg.RedisAddr),
				zap.Error(err))
			return nil, fmt.Errorf("redis initialization failed: %w", err)
		}
		logger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))
		return store, nil
	}
}

func openPublisher(cfg *Config, logger *zap.Logger) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		return events.Nop{}, nil
	}
	publisher, err := events.Connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	logger.Info("Publishing wallet events", zap.String("nats_url", cfg.NATSURL))
	return publisher, nil
}

func (a *App) initRouter() {
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.RealIP)
	a.Router.Use(middleware.Logger)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(middleware.Compress(5))
	a.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Services
	userRepo := repository.NewUserRepository(a.store)
	txnRepo := repository.NewTransactionRepository(a.store)
	paymentRepo := repository.NewPaymentRepository(a.store)

	authService := service.NewAuthService(userRepo, a.cfg.JWTSecretKey, a.cfg.BcryptCost)
	transactionService := service.NewTransactionService(txnRepo, qr.NewPNGEncoder(a.cfg.QRSize), a.publisher, a.Logger)
	paymentService := service.NewPaymentService(paymentRepo, a.publisher, a.Logger, a.cfg.SingleUse)
	balanceService := service.NewBalanceService(userRepo, paymentRepo)

	logger := a.Logger
	// Controllers
	authController := controller.NewAuthController(authService, logger)
	transactionController := controller.NewTransactionController(transactionService, logger)
	paymentController := controller.NewPaymentController(paymentService, logger)
	balanceController := controller.NewBalanceController(balanceService, logger)

	// Public routes
	a.Router.Get("/", controller.Index)
	a.Router.Post("/register", authController.Register)
	a.Router.Post("/login", authController.Login)

	// Protected routes
	a.Router.Group(func(r chi.Router) {
		r.Use(middlewareinternal.JWTAuthMiddleware(authService))

		r.Get("/generate-qr", transactionController.GenerateQR)
		r.Post("/process-payment", paymentController.ProcessPayment)
		r.Get("/balance", balanceController.GetBalance)
	})
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.Server = &http.Server{
		Addr:    a.cfg.RunAddress,
		Handler: a.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("Starting HTTP server",
			zap.String("address", a.cfg.RunAddress))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("Shutting down server...")
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.Server.Shutdown(ctx)
}

func (a *App) Close() error {
	return errors.Join(a.publisher.Close(), a.store.Close())
}
