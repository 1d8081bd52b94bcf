// Package saabal assembles the API process: storage, migrations, cache,
// object store, broker, services, router and the HTTP server lifecycle.
package saabal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/saabal/saabal-api/internal/blobstore"
	"github.com/saabal/saabal-api/internal/cache"
	"github.com/saabal/saabal-api/internal/config"
	"github.com/saabal/saabal-api/internal/lib/jwt"
	"github.com/saabal/saabal-api/internal/lib/rabbitmq"
	"github.com/saabal/saabal-api/internal/lib/sl"
	"github.com/saabal/saabal-api/internal/migrations"
	"github.com/saabal/saabal-api/internal/paymentprovider"
	advertisementservice "github.com/saabal/saabal-api/internal/services/advertisement"
	authservice "github.com/saabal/saabal-api/internal/services/auth"
	editorservice "github.com/saabal/saabal-api/internal/services/editor"
	lectureservice "github.com/saabal/saabal-api/internal/services/lecture"
	newsletterservice "github.com/saabal/saabal-api/internal/services/newsletter"
	offerservice "github.com/saabal/saabal-api/internal/services/offer"
	paymentservice "github.com/saabal/saabal-api/internal/services/payment"
	subscriptionservice "github.com/saabal/saabal-api/internal/services/subscription"
	userservice "github.com/saabal/saabal-api/internal/services/user"
	"github.com/saabal/saabal-api/internal/storage"
)

// App is the assembled API process.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
}

// New wires every component and returns the ready-to-run App.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		logger.Warn("redis unavailable, continuing without cache", sl.Err(err))
		cacheRedis = nil
	}

	blobs, err := blobstore.New(cfg.ObjectStore)
	if err != nil {
		return nil, err
	}

	var mail editorservice.MailPublisher
	if cfg.RabbitMQ.URL != "" {
		publisher, err := rabbitmq.Connect(cfg.RabbitMQ.URL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, credential mails disabled", sl.Err(err))
		} else {
			mail = publisher
		}
	}

	jwtMaker := jwt.New(
		cfg.JWTToken.AccessSecret,
		cfg.JWTToken.RefreshSecret,
		cfg.JWTToken.AccessTTL,
		cfg.JWTToken.RefreshTTL,
		cfg.JWTToken.ExchangeTTL,
	)
	providerClient := paymentprovider.NewClient(cfg.PayTech)

	newsletters := newsletterservice.New(db, blobs)
	services := Services{
		Auth:           authservice.New(db, jwtMaker),
		Users:          userservice.New(db),
		Subscriptions:  subscriptionservice.New(db, db),
		Editors:        editorservice.New(logger, db, blobs, mail),
		Newsletters:    newsletters,
		Categories:     newsletters,
		Offers:         offerservice.New(db),
		Lectures:       lectureservice.New(db),
		Advertisements: advertisementservice.New(logger, db, blobs, cacheRedis),
		Payments:       paymentservice.New(logger, cfg.PayTech, providerClient, db),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, db, services)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.Close()
		return err
	}
}
