package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/api"
	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/mailer"
	"github.com/erazemk/najdeno/internal/relay"
	"github.com/erazemk/najdeno/internal/store"
	"github.com/erazemk/najdeno/internal/tracking"
	"github.com/erazemk/najdeno/internal/web"
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		// Generated on first run and kept in the settings table.
		if jwtSecret, err = store.GetJWTSecret(ctx, database); err != nil {
			return fmt.Errorf("loading JWT secret: %w", err)
		}
	}

	revoker, closeRevoker, err := newRevoker(ctx, database)
	if err != nil {
		return err
	}
	defer closeRevoker()

	sender, err := newSender()
	if err != nil {
		return err
	}

	svc := tracking.New(database)
	svc.ForceFoundOnScan = cfg.ForceFoundOnScan
	svc.NearbyInStore = cfg.NearbyInStore

	msgRelay := &relay.Relay{DB: database, Sender: sender}

	apiRouter := api.NewRouter(api.Deps{
		DB:        database,
		JWTSecret: jwtSecret,
		Revoker:   revoker,
		Tracking:  svc,
		Relay:     msgRelay,
	})
	webRouter, err := web.NewRouter(web.Deps{
		DB:        database,
		JWTSecret: jwtSecret,
		Revoker:   revoker,
		Tracking:  svc,
		Relay:     msgRelay,
	})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("GET /healthz", healthHandler(database))
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "mail", cfg.MailEnabled(), "redis", cfg.RedisEnabled())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// newRevoker picks Redis when configured and the database otherwise.
func newRevoker(ctx context.Context, database *db.DB) (auth.Revoker, func(), error) {
	if !cfg.RedisEnabled() {
		return &store.TokenRevoker{DB: database}, func() {}, nil
	}

	rdb, err := auth.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("token revocation uses redis", "addr", cfg.RedisAddr)
	return auth.NewRedisRevoker(rdb), func() { rdb.Close() }, nil
}

func newSender() (mailer.Sender, error) {
	if !cfg.MailEnabled() {
		slog.Warn("SMTP_HOST not set, email copies are disabled")
		return mailer.Disabled{}, nil
	}

	sender, err := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.MailFrom,
		Timeout:  cfg.MailTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring mail: %w", err)
	}
	return sender, nil
}

func healthHandler(database *db.DB) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := database.PingContext(ctx); err != nil {
			slog.Error("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	})
}
