package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/paysplit/internal/auth"
	"github.com/mmynk/paysplit/internal/config"
	"github.com/mmynk/paysplit/internal/middleware"
	"github.com/mmynk/paysplit/internal/notify"
	"github.com/mmynk/paysplit/internal/payment"
	"github.com/mmynk/paysplit/internal/realtime"
	"github.com/mmynk/paysplit/internal/reminder"
	"github.com/mmynk/paysplit/internal/report"
	"github.com/mmynk/paysplit/internal/service"
	"github.com/mmynk/paysplit/internal/storage/sqlite"
	"github.com/mmynk/paysplit/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	configPath := pflag.StringP("config", "c", getEnv("PAYSPLIT_CONFIG", ""), "path to a YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg, logger); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	hub := realtime.NewHub(cfg.Server.CORSOrigin)
	defer hub.Close()

	channels := []notify.Channel{notify.NewInAppChannel(hub)}
	if cfg.SMTP.Enabled {
		channels = append(channels, notify.NewEmailChannel(store, notify.SMTPSettings{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}))
		slog.Info("Email notifications enabled", "host", cfg.SMTP.Host)
	}
	dispatcher := notify.NewDispatcher(channels...)
	defer dispatcher.Wait()

	if cfg.Razorpay.KeyID == "" {
		slog.Warn("Razorpay key is not configured; payment orders will fail")
	}
	gateway := payment.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.BaseURL)

	jwtManager := auth.NewJWTManager(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	services := service.New(service.Deps{
		Store:         store,
		Authenticator: auth.NewPasswordAuthenticator(store),
		JWT:           jwtManager,
		Gateway:       gateway,
		Publisher:     hub,
		Notifier:      dispatcher,
		Currency:      cfg.Razorpay.Currency,
		Logger:        logger,
	})

	requireAuth := middleware.RequireAuthHTTP(jwtManager)

	r := mux.NewRouter()
	services.Register(func(path string, handler http.Handler) {
		r.PathPrefix(path).Handler(handler)
	})
	report.NewHandler(store, cfg.Razorpay.Currency).Routes(r, requireAuth)
	r.Handle("/ws", requireAuth(hub)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	if cfg.Reminder.Enabled {
		reminders := reminder.New(store, dispatcher)
		if err := reminders.Start(cfg.Reminder.Schedule); err != nil {
			return err
		}
		defer reminders.Stop(context.Background())
	}

	// Add logging and CORS middleware
	handler := middleware.CORS(cfg.Server.CORSOrigin)(middleware.HTTPLogging(r))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
