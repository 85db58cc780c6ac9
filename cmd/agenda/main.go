package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/nexgen-digital/agenda-bookings/internal/availability"
	"github.com/nexgen-digital/agenda-bookings/internal/booking"
	"github.com/nexgen-digital/agenda-bookings/internal/calendar"
	"github.com/nexgen-digital/agenda-bookings/internal/http/handlers"
	"github.com/nexgen-digital/agenda-bookings/internal/picker"
	"github.com/nexgen-digital/agenda-bookings/internal/schedule"
	"github.com/nexgen-digital/agenda-bookings/pkg/config"
	"github.com/nexgen-digital/agenda-bookings/pkg/events"
	"github.com/nexgen-digital/agenda-bookings/pkg/logger"
	"github.com/nexgen-digital/agenda-bookings/pkg/mailer"
	mw "github.com/nexgen-digital/agenda-bookings/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	loc, err := schedule.LoadZone(cfg.Calendar.Timezone)
	if err != nil {
		logger.Error("Failed to load calendar timezone", "error", err)
		os.Exit(1)
	}

	// Connect to event bus when configured, otherwise run without one
	var eventBus events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		bus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer bus.Close()
		eventBus = bus
	}

	var mail mailer.Service
	switch cfg.Email.Provider {
	case "mailersend":
		mail = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	case "smtp":
		mail = mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.FromEmail, cfg.Email.SMTPUser, cfg.Email.SMTPPass)
	default:
		mail = mailer.NewDevMailer()
	}

	// Initialize services
	cal := calendar.NewWebhookClient(cfg.Calendar.BaseURL, cfg.Calendar.Timeout, loc)
	resolver := availability.NewResolver(cal, eventBus)
	submitter := booking.NewSubmitter(cal, eventBus, mail)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()

	sessions := picker.NewStore(cfg.Session.TTL, loc)
	sessions.StartSweeper(sweepCtx, cfg.Session.SweepInterval)

	// Initialize handlers
	h := handlers.New(sessions, resolver, submitter, loc)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("agenda"))
	r.Use(mw.Logging)
	r.Use(mw.Recover)

	// CORS: the picker is embedded in browsers on other origins
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000", "*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(mw.Health)

	// Routes
	r.Mount("/v1", h.Routes())

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down agenda service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Agenda service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting agenda service", "port", cfg.Server.Port, "calendar", cfg.Calendar.BaseURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Agenda service error", "error", err)
		os.Exit(1)
	}
}
