package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitclass/internal/attendance"
	"fitclass/internal/booking"
	"fitclass/internal/class"
	"fitclass/internal/config"
	"fitclass/internal/db"
	"fitclass/internal/email"
	"fitclass/internal/events"
	"fitclass/internal/logger"
	"fitclass/internal/notify"
	"fitclass/internal/server"
	"fitclass/internal/store/memory"
	"fitclass/internal/telemetry"
)

// stores bundles the repositories one STORE_DRIVER provides.
type stores struct {
	classes    class.Repository
	bookings   booking.Repository
	attendance attendance.Repository
	directory  notify.Directory
	checks     []server.Check
	close      func() error
}

// @title FitClass API
// @version 1.0
// @description Class booking and waitlist API for gyms.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("Starting FitClass application")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, "fitclass", cfg.OTelEndpoint)
	if err != nil {
		logger.Fatalf("Failed to set up tracing: %v", err)
	}

	st, err := openStores(cfg)
	if err != nil {
		logger.Fatalf("Failed to open store: %v", err)
	}
	defer st.close()

	var bookingOpts []booking.Option
	var attendanceOpts []attendance.Option

	if cfg.KafkaEnabled() {
		producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaBookingTopic)
		defer producer.Close()
		bookingOpts = append(bookingOpts, booking.WithPublisher(producer))
		attendanceOpts = append(attendanceOpts, attendance.WithPublisher(producer))
		logger.Info("Kafka producer initialized", "topic", cfg.KafkaBookingTopic, "brokers", cfg.KafkaBrokers)
	}

	emailEnabled := cfg.EmailEnabled()
	if emailEnabled && st.directory == nil {
		logger.Warn("No member directory; booking e-mails disabled", "store_driver", cfg.StoreDriver, "hint", "set MEMBERS_FILE")
		emailEnabled = false
	}

	if emailEnabled {
		emailService := email.New(email.Config{
			From:     cfg.EmailFrom,
			FromName: cfg.EmailFromName,
			SMTPHost: cfg.SMTPHost,
			SMTPPort: cfg.SMTPPort,
			SMTPUser: cfg.SMTPUser,
			SMTPPass: cfg.SMTPPass,
		}, cfg.RedisAddr)
		defer emailService.Close()
		go emailService.Start(ctx)

		bookingOpts = append(bookingOpts, booking.WithNotifier(notify.NewNotifier(st.directory, emailService)))
		st.checks = append(st.checks, server.Check{Name: "redis", Ping: emailService.Ping})
		logger.Info("Email service initialized", "smtp_host", cfg.SMTPHost)
	}

	bookingService := booking.NewService(st.bookings, st.classes, bookingOpts...)
	services := server.Services{
		Classes:    class.NewService(st.classes, bookingService),
		Bookings:   bookingService,
		Attendance: attendance.NewService(st.attendance, st.classes, attendanceOpts...),
	}

	srv := server.New(cfg, services, st.checks...)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Errorf("Error flushing traces: %v", err)
	}

	logger.Info("Server stopped")
}

func openStores(cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory store; data is lost on restart")
		store := memory.New(memory.WithTimeout(cfg.StoreTimeout))
		st := &stores{
			classes:    store,
			bookings:   store,
			attendance: store,
			close:      func() error { return nil },
		}
		if cfg.MembersFile != "" {
			n, err := store.LoadMembers(cfg.MembersFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Members loaded", "count", n, "file", cfg.MembersFile)
			st.directory = store
		}
		return st, nil
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL, db.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		database.Close()
		return nil, err
	}
	logger.Info("Migrations completed")

	return &stores{
		classes:    class.NewRepository(database, cfg.StoreTimeout),
		bookings:   booking.NewRepository(database, cfg.StoreTimeout),
		attendance: attendance.NewRepository(database, cfg.StoreTimeout),
		directory:  notify.NewDirectory(database, cfg.StoreTimeout),
		checks:     []server.Check{{Name: "postgres", Ping: database.PingContext}},
		close:      database.Close,
	}, nil
}
