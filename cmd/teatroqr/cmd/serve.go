package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"teatroqr/config"
	"teatroqr/internal/adapters/email"
	"teatroqr/internal/adapters/qrcode"
	"teatroqr/internal/adapters/ticket"
	deliveryhttp "teatroqr/internal/delivery/http"
	"teatroqr/internal/delivery/http/controllers"
	"teatroqr/internal/repository/postgres"
	"teatroqr/internal/services"
)

var (
	migrateOnStart bool
	dbWait         time.Duration

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
)

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", true, "apply pending migrations before serving")
	serveCmd.Flags().DurationVar(&dbWait, "db-wait", 30*time.Second, "how long to wait for the database at startup")
}

func runServer(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DBUrl, postgres.PoolOptions{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}, dbWait)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrateOnStart {
		if err := postgres.MigrateUp(cfg.DBUrl); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SMTP: email.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
			StartTLS: cfg.Email.SMTPStartTLS,
		},
		SES: email.SESConfig{
			Region:          cfg.Email.AWSRegion,
			AccessKeyID:     cfg.Email.AWSAccessKeyID,
			SecretAccessKey: cfg.Email.AWSSecretAccessKey,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}

	workRepo := postgres.NewWorkRepository(db)
	attendeeRepo := postgres.NewAttendeeRepository(db)
	tokens := ticket.NewGenerator()
	qr := qrcode.NewRenderer(cfg.Ticket.QRSize)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	workService := services.NewWorkService(workRepo)
	registrationService := services.NewRegistrationService(
		attendeeRepo, workRepo, tokens, qr, emailService,
		cfg.Ticket.VerifyBaseURL, cfg.Email.NotifyTimeout, logger,
	)
	attendeeService := services.NewAttendeeService(attendeeRepo, tokens, qr, cfg.Ticket.VerifyBaseURL)
	validationService := services.NewValidationService(attendeeRepo)

	handler := deliveryhttp.NewHandler(logger, cfg.CORSAllowedOrigins, deliveryhttp.Controllers{
		Works:      controllers.NewWorkController(logger, workService),
		Attendees:  controllers.NewAttendeeController(logger, registrationService, attendeeService),
		Validation: controllers.NewValidationController(logger, validationService),
		Health:     controllers.NewHealthController(logger, db),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// Registration waits for the email send, bounded by NOTIFY_TIMEOUT.
		WriteTimeout:   cfg.Email.NotifyTimeout + 15*time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr, "env", cfg.Environment, "email_provider", cfg.Email.Provider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Email.NotifyTimeout+5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
