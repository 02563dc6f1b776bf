package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/medreminder/internal/handler"
	"github.com/vcscsvcscs/medreminder/internal/middleware"
	"github.com/vcscsvcscs/medreminder/internal/notify"
	"github.com/vcscsvcscs/medreminder/internal/pdf"
	"github.com/vcscsvcscs/medreminder/internal/reminder"
	"github.com/vcscsvcscs/medreminder/internal/service"
	"go.uber.org/zap"
)

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the reminder sessions and the dose scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, *envFile)
		},
	}
}

func serve(ctx context.Context, envFile string) error {
	a, err := newApp(ctx, envFile)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, logger := a.cfg, a.logger

	var notifier notify.Notifier = notify.Nop{}
	var player notify.Player = notify.NopPlayer{}
	if cfg.Notifications.Desktop {
		desktop := notify.NewDesktop(logger)
		desktop.RequestPermission()
		notifier = desktop
		player = notify.NewBeepPlayer(logger)
		logger.Info("desktop notifications enabled")
	}

	manager := reminder.NewManager(reminder.ManagerDeps{
		Logs:        a.logs,
		Medications: a.medications,
		Settings:    a.settings,
		Auditor:     a.audit,
		Notifier:    notifier,
		Player:      player,
	}, reminder.PollerConfig{
		Interval:    cfg.Reminder.PollInterval,
		AlarmWindow: cfg.Reminder.AlarmWindow,
		Location:    a.location,
	}, logger)
	defer manager.StopAll()

	// Initialize Azure clients
	photoStorage, err := a.blobStorage(ctx, cfg.Azure.Storage.PhotoContainer)
	if err != nil {
		return err
	}
	reportStorage, err := a.blobStorage(ctx, cfg.Azure.Storage.ReportContainer)
	if err != nil {
		return err
	}
	chat, err := chatClient(cfg, logger)
	if err != nil {
		return err
	}

	// Initialize services
	scheduler := service.NewDoseScheduler(a.medications, a.logs, a.location, logger)
	medicationService := service.NewMedicationService(a.medications, a.logs, scheduler, photoStorage, a.audit, logger)
	settingsService := service.NewSettingsService(a.settings, manager, a.audit, logger)
	infoService := service.NewMedicationInfoService(chat, logger)
	reportService := service.NewReportService(
		a.medications,
		a.logs,
		a.reports,
		reportStorage,
		pdf.NewPDFGenerator(logger),
		a.audit,
		a.location,
		logger,
	)

	if cfg.Scheduler.Enabled {
		if err := scheduler.Start(ctx, cfg.Scheduler.Cron); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	// Initialize handlers
	server := &handler.Server{
		ReminderHandler:   handler.NewReminderHandler(manager, logger),
		DashboardHandler:  handler.NewDashboardHandler(a.dashboardService(), logger),
		SettingsHandler:   handler.NewSettingsHandler(settingsService, logger),
		MedicationHandler: handler.NewMedicationHandler(medicationService, infoService, a.location, logger),
		ReportHandler:     handler.NewReportHandler(reportService, a.location, logger),
	}
	health := handler.NewHealthHandler(a.pool, manager, version, logger)

	router := handler.NewRouter(server, health, handler.RouterConfig{
		Auth: middleware.AuthConfig{
			Secret: cfg.Auth.JWTSecret,
			Issuer: cfg.Auth.Issuer,
		},
		CORSOrigins: cfg.Server.CORSOrigins,
		Release:     cfg.IsProduction(),
	}, logger)

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Failed to start server", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	// Event streams hold requests open; ending the sessions closes them
	manager.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
	return nil
}
