package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/vitalapp/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/service"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/pkg/tracer"
)

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "vitalapp",
		Short:         "VitalApp medical records API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with configuration defaults")

	rootCmd.AddCommand(serveCmd(&envFile))
	rootCmd.AddCommand(migrateCmd(&envFile))
	rootCmd.AddCommand(versionCmd(&envFile))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *envFile)
		},
	}
}

func migrateCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*envFile)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			db, err := database.Connect(cfg.Database, log, nil)
			if err != nil {
				return err
			}
			defer database.Close(db) //nolint:errcheck

			return database.Migrate(db, log)
		},
	}
}

func versionCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cfg.App.Name, cfg.App.Version)
			return nil
		},
	}
}

func bootstrap(envFile string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log, cfg.App)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func runServer(ctx context.Context, envFile string) error {
	cfg, log, err := bootstrap(envFile)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	tp, err := tracer.Init(ctx, cfg.Tracing, cfg.App.Version)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	m := metrics.NewCollector(cfg.Tracing.ServiceName, prometheus.DefaultRegisterer)

	db, err := database.Connect(cfg.Database, log, m)
	if err != nil {
		return err
	}
	defer database.Close(db) //nolint:errcheck

	// Tables are created on start when absent.
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	router := v1.NewRouter(buildDeps(cfg, log, m, db))

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func buildDeps(cfg *config.Config, log *zap.Logger, m *metrics.Collector, db *gorm.DB) v1.RouterDeps {
	patientRepo := repository.NewPatientRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	resultRepo := repository.NewResultRepository(db)

	return v1.RouterDeps{
		Config:   cfg,
		Log:      log,
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
		Ping: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
		Patients:     service.NewPatientService(patientRepo, m, log),
		Appointments: service.NewAppointmentService(appointmentRepo, patientRepo, m, log),
		Results:      service.NewResultService(resultRepo, patientRepo, m, log),
	}
}
