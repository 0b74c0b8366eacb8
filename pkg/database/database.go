package database

import (
	"context"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/config"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/result"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Options struct {
	Log                *zap.Logger
	Metrics            *metrics.Collector
	SlowQueryThreshold time.Duration
	PrepareStmt        bool
}

// Open opens a gorm session on dialector with error translation enabled,
// zap query logging and, when Metrics is set, query timing.
func Open(dialector gorm.Dialector, opts Options) (*gorm.DB, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(log, opts.SlowQueryThreshold),
		PrepareStmt:    opts.PrepareStmt,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if opts.Metrics != nil {
		if err := db.Use(NewMetricsPlugin(opts.Metrics)); err != nil {
			return nil, fmt.Errorf("registering metrics plugin: %w", err)
		}
	}

	return db, nil
}

// Connect opens the PostgreSQL pool described by cfg and verifies it.
func Connect(cfg config.DatabaseConfig, log *zap.Logger, m *metrics.Collector) (*gorm.DB, error) {
	db, err := Open(postgres.New(postgres.Config{
		DSN: cfg.DSN(),
	}), Options{
		Log:                log,
		Metrics:            m,
		SlowQueryThreshold: cfg.SlowQueryThreshold,
		PrepareStmt:        true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if m != nil {
		if err := m.RegisterDBStats(sqlDB, cfg.Name); err != nil {
			log.Warn("database pool metrics unavailable", zap.Error(err))
		}
	}

	return db, nil
}

// Migrate creates the pacientes, citas and resultados tables, their indexes
// and foreign keys if they do not already exist.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	models := []any{
		&patient.Patient{},
		&appointment.Appointment{},
		&result.Result{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
