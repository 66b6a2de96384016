package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/salmalteam/salmal/backend/internal/models"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error
	GetDB() *gorm.DB
}

type Options struct {
	DSN          string
	MaxIdleConns int
	MaxOpenConns int
	Log          *logrus.Logger
}

type service struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// New opens the connection, migrates the schema and configures the pool.
func New(opts Options) (Service, error) {
	// GORM writes through logrus; only slow queries and errors are reported.
	gormLogger := logger.New(
		opts.Log,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(opts.DSN), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}
	opts.Log.Info("database connected")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	opts.Log.Info("database migrations completed")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get database instance")
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &service{db: db, log: opts.Log}, nil
}

// Migrate creates or updates every table. Order matters for foreign keys.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Member{},
		&models.Vote{},
		&models.VoteEvaluation{},
		&models.VoteBookmark{},
		&models.VoteReport{},
		&models.Comment{},
	)
	return errors.Wrap(err, "migrate database")
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

// Health checks the health of the database connection by pinging the database.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats := make(map[string]string)

	sqlDB, err := s.db.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db error: %v", err)
		return stats
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := sqlDB.Stats()
	stats["open_connections"] = fmt.Sprintf("%d", dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprintf("%d", dbStats.InUse)
	stats["idle"] = fmt.Sprintf("%d", dbStats.Idle)

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.log.Info("disconnected from database")
	return sqlDB.Close()
}
