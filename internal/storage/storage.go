package storage

import (
	"os"
	"sync"
	"time"

	"visitorlogs/internal/config"
	"visitorlogs/internal/util/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

const (
	maxOpenConnections = 10
	maxIdleConnections = 2
	connMaxLifetime    = 30 * time.Minute
)

var (
	db     *gorm.DB
	dbOnce sync.Once
)

// GetDb connects to DATABASE_DSN on first use. A configured database that
// cannot be reached stops the process.
func GetDb() *gorm.DB {
	dbOnce.Do(func() {
		log := logger.GetLogger()

		database, err := Open(config.GetEnv().DatabaseDsn)
		if err != nil {
			log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}

		log.Info("Connected to database")
		db = database
	})

	return db
}

func Open(dsn string) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(maxOpenConnections)
	sqlDB.SetMaxIdleConns(maxIdleConnections)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	return database, nil
}
