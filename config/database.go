package config

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

func ConnectDB(s DBSettings) error {
	var dialector gorm.Dialector
	switch s.Driver {
	case "sqlite":
		dsn := s.URL
		if dsn == "" {
			dsn = "fieldpro.db"
		}
		dialector = sqlite.Open(dsn)
	case "postgres", "":
		if s.URL == "" {
			return fmt.Errorf("db.url is required for postgres")
		}
		dialector = postgres.Open(s.URL)
	default:
		return fmt.Errorf("unsupported db driver %q", s.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if s.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(s.MaxOpenConns)
	}
	if s.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(s.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	DB = db
	return nil
}
