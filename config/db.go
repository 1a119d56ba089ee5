package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Bind-parameter ceilings per statement, by gorm dialector name.
var maxBindParams = map[string]int{
	"mysql":    65535,
	"postgres": 32767,
	"sqlite":   32766,
}

// MaxBindParams returns the per-statement parameter ceiling of the dialect.
// Unknown dialects get SQLite's historic 999 limit.
func MaxBindParams(dialect string) int {
	if n, ok := maxBindParams[dialect]; ok {
		return n
	}
	return 999
}

func NewDB() (*gorm.DB, error) {
	logMode := logger.Info
	if os.Getenv("GORM_LOG") == "off" {
		logMode = logger.Silent
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // Use log.Logger for Printf support
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logMode,     // Log level
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	dialector, err := dialectorFromEnv()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(getEnvInt("DB_MAX_OPEN_CONNS", 10))
	sqlDB.SetMaxIdleConns(getEnvInt("DB_MAX_IDLE_CONNS", 5))
	sqlDB.SetConnMaxLifetime(getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute))
	return db, nil
}

func dialectorFromEnv() (gorm.Dialector, error) {
	switch driver := GetEnv("DB_DRIVER", "mysql"); driver {
	case "mysql":
		dsn := os.Getenv("MYSQL_DSN")
		if dsn == "" {
			user := os.Getenv("MYSQL_USER")
			pass := os.Getenv("MYSQL_PASS")
			host := os.Getenv("MYSQL_HOST")
			port := os.Getenv("MYSQL_PORT")
			db := os.Getenv("MYSQL_DB")
			if port == "" {
				port = "3306"
			}
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=Local", user, pass, host, port, db)
		}
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := os.Getenv("POSTGRES_DSN")
		if dsn == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required for DB_DRIVER=postgres")
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(GetEnv("SQLITE_PATH", "tiresync.db")), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}
