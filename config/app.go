package config

import (
	"sync"
	"time"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName string
	Port    string
	Env     string
	Debug   bool

	// CronEnabled runs the scheduler inside the HTTP server process.
	CronEnabled bool
	AutoMigrate bool
	Sync        SyncConfig
	Events      EventsConfig
}

// SyncConfig tunes the supplier feed synchronization.
type SyncConfig struct {
	FetchTimeout      time.Duration
	UserAgent         string
	DeleteBatchSize   int
	UpsertBatchSize   int
	ProgressThreshold int
	StaleAfter        time.Duration
}

// EventsConfig points at the broker receiving sync-completed events. Empty URL disables publishing.
type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		AppConfig = &Config{
			AppName: GetEnv("APP_NAME", "tiresync"),
			Port:    GetEnv("PORT", "8080"),
			Env:     GetEnv("APP_ENV", "dev"),
			Debug:   getEnvBool("DEBUG", false),

			CronEnabled: getEnvBool("CRON_ENABLED", true),
			AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false),
			Sync: SyncConfig{
				FetchTimeout:      getEnvDuration("SUPPLIER_FETCH_TIMEOUT", 30*time.Second),
				UserAgent:         GetEnv("SUPPLIER_USER_AGENT", "Bereifung24-Workshop-Bot/1.0"),
				DeleteBatchSize:   getEnvInt("SUPPLIER_DELETE_BATCH", 5000),
				UpsertBatchSize:   getEnvInt("SUPPLIER_UPSERT_BATCH", 500),
				ProgressThreshold: getEnvInt("SUPPLIER_PROGRESS_THRESHOLD", 1000),
				StaleAfter:        getEnvDuration("SUPPLIER_STALE_AFTER", 30*time.Minute),
			},
			Events: EventsConfig{
				AMQPURL:  GetEnv("AMQP_URL", ""),
				Exchange: GetEnv("AMQP_EXCHANGE", "supplier.sync"),
			},
		}
	})
}

// App returns AppConfig, loading it from env on first use.
func App() *Config {
	LoadAppConfig()
	return AppConfig
}
