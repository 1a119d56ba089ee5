package config

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	appLogger *zap.Logger
	loggerMu  sync.RWMutex
)

// InitLogger builds the global zap logger from APP_ENV, LOG_LEVEL and LOG_ENCODING.
func InitLogger() (*zap.Logger, error) {
	var cfg zap.Config
	if GetEnv("APP_ENV", "dev") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	if enc := GetEnv("LOG_ENCODING", ""); enc != "" {
		cfg.Encoding = enc
	}
	level, err := zapcore.ParseLevel(GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	loggerMu.Lock()
	appLogger = l
	loggerMu.Unlock()
	return l, nil
}

// Log returns the global logger, or a no-op logger before InitLogger.
func Log() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if appLogger == nil {
		return zap.NewNop()
	}
	return appLogger
}
