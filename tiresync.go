//go:build !cli
// +build !cli

package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tiresync/api"
	_ "tiresync/api/supplier"
	_ "tiresync/api/system"
	"tiresync/config"
	"tiresync/core/metrics"
	"tiresync/cron"
	_ "tiresync/cron/jobs"
	_ "tiresync/custom"
	"tiresync/migrations"
)

func getAuthMiddleware() echo.MiddlewareFunc {
	skipPaths := config.GetAuthSkipperPaths()
	skipper := func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
	authType := os.Getenv("AUTH_TYPE")
	switch authType {
	case "key":
		apiKey := os.Getenv("API_KEY")
		return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == apiKey, nil
			},
			Skipper: skipper,
		})
	default:
		return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
			Validator: func(username, password string, c echo.Context) (bool, error) {
				return username == os.Getenv("API_USER") && password == os.Getenv("API_PASS"), nil
			},
			Skipper: skipper,
		})
	}
}

func main() {
	config.LoadEnv()
	app := config.App()

	log, err := config.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	metrics.Init()
	config.InitRedis()
	log.Info(config.PingRedis())

	db, err := config.NewDB()
	if err != nil {
		log.Fatal("failed to connect to DB", zap.Error(err))
	}
	sqldb, err := db.DB()
	if err != nil {
		log.Fatal("failed to get DB instance", zap.Error(err))
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	log.Info("database connection successful", zap.String("driver", db.Dialector.Name()))

	if app.AutoMigrate {
		if err := migrations.Up(db); err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start).Milliseconds()
			c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
			return err
		}
	})

	deps := api.NewDeps(db)
	api.ApplyRoutes(e, deps)
	apiGroup := e.Group("/api")
	apiGroup.Use(getAuthMiddleware())
	api.ApplyModules(apiGroup, deps)

	fonts := []string{"standard", "slant", "small", "big", "doom", "speed"}
	figure.NewFigure("tiresync", fonts[rand.Intn(len(fonts))], true).Print()
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server running", zap.String("port", app.Port))
		if err := e.Start(":" + app.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if app.CronEnabled {
		g.Go(func() error {
			c, err := cron.StartCron(log)
			if err != nil {
				return err
			}
			<-gctx.Done()
			<-c.Stop().Done()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
	log.Info("server stopped")
}
