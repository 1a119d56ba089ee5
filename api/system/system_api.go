// Package system serves the unauthenticated operational endpoints.
package system

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tiresync/api"
	"tiresync/config"
	"tiresync/core/metrics"
)

func init() {
	api.RegisterRoute(RegisterSystemRoutes)
}

func RegisterSystemRoutes(e *echo.Echo, d api.Deps) {
	db := d.DB
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	e.GET("/health", func(c echo.Context) error {
		status := echo.Map{"status": "ok", "redis": "disabled"}
		code := http.StatusOK
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request().Context())
			}
			if err != nil {
				status["status"] = "degraded"
				status["db"] = err.Error()
				code = http.StatusServiceUnavailable
			} else {
				status["db"] = "ok"
			}
		}
		if config.RedisClient != nil {
			status["redis"] = "ok"
			if err := config.RedisClient.Ping(c.Request().Context()).Err(); err != nil {
				status["redis"] = err.Error()
			}
		}
		return c.JSON(code, status)
	})
}
