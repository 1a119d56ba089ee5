package supplier

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tiresync/api"
	"tiresync/config"
	inventoryRepo "tiresync/model/repository/inventory"
	supplierRepo "tiresync/model/repository/supplier"
	supplierService "tiresync/service/supplier"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func init() {
	api.RegisterModule(RegisterSupplierRoutes)
}

type handler struct {
	svc       *supplierService.Service
	sources   *supplierRepo.SupplierRepository
	inventory *inventoryRepo.InventoryRepository
}

func RegisterSupplierRoutes(apiGroup *echo.Group, d api.Deps) {
	h := &handler{
		svc:       d.Sync,
		sources:   supplierRepo.NewSupplierRepository(d.DB),
		inventory: inventoryRepo.NewInventoryRepository(d.DB),
	}

	// POST /api/suppliers/sync – sync every active feed source (admin/cron trigger)
	apiGroup.POST("/suppliers/sync", h.syncAll)
	apiGroup.GET("/suppliers/sync/last", h.lastSummary)

	t := apiGroup.Group("/tenants/:tenant/suppliers")
	t.GET("", h.list)
	t.GET("/:id", h.status)
	t.POST("/:id/sync", h.syncSource)
	t.GET("/:id/inventory", h.listInventory)
}

func (h *handler) syncAll(c echo.Context) error {
	if async, _ := strconv.ParseBool(c.QueryParam("async")); async {
		go func() {
			if _, err := h.svc.SyncAll(context.WithoutCancel(c.Request().Context())); err != nil {
				config.Log().Error("async supplier sync failed", zap.Error(err))
			}
		}()
		return c.JSON(http.StatusAccepted, echo.Map{"status": "started"})
	}

	start := time.Now()
	sum, err := h.svc.SyncAll(c.Request().Context())
	duration := time.Since(start).Milliseconds()
	c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error(), "request_duration_ms": duration})
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *handler) lastSummary(c echo.Context) error {
	sum, ok := h.svc.LastSummary()
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no sync pass has completed yet"})
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *handler) syncSource(c echo.Context) error {
	force, _ := strconv.ParseBool(c.QueryParam("force"))
	start := time.Now()
	res := h.svc.SyncSource(c.Request().Context(), c.Param("tenant"), c.Param("id"), supplierService.SyncOptions{Force: force})
	c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
	return c.JSON(resultStatus(res), res)
}

// resultStatus maps a sync outcome onto an HTTP status. A run that started and failed is a 502.
func resultStatus(res supplierService.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.Error {
	case supplierService.ErrSourceNotFound.Error():
		return http.StatusNotFound
	case supplierService.ErrAccessDenied.Error():
		return http.StatusForbidden
	case supplierService.ErrNotFeedSource.Error(), supplierService.ErrFeedURLMissing.Error():
		return http.StatusUnprocessableEntity
	case supplierService.ErrSyncInProgress.Error():
		return http.StatusConflict
	}
	return http.StatusBadGateway
}

func (h *handler) status(c echo.Context) error {
	st, err := h.svc.Status(c.Request().Context(), c.Param("tenant"), c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *handler) list(c echo.Context) error {
	list, err := h.sources.ListByTenant(c.Request().Context(), c.Param("tenant"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list, "total": len(list)})
}

func (h *handler) listInventory(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, sourceID := c.Param("tenant"), c.Param("id")
	if _, err := h.svc.Status(ctx, tenantID, sourceID); err != nil {
		return errorJSON(c, err)
	}

	limit := queryInt(c, "limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	items, total, err := h.inventory.ListBySource(ctx, tenantID, sourceID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func errorJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, supplierService.ErrSourceNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, supplierService.ErrAccessDenied):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
}

func queryInt(c echo.Context, name string, fallback int) int {
	v := c.QueryParam(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
