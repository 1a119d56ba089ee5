package api

import (
	"sync"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"tiresync/core/registry"
	supplierService "tiresync/service/supplier"
)

var mu sync.Mutex

// Deps is handed to every route module when the server mounts it. One Sync
// service is shared by all modules so per-source locks hold process-wide.
type Deps struct {
	DB   *gorm.DB
	Sync *supplierService.Service
}

// NewDeps builds the dependencies for db with a sync service wired from config.
func NewDeps(db *gorm.DB) Deps {
	return Deps{DB: db, Sync: supplierService.FromConfig(db)}
}

// --- /api group modules (authenticated) ---

// ModuleFunc registers routes on the /api group.
type ModuleFunc func(g *echo.Group, d Deps)

func getModules() []ModuleFunc {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryAPI); ok && v != nil {
		return v.([]ModuleFunc)
	}
	return nil
}

// RegisterModule registers an API module. Call from init() in API packages.
func RegisterModule(fn ModuleFunc) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryAPI) {
		panic("api/registry: API modules locked (register only during init)")
	}
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryAPI, append(getModules(), fn))
}

// ApplyModules mounts all registered /api modules. Locks the registry.
func ApplyModules(g *echo.Group, d Deps) {
	for _, fn := range getModules() {
		fn(g, d)
	}
	registry.GlobalRegistry.Lock(registry.KeyRegistryAPI)
}

// --- Root-level routes (public: health, metrics, custom) ---

// RouteFunc registers routes on the root Echo instance.
type RouteFunc func(e *echo.Echo, d Deps)

func getRoutes() []RouteFunc {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryRoutes); ok && v != nil {
		return v.([]RouteFunc)
	}
	return nil
}

// RegisterRoute registers a root-level route module. Call from init().
func RegisterRoute(fn RouteFunc) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryRoutes) {
		panic("api/registry: routes locked (register only during init)")
	}
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryRoutes, append(getRoutes(), fn))
}

// RegisterGET is shorthand for a root GET route that needs no dependencies.
func RegisterGET(path string, handler echo.HandlerFunc) {
	RegisterRoute(func(e *echo.Echo, _ Deps) {
		e.GET(path, handler)
	})
}

// ApplyRoutes mounts all registered root-level routes. Locks the registry.
func ApplyRoutes(e *echo.Echo, d Deps) {
	for _, fn := range getRoutes() {
		fn(e, d)
	}
	registry.GlobalRegistry.Lock(registry.KeyRegistryRoutes)
}
