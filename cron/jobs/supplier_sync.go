// Package jobs registers the scheduled jobs of the sync engine. Import it for side effects.
package jobs

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tiresync/config"
	"tiresync/cron"
	supplierService "tiresync/service/supplier"
)

// SupplierSyncSchedule runs the nightly pass at 03:00 server time.
const SupplierSyncSchedule = "0 3 * * *"

var (
	dbOnce sync.Once
	db     *gorm.DB
	dbErr  error
)

func init() {
	cron.Register("suppliersync", SupplierSyncSchedule, SupplierSync)
}

func database() (*gorm.DB, error) {
	dbOnce.Do(func() {
		db, dbErr = config.NewDB()
	})
	return db, dbErr
}

// SupplierSync syncs every active feed source. Failed sources are logged and
// do not fail the job; only a failed pass does.
func SupplierSync(ctx context.Context, _ ...string) error {
	log := config.Log().Named("cron.suppliersync")
	conn, err := database()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	sum, err := supplierService.FromConfig(conn).SyncAll(ctx)
	if err != nil {
		return fmt.Errorf("supplier sync pass: %w", err)
	}
	for _, r := range sum.Results {
		if !r.Success {
			log.Warn("supplier source failed",
				zap.String("tenant_id", r.TenantID),
				zap.String("source_id", r.SourceID),
				zap.String("error", r.Error))
		}
	}
	return nil
}
