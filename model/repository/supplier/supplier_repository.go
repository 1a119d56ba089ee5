package supplier

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	supplierEntity "tiresync/model/entity/supplier"
)

// ErrNotFound is returned when no supplier has the requested id.
var ErrNotFound = errors.New("supplier not found")

type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) Get(ctx context.Context, id string) (*supplierEntity.Supplier, error) {
	var s supplierEntity.Supplier
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListActiveFeedSources returns every active flat-file supplier across all tenants.
func (r *SupplierRepository) ListActiveFeedSources(ctx context.Context) ([]supplierEntity.Supplier, error) {
	var list []supplierEntity.Supplier
	err := r.db.WithContext(ctx).
		Where("connection_type = ? AND is_active = ?", supplierEntity.ConnectionFeed, true).
		Order("tenant_id, id").
		Find(&list).Error
	return list, err
}

func (r *SupplierRepository) ListByTenant(ctx context.Context, tenantID string) ([]supplierEntity.Supplier, error) {
	var list []supplierEntity.Supplier
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("name").Find(&list).Error
	return list, err
}

// BeginSync moves a supplier into syncing. It reports false when the supplier is
// already syncing; force skips that guard for operator re-triggers of abandoned runs.
func (r *SupplierRepository) BeginSync(ctx context.Context, id string, startedAt time.Time, force bool) (bool, error) {
	q := r.db.WithContext(ctx).Model(&supplierEntity.Supplier{}).Where("id = ?", id)
	if !force {
		q = q.Where("sync_status <> ?", supplierEntity.StatusSyncing)
	}
	res := q.Updates(map[string]interface{}{
		"sync_status":     supplierEntity.StatusSyncing,
		"sync_started_at": startedAt,
	})
	return res.RowsAffected == 1, res.Error
}

// FinishSync records the terminal state of a run. It reports false when the
// supplier was not syncing.
func (r *SupplierRepository) FinishSync(ctx context.Context, id string, status supplierEntity.SyncStatus, finishedAt time.Time, syncErr *string, stats datatypes.JSON) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&supplierEntity.Supplier{}).
		Where("id = ? AND sync_status = ?", id, supplierEntity.StatusSyncing).
		Updates(map[string]interface{}{
			"sync_status":     status,
			"last_sync_at":    finishedAt,
			"last_sync_error": syncErr,
			"last_sync_stats": stats,
		})
	return res.RowsAffected == 1, res.Error
}

// Upsert creates or replaces a supplier definition. Sync state columns are left untouched on update.
func (r *SupplierRepository) Upsert(ctx context.Context, s *supplierEntity.Supplier) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tenant_id", "name", "supplier_code", "connection_type", "feed_url", "is_active", "updated_at",
		}),
	}).Create(s).Error
}
