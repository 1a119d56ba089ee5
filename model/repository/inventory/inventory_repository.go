package inventory

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	inventoryEntity "tiresync/model/entity/inventory"
)

// ExistingKey is the stored identity of one inventory record of a source.
type ExistingKey struct {
	ID            uint   `gorm:"column:id"`
	ArticleNumber string `gorm:"column:article_number"`
}

// Columns rewritten on every sync. The natural key columns never change.
var upsertColumns = []string{
	"supplier_code", "ean", "price", "stock",
	"brand", "model", "width", "height", "diameter",
	"load_index", "speed_index", "season", "vehicle_type", "run_flat", "three_pmsf",
	"label_fuel_efficiency", "label_wet_grip", "label_noise", "label_noise_class", "eprel_url",
	"last_updated",
}

var naturalKey = []clause.Column{{Name: "tenant_id"}, {Name: "source_id"}, {Name: "article_number"}}

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Dialect returns the gorm dialector name (mysql, postgres, sqlite).
func (r *InventoryRepository) Dialect() string {
	return r.db.Dialector.Name()
}

// ExistingKeys loads every stored key of a source in one query.
func (r *InventoryRepository) ExistingKeys(ctx context.Context, tenantID, sourceID string) ([]ExistingKey, error) {
	var keys []ExistingKey
	err := r.db.WithContext(ctx).
		Model(&inventoryEntity.InventoryItem{}).
		Select("id, article_number").
		Where("tenant_id = ? AND source_id = ?", tenantID, sourceID).
		Find(&keys).Error
	return keys, err
}

// DeleteByIDs removes the given records of a source in a single statement.
func (r *InventoryRepository) DeleteByIDs(ctx context.Context, tenantID, sourceID string, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("tenant_id = ? AND source_id = ? AND id IN ?", tenantID, sourceID, ids).
		Delete(&inventoryEntity.InventoryItem{})
	return res.RowsAffected, res.Error
}

// UpsertBatch writes one batch of records of a single source in its own transaction
// and reports how many of them did not exist before the write.
// Article numbers within items must be unique.
func (r *InventoryRepository) UpsertBatch(ctx context.Context, items []inventoryEntity.InventoryItem) (created int, err error) {
	if len(items) == 0 {
		return 0, nil
	}
	tenantID, sourceID := items[0].TenantID, items[0].SourceID
	articles := make([]string, len(items))
	for i := range items {
		articles[i] = items[i].ArticleNumber
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&inventoryEntity.InventoryItem{}).
			Where("tenant_id = ? AND source_id = ? AND article_number IN ?", tenantID, sourceID, articles).
			Count(&existing).Error; err != nil {
			return err
		}
		upsert := clause.OnConflict{
			Columns:   naturalKey,
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}
		if err := tx.Clauses(upsert).Create(&items).Error; err != nil {
			return err
		}
		created = len(items) - int(existing)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// GetByKey returns one record by natural key.
func (r *InventoryRepository) GetByKey(ctx context.Context, tenantID, sourceID, articleNumber string) (*inventoryEntity.InventoryItem, error) {
	var item inventoryEntity.InventoryItem
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND source_id = ? AND article_number = ?", tenantID, sourceID, articleNumber).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListBySource pages through a source's records ordered by article number.
func (r *InventoryRepository) ListBySource(ctx context.Context, tenantID, sourceID string, limit, offset int) ([]inventoryEntity.InventoryItem, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&inventoryEntity.InventoryItem{}).
		Where("tenant_id = ? AND source_id = ?", tenantID, sourceID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []inventoryEntity.InventoryItem
	err := q.Order("article_number").Limit(limit).Offset(offset).Find(&items).Error
	return items, total, err
}

// CountBySource returns the number of stored records of a source.
func (r *InventoryRepository) CountBySource(ctx context.Context, tenantID, sourceID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&inventoryEntity.InventoryItem{}).
		Where("tenant_id = ? AND source_id = ?", tenantID, sourceID).
		Count(&n).Error
	return n, err
}
