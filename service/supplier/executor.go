package supplier

import (
	"context"
	"fmt"
	"time"

	"tiresync/config"
	inventoryEntity "tiresync/model/entity/inventory"
	inventoryRepo "tiresync/model/repository/inventory"
)

// InventoryStore is the persistence the sync engine needs for inventory records.
type InventoryStore interface {
	Dialect() string
	ExistingKeys(ctx context.Context, tenantID, sourceID string) ([]inventoryRepo.ExistingKey, error)
	DeleteByIDs(ctx context.Context, tenantID, sourceID string, ids []uint) (int64, error)
	UpsertBatch(ctx context.Context, items []inventoryEntity.InventoryItem) (created int, err error)
	CountBySource(ctx context.Context, tenantID, sourceID string) (int64, error)
}

// Scope identifies the source whose records a run owns.
type Scope struct {
	TenantID string
	SourceID string
	Supplier string
}

// Counts accumulates the outcome of applying one plan.
type Counts struct {
	Created        int `json:"created"`
	Updated        int `json:"updated"`
	TotalProcessed int `json:"total_processed"`
	Deleted        int `json:"deleted"`
}

// ProgressFunc receives processed-so-far and total after each upsert batch of a large feed.
type ProgressFunc func(processed, total int)

// Executor applies a Plan in bounded, sequential batches. Each batch is its own
// transaction; a failing batch stops the run and earlier batches stay committed.
type Executor struct {
	store             InventoryStore
	deleteBatch       int
	upsertBatch       int
	progressThreshold int
	now               func() time.Time
}

// NewExecutor clamps the configured batch sizes to the store's bind-parameter ceiling.
func NewExecutor(store InventoryStore, opts Options) *Executor {
	opts = opts.withDefaults()
	del, ups := clampBatchSizes(store.Dialect(), opts.DeleteBatchSize, opts.UpsertBatchSize)
	return &Executor{
		store:             store,
		deleteBatch:       del,
		upsertBatch:       ups,
		progressThreshold: opts.ProgressThreshold,
		now:               time.Now,
	}
}

// clampBatchSizes keeps each statement under the dialect's parameter limit.
// A delete binds tenant and source next to the ids; an upsert binds every writable column per record.
func clampBatchSizes(dialect string, deleteBatch, upsertBatch int) (int, int) {
	limit := config.MaxBindParams(dialect)
	if ceiling := limit - 2; deleteBatch > ceiling {
		deleteBatch = ceiling
	}
	if ceiling := limit / inventoryEntity.WritableColumns; upsertBatch > ceiling {
		upsertBatch = ceiling
	}
	return deleteBatch, upsertBatch
}

// BatchSizes returns the effective delete and upsert chunk sizes.
func (e *Executor) BatchSizes() (deleteBatch, upsertBatch int) {
	return e.deleteBatch, e.upsertBatch
}

// Apply deletes discontinued records, then upserts every candidate.
// On error the returned Counts hold what was committed before the failure.
func (e *Executor) Apply(ctx context.Context, scope Scope, plan Plan, progress ProgressFunc) (Counts, error) {
	var counts Counts

	for _, ids := range chunk(plan.ToDelete, e.deleteBatch) {
		if err := ctx.Err(); err != nil {
			return counts, err
		}
		n, err := e.store.DeleteByIDs(ctx, scope.TenantID, scope.SourceID, ids)
		if err != nil {
			return counts, fmt.Errorf("delete batch at %d: %w", counts.Deleted, err)
		}
		counts.Deleted += int(n)
	}

	total := len(plan.ToUpsert)
	for _, batch := range chunk(plan.ToUpsert, e.upsertBatch) {
		if err := ctx.Err(); err != nil {
			return counts, err
		}
		items := toItems(scope, batch, e.now())
		created, err := e.store.UpsertBatch(ctx, items)
		if err != nil {
			return counts, fmt.Errorf("upsert batch at %d/%d: %w", counts.TotalProcessed, total, err)
		}
		counts.Created += created
		counts.Updated += len(batch) - created
		counts.TotalProcessed += len(batch)

		if progress != nil && total > e.progressThreshold {
			progress(counts.TotalProcessed, total)
		}
	}
	return counts, nil
}

func toItems(scope Scope, batch []Candidate, at time.Time) []inventoryEntity.InventoryItem {
	items := make([]inventoryEntity.InventoryItem, len(batch))
	for i, c := range batch {
		items[i] = inventoryEntity.InventoryItem{
			TenantID:            scope.TenantID,
			SourceID:            scope.SourceID,
			ArticleNumber:       c.ArticleNumber,
			SupplierCode:        scope.Supplier,
			EAN:                 c.EAN,
			Price:               c.Price,
			Stock:               c.Stock,
			Brand:               c.Brand,
			Model:               c.Model,
			Width:               c.Width,
			Height:              c.Height,
			Diameter:            c.Diameter,
			LoadIndex:           c.LoadIndex,
			SpeedIndex:          c.SpeedIndex,
			Season:              c.Season,
			VehicleType:         c.VehicleType,
			RunFlat:             c.RunFlat,
			ThreePMSF:           c.ThreePMSF,
			LabelFuelEfficiency: c.LabelFuelEfficiency,
			LabelWetGrip:        c.LabelWetGrip,
			LabelNoise:          c.LabelNoise,
			LabelNoiseClass:     c.LabelNoiseClass,
			EprelURL:            c.EprelURL,
			LastUpdated:         at,
		}
	}
	return items
}

// chunk splits items into consecutive slices of at most size elements.
func chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[i:end])
	}
	return out
}
