package inventory

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	inventoryEntity "tiresync/model/entity/inventory"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "inventory.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&inventoryEntity.InventoryItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func items(tenantID, sourceID string, stock int, articles ...string) []inventoryEntity.InventoryItem {
	out := make([]inventoryEntity.InventoryItem, len(articles))
	for i, a := range articles {
		out[i] = inventoryEntity.InventoryItem{
			TenantID:      tenantID,
			SourceID:      sourceID,
			ArticleNumber: a,
			SupplierCode:  "ACME",
			Price:         decimal.RequireFromString("45.90"),
			Stock:         stock,
			LastUpdated:   time.Now(),
		}
	}
	return out
}

func TestInventoryRepository_UpsertBatchCountsCreated(t *testing.T) {
	repo := NewInventoryRepository(testDB(t))
	ctx := context.Background()

	created, err := repo.UpsertBatch(ctx, items("t1", "s1", 5, "A", "B"))
	if err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}

	created, err = repo.UpsertBatch(ctx, items("t1", "s1", 9, "B", "C"))
	if err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}
	if created != 1 {
		t.Errorf("created = %d, want 1", created)
	}

	b, err := repo.GetByKey(ctx, "t1", "s1", "B")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if b.Stock != 9 {
		t.Errorf("B stock = %d, want 9 after update", b.Stock)
	}
	if n, _ := repo.CountBySource(ctx, "t1", "s1"); n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestInventoryRepository_ArticleCaseIsSignificant(t *testing.T) {
	repo := NewInventoryRepository(testDB(t))
	ctx := context.Background()

	for run, want := range []int{2, 0} {
		created, err := repo.UpsertBatch(ctx, items("t1", "s1", run, "abc", "ABC"))
		if err != nil {
			t.Fatalf("run %d: UpsertBatch: %v", run, err)
		}
		if created != want {
			t.Errorf("run %d: created = %d, want %d", run, created, want)
		}
	}
	if n, _ := repo.CountBySource(ctx, "t1", "s1"); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestInventoryRepository_KeysAreScopedBySource(t *testing.T) {
	repo := NewInventoryRepository(testDB(t))
	ctx := context.Background()
	if _, err := repo.UpsertBatch(ctx, items("t1", "s1", 1, "A", "B")); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.UpsertBatch(ctx, items("t1", "s2", 1, "A")); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.UpsertBatch(ctx, items("t2", "s1", 1, "A")); err != nil {
		t.Fatal(err)
	}

	keys, err := repo.ExistingKeys(ctx, "t1", "s1")
	if err != nil {
		t.Fatalf("ExistingKeys: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("keys = %+v, want 2", keys)
	}

	ids := make([]uint, len(keys))
	for i, k := range keys {
		ids[i] = k.ID
	}
	// ids of t1/s1 must not delete anything when scoped to another source
	if n, err := repo.DeleteByIDs(ctx, "t1", "s2", ids); err != nil || n != 0 {
		t.Fatalf("cross-source DeleteByIDs = %d, %v", n, err)
	}
	if n, err := repo.DeleteByIDs(ctx, "t1", "s1", ids); err != nil || n != 2 {
		t.Fatalf("DeleteByIDs = %d, %v", n, err)
	}
	for _, scope := range [][2]string{{"t1", "s2"}, {"t2", "s1"}} {
		if n, _ := repo.CountBySource(ctx, scope[0], scope[1]); n != 1 {
			t.Errorf("%v count = %d, want 1", scope, n)
		}
	}
}

func TestInventoryRepository_ListBySource(t *testing.T) {
	repo := NewInventoryRepository(testDB(t))
	ctx := context.Background()
	articles := make([]string, 25)
	for i := range articles {
		articles[i] = fmt.Sprintf("R%02d", 24-i)
	}
	if _, err := repo.UpsertBatch(ctx, items("t1", "s1", 1, articles...)); err != nil {
		t.Fatal(err)
	}

	page, total, err := repo.ListBySource(ctx, "t1", "s1", 10, 10)
	if err != nil {
		t.Fatalf("ListBySource: %v", err)
	}
	if total != 25 || len(page) != 10 {
		t.Fatalf("total = %d, page = %d", total, len(page))
	}
	if page[0].ArticleNumber != "R10" || page[9].ArticleNumber != "R19" {
		t.Errorf("page = %s..%s, want R10..R19", page[0].ArticleNumber, page[9].ArticleNumber)
	}
	if page[0].Price.StringFixed(2) != "45.90" {
		t.Errorf("price = %s", page[0].Price)
	}
}

func TestInventoryRepository_Dialect(t *testing.T) {
	if d := NewInventoryRepository(testDB(t)).Dialect(); d != "sqlite" {
		t.Errorf("Dialect = %q, want sqlite", d)
	}
}
