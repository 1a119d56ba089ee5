package supplier

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	supplierEntity "tiresync/model/entity/supplier"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "suppliers.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&supplierEntity.Supplier{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func create(t *testing.T, repo *SupplierRepository, s *supplierEntity.Supplier) *supplierEntity.Supplier {
	t.Helper()
	if err := repo.Upsert(context.Background(), s); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	return s
}

func TestSupplierRepository_GetNotFound(t *testing.T) {
	repo := NewSupplierRepository(testDB(t))
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get = %v, want ErrNotFound", err)
	}
}

func TestSupplierRepository_ListActiveFeedSources(t *testing.T) {
	repo := NewSupplierRepository(testDB(t))
	url := "https://feeds.example.com/a.csv"
	create(t, repo, &supplierEntity.Supplier{ID: "b", TenantID: "t2", Name: "B", Code: "B", ConnectionType: supplierEntity.ConnectionFeed, FeedURL: &url, IsActive: true})
	create(t, repo, &supplierEntity.Supplier{ID: "a", TenantID: "t1", Name: "A", Code: "A", ConnectionType: supplierEntity.ConnectionFeed, FeedURL: &url, IsActive: true})
	create(t, repo, &supplierEntity.Supplier{ID: "c", TenantID: "t1", Name: "C", Code: "C", ConnectionType: supplierEntity.ConnectionFeed, IsActive: false})
	create(t, repo, &supplierEntity.Supplier{ID: "d", TenantID: "t1", Name: "D", Code: "D", ConnectionType: supplierEntity.ConnectionAPI, IsActive: true})

	list, err := repo.ListActiveFeedSources(context.Background())
	if err != nil {
		t.Fatalf("ListActiveFeedSources: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("got %+v, want [a b]", list)
	}
	if list[0].SyncStatus != supplierEntity.StatusIdle {
		t.Errorf("new supplier status = %q, want idle", list[0].SyncStatus)
	}
}

func TestSupplierRepository_SyncTransitions(t *testing.T) {
	repo := NewSupplierRepository(testDB(t))
	s := create(t, repo, &supplierEntity.Supplier{TenantID: "t1", Name: "A", Code: "A", ConnectionType: supplierEntity.ConnectionFeed, IsActive: true})
	if s.ID == "" {
		t.Fatal("ID not generated")
	}
	ctx := context.Background()
	now := time.Now()

	if ok, err := repo.FinishSync(ctx, s.ID, supplierEntity.StatusSuccess, now, nil, nil); err != nil || ok {
		t.Fatalf("FinishSync from idle = %v, %v; want false", ok, err)
	}
	if ok, err := repo.BeginSync(ctx, s.ID, now, false); err != nil || !ok {
		t.Fatalf("BeginSync = %v, %v", ok, err)
	}
	if ok, err := repo.BeginSync(ctx, s.ID, now, false); err != nil || ok {
		t.Fatalf("second BeginSync = %v, %v; want false", ok, err)
	}
	if ok, err := repo.BeginSync(ctx, s.ID, now, true); err != nil || !ok {
		t.Fatalf("forced BeginSync = %v, %v", ok, err)
	}

	msg := "HTTP 503: Service Unavailable"
	stats := datatypes.JSON(`{"run_id":"r1"}`)
	if ok, err := repo.FinishSync(ctx, s.ID, supplierEntity.StatusError, now, &msg, stats); err != nil || !ok {
		t.Fatalf("FinishSync = %v, %v", ok, err)
	}
	got, err := repo.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SyncStatus != supplierEntity.StatusError || got.LastSyncError == nil || *got.LastSyncError != msg {
		t.Errorf("after FinishSync: %s %v", got.SyncStatus, got.LastSyncError)
	}
	if got.LastSyncAt == nil || got.SyncStartedAt == nil {
		t.Error("timestamps not recorded")
	}
	if string(got.LastSyncStats) != `{"run_id":"r1"}` {
		t.Errorf("stats = %s", got.LastSyncStats)
	}
}

func TestSupplierRepository_UpsertKeepsSyncState(t *testing.T) {
	repo := NewSupplierRepository(testDB(t))
	ctx := context.Background()
	create(t, repo, &supplierEntity.Supplier{ID: "s1", TenantID: "t1", Name: "Old", Code: "A", ConnectionType: supplierEntity.ConnectionFeed, IsActive: true})
	if _, err := repo.BeginSync(ctx, "s1", time.Now(), false); err != nil {
		t.Fatal(err)
	}

	url := "https://feeds.example.com/new.csv"
	create(t, repo, &supplierEntity.Supplier{ID: "s1", TenantID: "t1", Name: "New", Code: "A", ConnectionType: supplierEntity.ConnectionFeed, FeedURL: &url, IsActive: true})

	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "New" || got.FeedURL == nil || *got.FeedURL != url {
		t.Errorf("definition not updated: %+v", got)
	}
	if got.SyncStatus != supplierEntity.StatusSyncing {
		t.Errorf("sync status = %s, want syncing", got.SyncStatus)
	}

	list, err := repo.ListByTenant(ctx, "t1")
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByTenant = %d, %v", len(list), err)
	}
}
