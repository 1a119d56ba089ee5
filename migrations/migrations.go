// Package migrations holds the versioned schema of the sync tables and applies it with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	inventoryEntity "tiresync/model/entity/inventory"
	supplierEntity "tiresync/model/entity/supplier"
)

//go:embed mysql/*.sql postgres/*.sql
var FS embed.FS

// Up applies all pending migrations. SQLite databases are local dev/test stores
// and get the schema from the gorm entities instead.
func Up(db *gorm.DB) error {
	if db.Dialector.Name() == "sqlite" {
		return db.AutoMigrate(&supplierEntity.Supplier{}, &inventoryEntity.InventoryItem{})
	}
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Down rolls back the given number of migrations.
func Down(db *gorm.DB, steps int) error {
	if db.Dialector.Name() == "sqlite" {
		return db.Migrator().DropTable(&inventoryEntity.InventoryItem{}, &supplierEntity.Supplier{})
	}
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Version reports the applied schema version.
func Version(db *gorm.DB) (version uint, dirty bool, err error) {
	if db.Dialector.Name() == "sqlite" {
		return 0, false, nil
	}
	m, err := newMigrate(db)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func newMigrate(db *gorm.DB) (*migrate.Migrate, error) {
	dialect := db.Dialector.Name()
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	var driver database.Driver
	switch dialect {
	case "mysql":
		driver, err = migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
	case "postgres":
		driver, err = migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{})
	default:
		return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("migrations: %s driver: %w", dialect, err)
	}

	src, err := iofs.New(FS, dialect)
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", src, dialect, driver)
}
