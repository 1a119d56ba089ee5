package migrations

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestFS_UpDownPairs(t *testing.T) {
	for _, dialect := range []string{"mysql", "postgres"} {
		entries, err := fs.ReadDir(FS, dialect)
		if err != nil {
			t.Fatalf("%s: %v", dialect, err)
		}
		ups, downs := map[string]bool{}, map[string]bool{}
		for _, e := range entries {
			name := e.Name()
			switch {
			case strings.HasSuffix(name, ".up.sql"):
				ups[strings.TrimSuffix(name, ".up.sql")] = true
			case strings.HasSuffix(name, ".down.sql"):
				downs[strings.TrimSuffix(name, ".down.sql")] = true
			default:
				t.Errorf("%s: unexpected file %s", dialect, name)
			}
		}
		if len(ups) != 2 {
			t.Errorf("%s: %d up migrations, want 2", dialect, len(ups))
		}
		for v := range ups {
			if !downs[v] {
				t.Errorf("%s: %s has no down migration", dialect, v)
			}
		}
	}
}

func TestFS_NaturalKeyIndex(t *testing.T) {
	for _, dialect := range []string{"mysql", "postgres"} {
		b, err := fs.ReadFile(FS, dialect+"/000002_create_workshop_inventory.up.sql")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(b), "idx_inventory_natural_key") {
			t.Errorf("%s: natural key index missing", dialect)
		}
	}
}

func TestFS_MySQLArticleNumberIsBinary(t *testing.T) {
	b, err := fs.ReadFile(FS, "mysql/000002_create_workshop_inventory.up.sql")
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(string(b), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "article_number ") {
			if !strings.Contains(line, "COLLATE utf8mb4_bin") {
				t.Errorf("article_number must compare byte-wise: %s", strings.TrimSpace(line))
			}
			return
		}
	}
	t.Fatal("article_number column not found")
}

func TestUp_SQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migrate.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Up(db); err != nil {
		t.Fatalf("Up: %v", err)
	}
	for _, table := range []string{"workshop_suppliers", "workshop_inventory"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %s not created", table)
		}
	}
	if !db.Migrator().HasIndex("workshop_inventory", "idx_inventory_natural_key") {
		t.Error("natural key index not created")
	}
	if err := Down(db, 2); err != nil {
		t.Fatalf("Down: %v", err)
	}
	if db.Migrator().HasTable("workshop_inventory") {
		t.Error("workshop_inventory still present after Down")
	}
}
