package supplier

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	inventoryEntity "tiresync/model/entity/inventory"
	supplierEntity "tiresync/model/entity/supplier"
)

const feedHeader = "Artikelnummer;ean;Lagerbestand;Einkaufspreis;VK;Hersteller;Profil;Bezeichnung;Reifenbreite;Reifenquerschnitt;Reifendurchmesser;LI;SI;Saison;Fahrzeugtyp;x15;Kraftstoff;Nasshaftung;Rollgeraeusch;Geraeuschklasse;x20;x21;x22;x23;Artikeltyp;Artikeluntertyp;x26;EPREL"

// feedLine renders one feed line with the given positional values.
func feedLine(fields map[int]string) string {
	cols := make([]string, FeedColumns)
	for i, v := range fields {
		cols[i] = v
	}
	return strings.Join(cols, FeedDelimiter)
}

func tireLine(article, price, stock string) string {
	return feedLine(map[int]string{
		0: article, 1: "4019238" + article, 2: stock, 3: price,
		5: "Continental", 6: "PremiumContact 6",
		8: "205", 9: "55", 10: "16", 11: "91", 12: "V", 13: "s", 14: "PKW",
		16: "B", 17: "A", 18: "71", 19: "B",
		24: "Reifen", 25: "pkw",
		27: "https://eprel.ec.europa.eu/qr/" + article,
	})
}

func feed(lines ...string) string {
	return feedHeader + "\n" + strings.Join(lines, "\n") + "\n"
}

// tireFeed builds a feed of n valid tires with articles prefix0001..prefixNNNN.
func tireFeed(prefix string, n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = tireLine(fmt.Sprintf("%s%04d", prefix, i+1), "45,90", "12")
	}
	return feed(lines...)
}

func syncDB(t *testing.T) *gorm.DB {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "sync.db")
	db, err := gorm.Open(sqlite.Open(tmpFile), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	require.NoError(t, db.AutoMigrate(&supplierEntity.Supplier{}, &inventoryEntity.InventoryItem{}))
	return db
}

// feedServer serves whatever body is currently set.
type feedServer struct {
	*httptest.Server
	mu   sync.Mutex
	body string
}

func newFeedServer(t *testing.T, body string) *feedServer {
	t.Helper()
	fs := &feedServer{body: body}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = w.Write([]byte(fs.body))
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *feedServer) set(body string) {
	fs.mu.Lock()
	fs.body = body
	fs.mu.Unlock()
}

func strPtr(s string) *string { return &s }
