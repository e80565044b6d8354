package database

import (
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/notebot/internal/personas"
	"github.com/MarcoPoloResearchLab/notebot/internal/registry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openTestDatabase(testContext *testing.T, databasePath string) *gorm.DB {
	testContext.Helper()
	database, err := OpenSQLite(databasePath, Options{BusyTimeout: 2 * time.Second}, zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	testContext.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return database
}

func TestOpenSQLiteSeedsCatalogsIdempotently(testContext *testing.T) {
	databasePath := filepath.Join(testContext.TempDir(), "nested", "bot.db")

	first := openTestDatabase(testContext, databasePath)
	if err := first.Model(&registry.Model{}).Where("id = ?", 1).Update("label", "Curated label").Error; err != nil {
		testContext.Fatalf("failed to curate model: %v", err)
	}
	firstSQL, _ := first.DB()
	_ = firstSQL.Close()

	second := openTestDatabase(testContext, databasePath)

	var modelCount int64
	if err := second.Model(&registry.Model{}).Count(&modelCount).Error; err != nil {
		testContext.Fatalf("failed to count models: %v", err)
	}
	if modelCount != int64(len(registry.SeedCatalog())) {
		testContext.Fatalf("expected %d models, got %d", len(registry.SeedCatalog()), modelCount)
	}

	var characterCount int64
	if err := second.Model(&personas.Character{}).Count(&characterCount).Error; err != nil {
		testContext.Fatalf("failed to count characters: %v", err)
	}
	if characterCount != int64(len(personas.SeedCatalog())) {
		testContext.Fatalf("expected %d characters, got %d", len(personas.SeedCatalog()), characterCount)
	}

	var curated registry.Model
	if err := second.Where("id = ?", 1).Take(&curated).Error; err != nil {
		testContext.Fatalf("failed to reload model: %v", err)
	}
	if curated.Label != "Curated label" {
		testContext.Fatalf("bootstrap must not overwrite curated rows, got %q", curated.Label)
	}
	if !curated.Active {
		testContext.Fatalf("expected model 1 to be active after bootstrap")
	}

	var activeCount int64
	if err := second.Model(&registry.Model{}).Where("active = ?", true).Count(&activeCount).Error; err != nil {
		testContext.Fatalf("failed to count active models: %v", err)
	}
	if activeCount != 1 {
		testContext.Fatalf("expected a single active model, got %d", activeCount)
	}
}

func TestOpenSQLiteConfiguresPragmas(testContext *testing.T) {
	database := openTestDatabase(testContext, filepath.Join(testContext.TempDir(), "pragmas.db"))

	var journalMode string
	if err := database.Raw("PRAGMA journal_mode").Scan(&journalMode).Error; err != nil {
		testContext.Fatalf("failed to read journal mode: %v", err)
	}
	if !strings.EqualFold(journalMode, "wal") {
		testContext.Fatalf("expected WAL journal mode, got %q", journalMode)
	}

	var foreignKeys int
	if err := database.Raw("PRAGMA foreign_keys").Scan(&foreignKeys).Error; err != nil {
		testContext.Fatalf("failed to read foreign_keys: %v", err)
	}
	if foreignKeys != 1 {
		testContext.Fatalf("expected foreign keys enabled, got %d", foreignKeys)
	}

	var busyTimeout int
	if err := database.Raw("PRAGMA busy_timeout").Scan(&busyTimeout).Error; err != nil {
		testContext.Fatalf("failed to read busy_timeout: %v", err)
	}
	if busyTimeout != 2000 {
		testContext.Fatalf("expected busy timeout 2000ms, got %d", busyTimeout)
	}

	var indexCount int64
	if err := database.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?", registry.SingleActiveIndexName).Scan(&indexCount).Error; err != nil {
		testContext.Fatalf("failed to inspect indexes: %v", err)
	}
	if indexCount != 1 {
		testContext.Fatalf("expected single active index to exist")
	}
}

func TestOpenSQLiteRequiresPath(testContext *testing.T) {
	if _, err := OpenSQLite("  ", Options{}, nil); err == nil {
		testContext.Fatalf("expected error for empty path")
	}
}

func TestBuildDSNAppendsPragmas(testContext *testing.T) {
	dsn := buildDSN("bot.db", 0)
	parts := strings.SplitN(dsn, "?", 2)
	if len(parts) != 2 || parts[0] != "bot.db" {
		testContext.Fatalf("unexpected dsn %q", dsn)
	}
	query, err := url.ParseQuery(parts[1])
	if err != nil {
		testContext.Fatalf("failed to parse dsn query: %v", err)
	}
	pragmas := strings.Join(query["_pragma"], ",")
	for _, expected := range []string{"foreign_keys(1)", "journal_mode(WAL)", "busy_timeout(5000)"} {
		if !strings.Contains(pragmas, expected) {
			testContext.Fatalf("expected pragma %s in %q", expected, pragmas)
		}
	}
	if query.Get("_txlock") != "immediate" {
		testContext.Fatalf("expected immediate transactions, got %q", query.Get("_txlock"))
	}

	if withQuery := buildDSN("file:bot.db?cache=shared", time.Second); !strings.HasPrefix(withQuery, "file:bot.db?cache=shared&") {
		testContext.Fatalf("expected params appended to existing query, got %q", withQuery)
	}
}
