package database

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/notebot/internal/notes"
	"github.com/MarcoPoloResearchLab/notebot/internal/personas"
	"github.com/MarcoPoloResearchLab/notebot/internal/registry"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	// DefaultBusyTimeout bounds how long a connection waits on a locked database.
	DefaultBusyTimeout  = 5 * time.Second
	defaultMaxOpenConns = 8
)

// Options tunes the SQLite connection.
type Options struct {
	BusyTimeout  time.Duration
	MaxOpenConns int
}

// OpenSQLite opens (or creates) the database file, configures it for
// concurrent access and bootstraps the schema and seed catalogs.
func OpenSQLite(path string, options Options, logger *zap.Logger) (*gorm.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(buildDSN(path, options.BusyTimeout)), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	maxOpen := options.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	sqlDB.SetMaxOpenConns(maxOpen)

	if err := db.AutoMigrate(
		&notes.Note{},
		&notes.ActivityLogEntry{},
		&registry.Model{},
		&personas.Character{},
		&personas.UserCharacter{},
	); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if err := applyBootstrap(db, logger); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	logger.Info("database initialized", zap.String("path", path))
	return db, nil
}

// buildDSN appends the per-connection pragmas. _txlock=immediate makes every
// transaction take the write lock at BEGIN so read-then-write transactions
// wait on busy_timeout instead of failing on lock upgrade.
func buildDSN(path string, busyTimeout time.Duration) string {
	if busyTimeout <= 0 {
		busyTimeout = DefaultBusyTimeout
	}
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	params.Set("_txlock", "immediate")

	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	return path + separator + params.Encode()
}
