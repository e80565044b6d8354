package notes

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/notebot/internal/users"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T, clock func() time.Time) *Service {
	t.Helper()
	databasePath := filepath.Join(t.TempDir(), "notes.db")
	db, err := gorm.Open(sqlite.Open(databasePath+"?_pragma=busy_timeout(5000)&_txlock=immediate"), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Note{}, &ActivityLogEntry{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	service, err := NewService(ServiceConfig{
		Database: db,
		Clock:    clock,
		Logger:   zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to build notes service: %v", err)
	}
	return service
}

func fixedClock(unixSeconds int64) func() time.Time {
	return func() time.Time {
		return time.Unix(unixSeconds, 0).UTC()
	}
}

func mustUserID(t *testing.T, value int64) users.ID {
	t.Helper()
	id, err := users.NewID(value)
	if err != nil {
		t.Fatalf("unexpected user id error: %v", err)
	}
	return id
}

func mustNoteText(t *testing.T, value string) NoteText {
	t.Helper()
	text, err := NewNoteText(value)
	if err != nil {
		t.Fatalf("unexpected note text error: %v", err)
	}
	return text
}
