package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MarcoPoloResearchLab/notebot/internal/users"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()
)

type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew     = "notes.service.new"
	opAddNote        = "notes.add_note"
	opListRecent     = "notes.list_recent_notes"
	opListAll        = "notes.list_all_notes"
	opCountNotes     = "notes.count_notes"
	opUpdateNote     = "notes.update_note"
	opDeleteNote     = "notes.delete_note"
	opSearchNotes    = "notes.search_notes"
	opWeeklyStats    = "notes.weekly_activity_stats"
	weeklyStatsRange = 7 * 24 * time.Hour

	queryUserID     = "user_id = ?"
	queryUserNote   = "user_id = ? AND id = ?"
	orderIDAsc      = "id ASC"
	orderIDDesc     = "id DESC"
	reasonCount     = "count_failed"
	reasonInsert    = "note_insert_failed"
	reasonAudit     = "audit_insert_failed"
	reasonQuery     = "query_failed"
	reasonUpdate    = "note_update_failed"
	reasonLookup    = "note_lookup_failed"
	reasonDelete    = "note_delete_failed"
	reasonMissingDB = "missing_database"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service owns notes and their activity log.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, reasonMissingDB, errMissingDatabase)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:     cfg.Database,
		clock:  clock,
		logger: logger,
	}, nil
}

// AddNote stores a note and its create audit entry in one transaction. When the
// user already owns MaxNotesPerUser notes the result is rejected and nothing is written.
func (s *Service) AddNote(ctx context.Context, userID users.ID, text NoteText) (AddResult, error) {
	var result AddResult
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var liveNotes int64
		if err := tx.Model(&Note{}).Where(queryUserID, userID.Int64()).Count(&liveNotes).Error; err != nil {
			s.logError(opAddNote, reasonCount, err, zap.Int64("user_id", userID.Int64()))
			return newServiceError(opAddNote, reasonCount, err)
		}
		if liveNotes >= MaxNotesPerUser {
			result.Rejected = true
			return nil
		}

		now := s.clock().UTC().Unix()
		note := Note{
			UserID:           userID.Int64(),
			Text:             text.String(),
			CreatedAtSeconds: now,
		}
		if err := tx.Create(&note).Error; err != nil {
			s.logError(opAddNote, reasonInsert, err, zap.Int64("user_id", userID.Int64()))
			return newServiceError(opAddNote, reasonInsert, err)
		}

		noteID := note.ID
		entry := ActivityLogEntry{
			UserID:           userID.Int64(),
			Action:           ActivityActionCreate,
			NoteID:           &noteID,
			CreatedAtSeconds: now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			s.logError(opAddNote, reasonAudit, err,
				zap.Int64("user_id", userID.Int64()),
				zap.Int64("note_id", noteID))
			return newServiceError(opAddNote, reasonAudit, err)
		}

		result.ID = NoteID(noteID)
		return nil
	})
	if txErr != nil {
		return AddResult{}, txErr
	}

	if result.Rejected {
		s.logger.Info("note quota reached",
			zap.Int64("user_id", userID.Int64()),
			zap.Int("limit", MaxNotesPerUser))
	}
	return result, nil
}

// ListRecentNotes returns the newest notes first, bounded by limit.
func (s *Service) ListRecentNotes(ctx context.Context, userID users.ID, limit int) ([]Note, error) {
	notes := []Note{}
	if err := s.db.WithContext(ctx).
		Where(queryUserID, userID.Int64()).
		Order(orderIDDesc).
		Limit(normalizeLimit(limit)).
		Find(&notes).Error; err != nil {
		s.logError(opListRecent, reasonQuery, err, zap.Int64("user_id", userID.Int64()))
		return nil, newServiceError(opListRecent, reasonQuery, err)
	}
	return notes, nil
}

// ListAllNotes returns every note owned by the user, oldest first.
func (s *Service) ListAllNotes(ctx context.Context, userID users.ID) ([]Note, error) {
	notes := []Note{}
	if err := s.db.WithContext(ctx).
		Where(queryUserID, userID.Int64()).
		Order(orderIDAsc).
		Find(&notes).Error; err != nil {
		s.logError(opListAll, reasonQuery, err, zap.Int64("user_id", userID.Int64()))
		return nil, newServiceError(opListAll, reasonQuery, err)
	}
	return notes, nil
}

// CountNotes returns how many live notes the user owns.
func (s *Service) CountNotes(ctx context.Context, userID users.ID) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&Note{}).
		Where(queryUserID, userID.Int64()).
		Count(&total).Error; err != nil {
		s.logError(opCountNotes, reasonCount, err, zap.Int64("user_id", userID.Int64()))
		return 0, newServiceError(opCountNotes, reasonCount, err)
	}
	return total, nil
}

// UpdateNote replaces the text of a note owned by the user. Edits are not
// written to the activity log.
func (s *Service) UpdateNote(ctx context.Context, userID users.ID, noteID NoteID, text NoteText) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&Note{}).
		Where(queryUserNote, userID.Int64(), noteID.Int64()).
		Update("text", text.String())
	if result.Error != nil {
		s.logError(opUpdateNote, reasonUpdate, result.Error,
			zap.Int64("user_id", userID.Int64()),
			zap.Int64("note_id", noteID.Int64()))
		return false, newServiceError(opUpdateNote, reasonUpdate, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteNote removes a note owned by the user and records the deletion. A
// missing or foreign note yields false without touching the activity log.
func (s *Service) DeleteNote(ctx context.Context, userID users.ID, noteID NoteID) (bool, error) {
	deleted := false
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Note
		err := tx.Select("id").Where(queryUserNote, userID.Int64(), noteID.Int64()).Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			s.logError(opDeleteNote, reasonLookup, err,
				zap.Int64("user_id", userID.Int64()),
				zap.Int64("note_id", noteID.Int64()))
			return newServiceError(opDeleteNote, reasonLookup, err)
		}

		auditedID := existing.ID
		entry := ActivityLogEntry{
			UserID:           userID.Int64(),
			Action:           ActivityActionDelete,
			NoteID:           &auditedID,
			CreatedAtSeconds: s.clock().UTC().Unix(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			s.logError(opDeleteNote, reasonAudit, err,
				zap.Int64("user_id", userID.Int64()),
				zap.Int64("note_id", noteID.Int64()))
			return newServiceError(opDeleteNote, reasonAudit, err)
		}

		removal := tx.Where(queryUserNote, userID.Int64(), noteID.Int64()).Delete(&Note{})
		if removal.Error != nil {
			s.logError(opDeleteNote, reasonDelete, removal.Error,
				zap.Int64("user_id", userID.Int64()),
				zap.Int64("note_id", noteID.Int64()))
			return newServiceError(opDeleteNote, reasonDelete, removal.Error)
		}
		deleted = removal.RowsAffected > 0
		return nil
	})
	if txErr != nil {
		return false, txErr
	}
	return deleted, nil
}

// SearchNotes performs a case-sensitive substring match, newest first.
// instr is used instead of LIKE so caller input never acts as a pattern.
func (s *Service) SearchNotes(ctx context.Context, userID users.ID, substring string, limit int) ([]Note, error) {
	notes := []Note{}
	if substring == "" {
		return notes, nil
	}
	if err := s.db.WithContext(ctx).
		Where(queryUserID, userID.Int64()).
		Where("instr(text, ?) > 0", substring).
		Order(orderIDDesc).
		Limit(normalizeLimit(limit)).
		Find(&notes).Error; err != nil {
		s.logError(opSearchNotes, reasonQuery, err, zap.Int64("user_id", userID.Int64()))
		return nil, newServiceError(opSearchNotes, reasonQuery, err)
	}
	return notes, nil
}

type actionCount struct {
	Action ActivityAction
	Count  int64
}

// WeeklyActivityStats counts create and delete events recorded within the
// seven days preceding the service clock.
func (s *Service) WeeklyActivityStats(ctx context.Context, userID users.ID) (WeeklyStats, error) {
	since := s.clock().UTC().Add(-weeklyStatsRange).Unix()

	var rows []actionCount
	if err := s.db.WithContext(ctx).
		Model(&ActivityLogEntry{}).
		Select("action, COUNT(id) AS count").
		Where("user_id = ? AND created_at_s >= ?", userID.Int64(), since).
		Group("action").
		Scan(&rows).Error; err != nil {
		s.logError(opWeeklyStats, reasonQuery, err, zap.Int64("user_id", userID.Int64()))
		return WeeklyStats{}, newServiceError(opWeeklyStats, reasonQuery, err)
	}

	var stats WeeklyStats
	for _, row := range rows {
		switch row.Action {
		case ActivityActionCreate:
			stats.Created = row.Count
		case ActivityActionDelete:
			stats.Deleted = row.Count
		}
	}
	return stats, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil {
		return noOpLogger
	}
	if s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("notes service error", attrs...)
}
