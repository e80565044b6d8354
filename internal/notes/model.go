package notes

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ActivityAction enumerates the audited note mutations.
type ActivityAction string

const (
	// ActivityActionCreate records a note creation.
	ActivityActionCreate ActivityAction = "create"
	// ActivityActionDelete records a note deletion.
	ActivityActionDelete ActivityAction = "delete"
)

const (
	// MaxNotesPerUser bounds the number of live notes a single user may own.
	MaxNotesPerUser = 50
	// DefaultListLimit applies when a caller passes a non-positive limit.
	DefaultListLimit = 10
)

var (
	// ErrInvalidNoteID indicates that a note identifier is not positive.
	ErrInvalidNoteID = errors.New("notes: invalid note id")
	// ErrEmptyText indicates that note text is empty after trimming.
	ErrEmptyText = errors.New("notes: empty note text")
)

// NoteID represents a validated note identifier.
type NoteID int64

// NewNoteID validates raw input and returns a NoteID.
func NewNoteID(value int64) (NoteID, error) {
	if value <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidNoteID, value)
	}
	return NoteID(value), nil
}

// Int64 exposes the raw identifier value.
func (id NoteID) Int64() int64 {
	return int64(id)
}

// NoteText represents validated, non-empty note content.
type NoteText string

// NewNoteText trims surrounding whitespace and rejects empty content.
func NewNoteText(rawInput string) (NoteText, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", ErrEmptyText
	}
	return NoteText(trimmed), nil
}

// String returns the underlying text.
func (text NoteText) String() string {
	return string(text)
}

// Note models a user-authored note.
type Note struct {
	ID               int64  `gorm:"column:id;primaryKey;autoIncrement"`
	UserID           int64  `gorm:"column:user_id;not null;index:idx_notes_user_id"`
	Text             string `gorm:"column:text;type:text;not null"`
	CreatedAtSeconds int64  `gorm:"column:created_at_s;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Note) TableName() string {
	return "notes"
}

// CreatedAt converts the stored unix seconds into a UTC time.
func (note Note) CreatedAt() time.Time {
	return time.Unix(note.CreatedAtSeconds, 0).UTC()
}

// ActivityLogEntry captures an append-only audit trail for note creation and deletion.
type ActivityLogEntry struct {
	ID               int64          `gorm:"column:id;primaryKey;autoIncrement"`
	UserID           int64          `gorm:"column:user_id;not null;index:idx_activity_user_time,priority:1"`
	Action           ActivityAction `gorm:"column:action;size:16;not null"`
	NoteID           *int64         `gorm:"column:note_id"`
	CreatedAtSeconds int64          `gorm:"column:created_at_s;not null;index:idx_activity_user_time,priority:2"`
}

// TableName provides the explicit table binding for GORM.
func (ActivityLogEntry) TableName() string {
	return "activity_log"
}

// AddResult reports the outcome of AddNote. Rejected is set when the user
// already owns MaxNotesPerUser notes; no row is written in that case.
type AddResult struct {
	ID       NoteID
	Rejected bool
}

// WeeklyStats counts audited note activity over the trailing seven days.
type WeeklyStats struct {
	Created int64
	Deleted int64
}
