package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MarcoPoloResearchLab/notebot/internal/database"
	"github.com/MarcoPoloResearchLab/notebot/internal/notes"
	"github.com/MarcoPoloResearchLab/notebot/internal/personas"
	"github.com/MarcoPoloResearchLab/notebot/internal/registry"
	"github.com/MarcoPoloResearchLab/notebot/internal/users"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config describes how the state store opens its backing file.
type Config struct {
	DatabasePath string
	BusyTimeout  time.Duration
	Clock        func() time.Time
}

// Store fronts the embedded database and exposes every state operation of the bot.
type Store struct {
	db       *gorm.DB
	notes    *notes.Service
	models   *registry.Service
	personas *personas.Service
	logger   *zap.Logger
}

// Open opens the database, bootstraps it and wires the domain services.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := database.OpenSQLite(cfg.DatabasePath, database.Options{BusyTimeout: cfg.BusyTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	store, err := New(db, cfg.Clock, logger)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	return store, nil
}

// New wires the domain services around an already bootstrapped database.
func New(db *gorm.DB, clock func() time.Time, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	notesService, err := notes.NewService(notes.ServiceConfig{
		Database: db,
		Clock:    clock,
		Logger:   logger.Named("notes"),
	})
	if err != nil {
		return nil, err
	}
	modelService, err := registry.NewService(registry.ServiceConfig{
		Database: db,
		Logger:   logger.Named("registry"),
	})
	if err != nil {
		return nil, err
	}
	personaService, err := personas.NewService(personas.ServiceConfig{
		Database: db,
		Logger:   logger.Named("personas"),
	})
	if err != nil {
		return nil, err
	}

	return &Store{
		db:       db,
		notes:    notesService,
		models:   modelService,
		personas: personaService,
		logger:   logger,
	}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Notes exposes the notes service.
func (s *Store) Notes() *notes.Service { return s.notes }

// Models exposes the model registry.
func (s *Store) Models() *registry.Service { return s.models }

// Personas exposes the persona service.
func (s *Store) Personas() *personas.Service { return s.personas }

func (s *Store) AddNote(ctx context.Context, userID users.ID, text notes.NoteText) (notes.AddResult, error) {
	return s.notes.AddNote(ctx, userID, text)
}

func (s *Store) ListRecentNotes(ctx context.Context, userID users.ID, limit int) ([]notes.Note, error) {
	return s.notes.ListRecentNotes(ctx, userID, limit)
}

func (s *Store) ListAllNotes(ctx context.Context, userID users.ID) ([]notes.Note, error) {
	return s.notes.ListAllNotes(ctx, userID)
}

func (s *Store) CountNotes(ctx context.Context, userID users.ID) (int64, error) {
	return s.notes.CountNotes(ctx, userID)
}

func (s *Store) UpdateNote(ctx context.Context, userID users.ID, noteID notes.NoteID, text notes.NoteText) (bool, error) {
	return s.notes.UpdateNote(ctx, userID, noteID, text)
}

func (s *Store) DeleteNote(ctx context.Context, userID users.ID, noteID notes.NoteID) (bool, error) {
	return s.notes.DeleteNote(ctx, userID, noteID)
}

func (s *Store) SearchNotes(ctx context.Context, userID users.ID, substring string, limit int) ([]notes.Note, error) {
	return s.notes.SearchNotes(ctx, userID, substring, limit)
}

func (s *Store) WeeklyActivityStats(ctx context.Context, userID users.ID) (notes.WeeklyStats, error) {
	return s.notes.WeeklyActivityStats(ctx, userID)
}

func (s *Store) ExportNotes(ctx context.Context, userID users.ID, displayName string) (string, error) {
	return s.notes.ExportNotes(ctx, userID, displayName)
}

func (s *Store) ListModels(ctx context.Context) ([]registry.Model, error) {
	return s.models.ListModels(ctx)
}

func (s *Store) GetActiveModel(ctx context.Context) (registry.Model, error) {
	return s.models.GetActiveModel(ctx)
}

func (s *Store) SetActiveModel(ctx context.Context, modelID int64) (registry.Model, error) {
	return s.models.SetActiveModel(ctx, modelID)
}

func (s *Store) ListCharacters(ctx context.Context) ([]personas.CharacterSummary, error) {
	return s.personas.ListCharacters(ctx)
}

func (s *Store) GetCharacterByID(ctx context.Context, characterID int64) (personas.Character, bool, error) {
	return s.personas.GetCharacterByID(ctx, characterID)
}

func (s *Store) SetUserCharacter(ctx context.Context, userID users.ID, characterID int64) (personas.Character, error) {
	return s.personas.SetUserCharacter(ctx, userID, characterID)
}

func (s *Store) GetUserCharacter(ctx context.Context, userID users.ID) (personas.Character, error) {
	return s.personas.GetUserCharacter(ctx, userID)
}

func (s *Store) GetCharacterPromptForUser(ctx context.Context, userID users.ID) (string, error) {
	return s.personas.GetCharacterPromptForUser(ctx, userID)
}

// IsNotFound reports whether err references an unknown model or persona.
func IsNotFound(err error) bool {
	return errors.Is(err, registry.ErrUnknownModel) || errors.Is(err, personas.ErrUnknownCharacter)
}

// IsConfigurationError reports whether err signals an empty seed catalog.
func IsConfigurationError(err error) bool {
	return errors.Is(err, registry.ErrEmptyRegistry) || errors.Is(err, personas.ErrEmptyCatalog)
}
