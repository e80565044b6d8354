package personas

import (
	"context"
	"errors"
	"fmt"

	"github.com/MarcoPoloResearchLab/notebot/internal/users"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	columnUserID      = "telegram_user_id"
	columnCharacterID = "character_id"
	orderIDAsc        = "id ASC"
	queryID           = "id = ?"
)

// ServiceConfig describes the dependencies of the persona service.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service exposes the persona catalog and per-user persona assignments.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService constructs the persona service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("personas: database connection required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, logger: logger}, nil
}

// ListCharacters returns the catalog ordered by id, without prompts.
func (s *Service) ListCharacters(ctx context.Context) ([]CharacterSummary, error) {
	summaries := []CharacterSummary{}
	if err := s.db.WithContext(ctx).
		Model(&Character{}).
		Select("id, name").
		Order(orderIDAsc).
		Scan(&summaries).Error; err != nil {
		return nil, fmt.Errorf("personas: list characters: %w", err)
	}
	return summaries, nil
}

// GetCharacterByID looks up a persona. found is false when the id is unknown.
func (s *Service) GetCharacterByID(ctx context.Context, characterID int64) (Character, bool, error) {
	character, found, err := takeCharacter(s.db.WithContext(ctx).Where(queryID, characterID))
	if err != nil {
		return Character{}, false, fmt.Errorf("personas: get character %d: %w", characterID, err)
	}
	return character, found, nil
}

// SetUserCharacter assigns a persona to the user and returns it.
// ErrUnknownCharacter is returned, and nothing changes, when the id is not in the catalog.
func (s *Service) SetUserCharacter(ctx context.Context, userID users.ID, characterID int64) (Character, error) {
	var selected Character
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		character, found, err := takeCharacter(tx.Where(queryID, characterID))
		if err != nil {
			return err
		}
		if !found {
			return ErrUnknownCharacter
		}

		assignment := UserCharacter{UserID: userID.Int64(), CharacterID: character.ID}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: columnUserID}},
			DoUpdates: clause.AssignmentColumns([]string{columnCharacterID}),
		}).Create(&assignment).Error; err != nil {
			return err
		}
		selected = character
		return nil
	})
	if errors.Is(err, ErrUnknownCharacter) {
		return Character{}, fmt.Errorf("%w: %d", ErrUnknownCharacter, characterID)
	}
	if err != nil {
		s.logger.Error("set user character failed",
			zap.Int64("user_id", userID.Int64()),
			zap.Int64("character_id", characterID),
			zap.Error(err))
		return Character{}, fmt.Errorf("personas: set user character: %w", err)
	}
	return selected, nil
}

// characterRule is one step of persona resolution for a user.
type characterRule struct {
	name    string
	resolve func(db *gorm.DB, userID users.ID) (Character, bool, error)
}

var userCharacterRules = []characterRule{
	{name: "assigned", resolve: assignedCharacter},
	{name: "default_id", resolve: defaultCharacter},
	{name: "lowest_id", resolve: lowestCharacter},
}

// GetUserCharacter returns the user's persona, falling back to the default
// persona and then to the lowest-id persona. ErrEmptyCatalog is returned when
// the catalog has no rows.
func (s *Service) GetUserCharacter(ctx context.Context, userID users.ID) (Character, error) {
	db := s.db.WithContext(ctx)
	for _, rule := range userCharacterRules {
		character, found, err := rule.resolve(db, userID)
		if err != nil {
			return Character{}, fmt.Errorf("personas: resolve character (%s): %w", rule.name, err)
		}
		if found {
			return character, nil
		}
	}
	s.logger.Error("character catalog is empty", zap.Int64("user_id", userID.Int64()))
	return Character{}, ErrEmptyCatalog
}

// GetCharacterPromptForUser returns the system prompt of the user's persona.
func (s *Service) GetCharacterPromptForUser(ctx context.Context, userID users.ID) (string, error) {
	character, err := s.GetUserCharacter(ctx, userID)
	if err != nil {
		return "", err
	}
	return character.Prompt, nil
}

func assignedCharacter(db *gorm.DB, userID users.ID) (Character, bool, error) {
	return takeCharacter(db.
		Select("characters.id, characters.name, characters.prompt").
		Joins("JOIN user_character ON user_character.character_id = characters.id").
		Where("user_character.telegram_user_id = ?", userID.Int64()))
}

func defaultCharacter(db *gorm.DB, _ users.ID) (Character, bool, error) {
	return takeCharacter(db.Where(queryID, DefaultCharacterID))
}

func lowestCharacter(db *gorm.DB, _ users.ID) (Character, bool, error) {
	return takeCharacter(db.Order(orderIDAsc))
}

func takeCharacter(query *gorm.DB) (Character, bool, error) {
	var character Character
	err := query.Take(&character).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Character{}, false, nil
	}
	if err != nil {
		return Character{}, false, err
	}
	return character, true, nil
}
