package personas

import "errors"

var (
	// ErrUnknownCharacter indicates that the requested persona id is not in the catalog.
	ErrUnknownCharacter = errors.New("personas: unknown character id")
	// ErrEmptyCatalog indicates that the persona catalog has no rows at all.
	ErrEmptyCatalog = errors.New("personas: character catalog is empty")
)

// DefaultCharacterID is the persona used for users without an assignment.
const DefaultCharacterID int64 = 1

// Character is a named system-instruction template.
type Character struct {
	ID     int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name   string `gorm:"column:name;size:190;not null;uniqueIndex:ux_characters_name"`
	Prompt string `gorm:"column:prompt;type:text;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Character) TableName() string {
	return "characters"
}

// CharacterSummary is the listing view of a persona; the prompt is omitted.
type CharacterSummary struct {
	ID   int64
	Name string
}

// UserCharacter records the persona a user picked. A missing row means the default applies.
type UserCharacter struct {
	UserID      int64     `gorm:"column:telegram_user_id;primaryKey;autoIncrement:false"`
	CharacterID int64     `gorm:"column:character_id;not null"`
	Character   Character `gorm:"foreignKey:CharacterID;references:ID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
}

// TableName provides the explicit table binding for GORM.
func (UserCharacter) TableName() string {
	return "user_character"
}
