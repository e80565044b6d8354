package database

import (
	"github.com/MarcoPoloResearchLab/notebot/internal/personas"
	"github.com/MarcoPoloResearchLab/notebot/internal/registry"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	stepSingleActiveIndex = "create_single_active_model_index"
	stepSeedModels        = "seed_model_catalog"
	stepSeedCharacters    = "seed_character_catalog"
)

type bootstrapStep struct {
	name  string
	apply func(*gorm.DB) (int64, error)
}

// applyBootstrap runs every step on each start; all steps are idempotent.
func applyBootstrap(db *gorm.DB, logger *zap.Logger) error {
	steps := []bootstrapStep{
		{name: stepSingleActiveIndex, apply: createSingleActiveIndex},
		{name: stepSeedModels, apply: seedModels},
		{name: stepSeedCharacters, apply: seedCharacters},
	}

	for _, step := range steps {
		inserted, err := step.apply(db)
		if err != nil {
			logger.Error("database bootstrap step failed", zap.String("step", step.name), zap.Error(err))
			return err
		}
		if inserted > 0 {
			logger.Info("database bootstrap step applied",
				zap.String("step", step.name),
				zap.Int64("rows", inserted))
		}
	}
	return nil
}

func createSingleActiveIndex(db *gorm.DB) (int64, error) {
	err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS " + registry.SingleActiveIndexName +
		" ON models(active) WHERE active = 1").Error
	return 0, err
}

func seedModels(db *gorm.DB) (int64, error) {
	catalog := registry.SeedCatalog()
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&catalog)
	return result.RowsAffected, result.Error
}

func seedCharacters(db *gorm.DB) (int64, error) {
	catalog := personas.SeedCatalog()
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&catalog)
	return result.RowsAffected, result.Error
}
