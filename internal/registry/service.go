package registry

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	queryActive = "active = ?"
	queryID     = "id = ?"
	orderIDAsc  = "id ASC"
)

// ServiceConfig describes the dependencies of the model registry.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service manages the model registry and its single active model.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService constructs the registry service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("registry: database connection required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, logger: logger}, nil
}

// ListModels returns every registered model ordered by id.
func (s *Service) ListModels(ctx context.Context) ([]Model, error) {
	models := []Model{}
	if err := s.db.WithContext(ctx).Order(orderIDAsc).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("registry: list models: %w", err)
	}
	return models, nil
}

// activeModelRule is one step of active model resolution. A rule reports
// found=false to defer to the next rule.
type activeModelRule struct {
	name    string
	resolve func(ctx context.Context, db *gorm.DB) (Model, bool, error)
}

func (s *Service) activeModelRules() []activeModelRule {
	return []activeModelRule{
		{name: "flagged_active", resolve: s.findFlaggedActive},
		{name: "promote_lowest_id", resolve: s.promoteLowestID},
	}
}

// GetActiveModel returns the active model. When no row is flagged active the
// lowest-id model is promoted. ErrEmptyRegistry is returned when no models exist.
func (s *Service) GetActiveModel(ctx context.Context) (Model, error) {
	db := s.db.WithContext(ctx)
	for _, rule := range s.activeModelRules() {
		model, found, err := rule.resolve(ctx, db)
		if err != nil {
			return Model{}, fmt.Errorf("registry: resolve active model (%s): %w", rule.name, err)
		}
		if found {
			return model, nil
		}
	}
	s.logger.Error("model registry is empty")
	return Model{}, ErrEmptyRegistry
}

func (s *Service) findFlaggedActive(_ context.Context, db *gorm.DB) (Model, bool, error) {
	return takeModel(db.Where(queryActive, true))
}

func (s *Service) promoteLowestID(_ context.Context, db *gorm.DB) (Model, bool, error) {
	var promoted Model
	found := false
	err := db.Transaction(func(tx *gorm.DB) error {
		// Another writer may have repaired the registry before the lock was taken.
		current, ok, err := takeModel(tx.Where(queryActive, true))
		if err != nil {
			return err
		}
		if ok {
			promoted, found = current, true
			return nil
		}

		lowest, ok, err := takeModel(tx.Order(orderIDAsc))
		if err != nil || !ok {
			return err
		}
		if err := activateExclusive(tx, lowest.ID); err != nil {
			return err
		}
		lowest.Active = true
		promoted, found = lowest, true
		s.logger.Warn("no active model, promoted lowest id",
			zap.Int64("model_id", lowest.ID),
			zap.String("model_key", lowest.Key))
		return nil
	})
	if err != nil {
		return Model{}, false, err
	}
	return promoted, found, nil
}

// SetActiveModel makes the model with the given id the only active one.
// ErrUnknownModel is returned, and nothing changes, when the id is not registered.
func (s *Service) SetActiveModel(ctx context.Context, modelID int64) (Model, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, exists, err := takeModel(tx.Where(queryID, modelID))
		if err != nil {
			return err
		}
		if !exists {
			return ErrUnknownModel
		}
		return activateExclusive(tx, modelID)
	})
	if errors.Is(err, ErrUnknownModel) {
		return Model{}, fmt.Errorf("%w: %d", ErrUnknownModel, modelID)
	}
	if err != nil {
		s.logger.Error("set active model failed", zap.Int64("model_id", modelID), zap.Error(err))
		return Model{}, fmt.Errorf("registry: set active model: %w", err)
	}

	s.logger.Info("active model changed", zap.Int64("model_id", modelID))
	return s.GetActiveModel(ctx)
}

// activateExclusive clears the current active flag before setting the new one
// so the partial unique index never sees two active rows.
func activateExclusive(tx *gorm.DB, modelID int64) error {
	if err := tx.Model(&Model{}).Where(queryActive, true).Update("active", false).Error; err != nil {
		return err
	}
	return tx.Model(&Model{}).Where(queryID, modelID).Update("active", true).Error
}

func takeModel(query *gorm.DB) (Model, bool, error) {
	var model Model
	err := query.Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Model{}, false, nil
	}
	if err != nil {
		return Model{}, false, err
	}
	return model, true, nil
}
