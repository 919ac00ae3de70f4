// player/repository.go
package player

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrPlayerNotFound is returned when the referenced player id does not exist.
var ErrPlayerNotFound = errors.New("player not found")

// Repository defines all database operations for the player roster.
type Repository interface {
	Create(ctx context.Context, player *Player) error
	GetByID(ctx context.Context, id string) (*Player, error)
	GetAll(ctx context.Context, page, limit int, filters map[string]interface{}) ([]Player, int64, error)
	// Replace persists the player row as a full-document replacement.
	Replace(ctx context.Context, player *Player) error
	Delete(ctx context.Context, id string) error
	// FindByJerseyNumber returns a player wearing the given number, excluding
	// excludeID, or (nil, nil) when the number is free.
	FindByJerseyNumber(ctx context.Context, number int, excludeID string) (*Player, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new player repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, player *Player) error {
	return r.db.WithContext(ctx).Create(player).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Player, error) {
	var player Player
	if err := r.db.WithContext(ctx).First(&player, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

func (r *repository) GetAll(ctx context.Context, page, limit int, filters map[string]interface{}) ([]Player, int64, error) {
	var players []Player
	var totalCount int64

	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).Model(&Player{})

	for key, value := range filters {
		switch key {
		case "squad":
			query = query.Where("squad = ?", value)
		case "position":
			query = query.Where("position = ?", value)
		case "name":
			query = query.Where("name ILIKE ?", "%"+value.(string)+"%")
		}
	}

	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&players).Error; err != nil {
		return nil, 0, err
	}

	return players, totalCount, nil
}

func (r *repository) Replace(ctx context.Context, player *Player) error {
	// Save writes every column, so the JSONB document is replaced wholesale
	// rather than patched field by field.
	return r.db.WithContext(ctx).Save(player).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Player{}, "id = ?", id).Error
}

func (r *repository) FindByJerseyNumber(ctx context.Context, number int, excludeID string) (*Player, error) {
	var player Player
	query := r.db.WithContext(ctx).Where("jersey_number = ?", number)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.First(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &player, nil
}
