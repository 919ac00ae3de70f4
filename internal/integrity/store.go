package integrity

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/squadpulse/squadpulse/internal/player"
)

// Store is the persistence surface the engine needs: load one player,
// replace it together with its audit entry, and read the audit trail back.
type Store interface {
	GetPlayer(ctx context.Context, id string) (*player.Player, error)
	FindByJerseyNumber(ctx context.Context, number int, excludeID string) (*player.Player, error)
	// ReplaceAndLog persists the full player document and appends the
	// history entry in one transaction, so a failed write leaves neither.
	ReplaceAndLog(ctx context.Context, p *player.Player, record *DataUpdate) error
	History(ctx context.Context, playerID string, limit int) ([]DataUpdate, error)
}

type gormStore struct {
	db      *gorm.DB
	players player.Repository
}

// NewStore creates the gorm-backed store used in production.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db, players: player.NewRepository(db)}
}

func (s *gormStore) GetPlayer(ctx context.Context, id string) (*player.Player, error) {
	return s.players.GetByID(ctx, id)
}

func (s *gormStore) FindByJerseyNumber(ctx context.Context, number int, excludeID string) (*player.Player, error) {
	return s.players.FindByJerseyNumber(ctx, number, excludeID)
}

func (s *gormStore) ReplaceAndLog(ctx context.Context, p *player.Player, record *DataUpdate) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := player.NewRepository(tx).Replace(ctx, p); err != nil {
			return err
		}
		return tx.Create(record).Error
	})
}

func (s *gormStore) History(ctx context.Context, playerID string, limit int) ([]DataUpdate, error) {
	var updates []DataUpdate
	err := s.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&updates).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []DataUpdate{}, nil
		}
		return nil, err
	}
	return updates, nil
}
