package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ze-parceiro/simulator_api/model"
	"gorm.io/gorm"
)

// PlayerRepository handles participant lookups by code
type PlayerRepository struct {
	BaseRepository
}

func NewPlayerRepository(db *gorm.DB) *PlayerRepository {
	return &PlayerRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *PlayerRepository) GetPlayerByCode(ctx context.Context, code string) (*model.Player, error) {
	var player model.Player
	if err := ds.db.WithContext(ctx).Where("code = ?", code).First(&player).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

func (ds *PlayerRepository) GetPlayer(ctx context.Context, id string) (*model.Player, error) {
	var player model.Player
	if err := ds.db.WithContext(ctx).Where("id = ?", id).First(&player).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

// SavePlayer inserts the player when it has no id yet, otherwise updates it in place.
func (ds *PlayerRepository) SavePlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	now := time.Now()
	if player.ID == "" {
		id, _ := uuid.NewV7()
		player.ID = id.String()
	}
	if player.CreatedAt.IsZero() {
		player.CreatedAt = now
	}
	player.UpdatedAt = now

	if err := ds.db.WithContext(ctx).Save(player).Error; err != nil {
		return nil, err
	}
	return player, nil
}
