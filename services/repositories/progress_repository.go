package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ze-parceiro/simulator_api/model"
	"gorm.io/gorm"
)

// ProgressRepository is the append-only log of checkpoint attempts
type ProgressRepository struct {
	BaseRepository
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *ProgressRepository) CreateProgress(ctx context.Context, progress *model.CheckpointProgress) (*model.CheckpointProgress, error) {
	if progress.ID == "" {
		id, _ := uuid.NewV7()
		progress.ID = id.String()
	}
	if progress.CreatedAt.IsZero() {
		progress.CreatedAt = time.Now()
	}
	if err := ds.db.WithContext(ctx).Create(progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

func (ds *ProgressRepository) GetProgressBySession(ctx context.Context, sessionID string) ([]model.CheckpointProgress, error) {
	var progress []model.CheckpointProgress
	if err := ds.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}
