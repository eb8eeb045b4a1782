package repositories

import (
	"context"

	"github.com/ze-parceiro/simulator_api/model"
	"gorm.io/gorm"
)

// AnalyticRepository serves the reporting queries
type AnalyticRepository struct {
	BaseRepository
}

func NewAnalyticRepository(db *gorm.DB) *AnalyticRepository {
	return &AnalyticRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *AnalyticRepository) GetCompletedSessions(ctx context.Context) ([]model.GameSession, error) {
	var sessions []model.GameSession
	if err := ds.db.WithContext(ctx).
		Where("is_completed = ?", true).
		Order("completed_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetCheckpointStats aggregates attempts per checkpoint across all sessions.
func (ds *AnalyticRepository) GetCheckpointStats(ctx context.Context) ([]model.CheckpointStat, error) {
	var stats []model.CheckpointStat
	err := ds.db.WithContext(ctx).
		Model(&model.CheckpointProgress{}).
		Select("checkpoint_id, COUNT(*) AS attempts, " +
			"SUM(CASE WHEN answered_correctly THEN 1 ELSE 0 END) AS correct, " +
			"CAST(AVG(time_taken) AS INTEGER) AS avg_time_taken").
		Group("checkpoint_id").
		Order("checkpoint_id ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
