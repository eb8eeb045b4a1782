package seeders

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ze-parceiro/simulator_api/model"
	"github.com/ze-parceiro/simulator_api/services"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := services.OpenSqlite(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

const legacyExport = `{
  "ze_delivery_players": [{"id": "old-1", "code": "ze-0001", "name": "Ana"}],
  "ze-simulator.players": "[{\"id\":\"p-2\",\"code\":\"ze-0002\",\"name\":\"Bruno\"},{\"id\":\"p-3\",\"code\":\"\"}]",
  "ze-simulator.sessions": [
    {"id": "s-1", "player_id": "old-1", "score": 1500, "lives_used": 1, "total_time": 600,
     "completed_checkpoints": 15, "accuracy_percentage": 93.6, "delivery_efficiency": 120,
     "customer_satisfaction": 88, "completed_at": "2024-11-03T14:00:00.000Z", "is_completed": true},
    {"id": "s-2", "player_id": "p-2", "score": 200, "lives_used": 3, "total_time": 90,
     "completed_checkpoints": 2, "completed_at": null, "is_completed": false},
    {"id": "s-3", "player_id": "ghost", "score": 0}
  ],
  "ze-simulator.checkpoints": [
    {"id": "c-1", "session_id": "s-1", "checkpoint_id": 0, "answered_correctly": true, "time_taken": 12, "created_at": "2024-11-03T13:50:00.000Z"}
  ]
}`

func TestLegacySeeder_Import(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seeder := NewMainSeeder(db)

	result, err := seeder.SeedLegacy(ctx, []byte(legacyExport))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Players)
	assert.Equal(t, 2, result.Sessions)
	assert.Equal(t, 1, result.Checkpoints)
	assert.Equal(t, 1, result.Skipped)

	var local model.Player
	require.NoError(t, db.Where("id = ?", "p-3").First(&local).Error)
	assert.Equal(t, services.LocalCode("p-3"), local.Code)

	var won model.GameSession
	require.NoError(t, db.Where("id = ?", "s-1").First(&won).Error)
	assert.Equal(t, "ze-0001", won.PlayerCode)
	assert.Equal(t, 94, won.KPIAvailability)
	assert.Equal(t, 100, won.KPIAcceptanceRate)
	assert.Equal(t, 88, won.KPIRating)
	require.NotNil(t, won.CompletedAt)
	assert.True(t, won.IsCompleted)

	var lost model.GameSession
	require.NoError(t, db.Where("id = ?", "s-2").First(&lost).Error)
	assert.Nil(t, lost.CompletedAt)
	assert.Equal(t, "Bruno", lost.PlayerName)

	// importing twice does not duplicate anything
	_, err = seeder.SeedLegacy(ctx, []byte(legacyExport))
	require.NoError(t, err)
	var count int64
	db.Model(&model.CheckpointProgress{}).Count(&count)
	assert.Equal(t, int64(1), count)
	db.Model(&model.Player{}).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestLegacySeeder_InvalidExport(t *testing.T) {
	_, err := NewMainSeeder(newTestDB(t)).SeedLegacy(context.Background(), []byte("not json"))
	assert.Error(t, err)
}

func TestMainSeeder_SeedDemo(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, NewMainSeeder(db).SeedDemo(context.Background()))

	var completed int64
	db.Model(&model.GameSession{}).Where("is_completed = ?", true).Count(&completed)
	assert.Equal(t, int64(1), completed)
}
