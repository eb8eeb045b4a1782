package seeders

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ze-parceiro/simulator_api/engine"
	"github.com/ze-parceiro/simulator_api/model"
	"github.com/ze-parceiro/simulator_api/services"
	"github.com/ze-parceiro/simulator_api/services/repositories"
	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// Migrate creates the local store tables
func (s *MainSeeder) Migrate() error {
	return services.MigrateLocalStore(s.db)
}

// SeedDemo writes a demo participant with one completed and one lost session,
// enough to exercise the reports.
func (s *MainSeeder) SeedDemo(ctx context.Context) error {
	if err := s.Migrate(); err != nil {
		return err
	}

	players := repositories.NewPlayerRepository(s.db)
	sessions := repositories.NewSessionRepository(s.db)
	progress := repositories.NewProgressRepository(s.db)

	player, err := players.GetPlayerByCode(ctx, "demo-0001")
	if err != nil {
		player, err = players.SavePlayer(ctx, &model.Player{Code: "demo-0001", Name: "Demo"})
		if err != nil {
			return fmt.Errorf("demo player: %w", err)
		}
	}

	catalogue := engine.DefaultCatalogue()
	rules := engine.DefaultRules()

	done := true
	won := &model.GameSession{
		PlayerID:             player.ID,
		PlayerCode:           player.Code,
		PlayerName:           player.Name,
		Score:                rules.PointsPerCorrect * len(catalogue),
		LivesUsed:            1,
		TotalTime:            642,
		CompletedCheckpoints: len(catalogue),
		KPIAvailability:      100,
		KPIAcceptanceRate:    100,
		KPIDeliveryTime:      100,
		KPIRating:            100,
	}
	model.SessionPatch{IsCompleted: &done}.Apply(won, time.Now())
	if won, err = sessions.SaveSession(ctx, won); err != nil {
		return err
	}
	for _, def := range catalogue {
		if _, err := progress.CreateProgress(ctx, &model.CheckpointProgress{
			SessionID:         won.ID,
			CheckpointID:      def.ID,
			AnsweredCorrectly: true,
			TimeTaken:         30 + def.ID*3,
		}); err != nil {
			return err
		}
	}

	lost := &model.GameSession{
		PlayerID:             player.ID,
		PlayerCode:           player.Code,
		PlayerName:           player.Name,
		Score:                2 * rules.PointsPerCorrect,
		LivesUsed:            rules.StartingLives,
		TotalTime:            210,
		CompletedCheckpoints: 2,
		KPIAvailability:      rules.KPIBaseline,
		KPIAcceptanceRate:    rules.KPIBaseline,
		KPIDeliveryTime:      rules.KPIBaseline,
		KPIRating:            rules.KPIBaseline,
	}
	if _, err := sessions.SaveSession(ctx, lost); err != nil {
		return err
	}

	log.WithField("player_id", player.ID).Info("Demo data seeded")
	return nil
}

// SeedLegacy imports a localStorage export
func (s *MainSeeder) SeedLegacy(ctx context.Context, data []byte) (*LegacyResult, error) {
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return NewLegacySeeder(s.db).Import(ctx, data)
}
