package seeders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ze-parceiro/simulator_api/model"
	"github.com/ze-parceiro/simulator_api/services"
	"github.com/ze-parceiro/simulator_api/services/repositories"
	"github.com/ze-parceiro/simulator_api/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	legacyPlayersKey     = "ze-simulator.players"
	legacySessionsKey    = "ze-simulator.sessions"
	legacyCheckpointsKey = "ze-simulator.checkpoints"
	legacyOldPlayersKey  = "ze_delivery_players"
)

type legacyPlayer struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type legacySession struct {
	ID                   string  `json:"id"`
	PlayerID             string  `json:"player_id"`
	Score                float64 `json:"score"`
	LivesUsed            float64 `json:"lives_used"`
	TotalTime            float64 `json:"total_time"`
	CompletedCheckpoints float64 `json:"completed_checkpoints"`
	AccuracyPercentage   float64 `json:"accuracy_percentage"`
	DeliveryEfficiency   float64 `json:"delivery_efficiency"`
	CustomerSatisfaction float64 `json:"customer_satisfaction"`
	CompletedAt          *string `json:"completed_at"`
	IsCompleted          bool    `json:"is_completed"`
	Players              *struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"players"`
}

type legacyCheckpoint struct {
	ID                string  `json:"id"`
	SessionID         string  `json:"session_id"`
	CheckpointID      int     `json:"checkpoint_id"`
	AnsweredCorrectly bool    `json:"answered_correctly"`
	TimeTaken         float64 `json:"time_taken"`
	CreatedAt         string  `json:"created_at"`
}

// LegacyResult counts what an import wrote.
type LegacyResult struct {
	Players     int
	Sessions    int
	Checkpoints int
	Skipped     int
}

// LegacySeeder imports a browser localStorage export into the local store.
// Values may be the raw arrays or the JSON strings localStorage holds.
type LegacySeeder struct {
	db       *gorm.DB
	players  *repositories.PlayerRepository
	sessions *repositories.SessionRepository
}

func NewLegacySeeder(db *gorm.DB) *LegacySeeder {
	return &LegacySeeder{
		db:       db,
		players:  repositories.NewPlayerRepository(db),
		sessions: repositories.NewSessionRepository(db),
	}
}

func (s *LegacySeeder) Import(ctx context.Context, data []byte) (*LegacyResult, error) {
	var export map[string]json.RawMessage
	if err := shared.JSONAPI.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("invalid export: %w", err)
	}

	var players, oldPlayers []legacyPlayer
	var sessions []legacySession
	var checkpoints []legacyCheckpoint
	for key, dest := range map[string]interface{}{
		legacyPlayersKey:     &players,
		legacyOldPlayersKey:  &oldPlayers,
		legacySessionsKey:    &sessions,
		legacyCheckpointsKey: &checkpoints,
	} {
		if err := decodeEntry(export[key], dest); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}

	result := &LegacyResult{}
	ids := map[string]string{}

	for _, lp := range append(oldPlayers, players...) {
		id, err := s.importPlayer(ctx, lp)
		if err != nil {
			return result, err
		}
		if id == "" {
			result.Skipped++
			continue
		}
		ids[lp.ID] = id
		result.Players++
	}

	for _, ls := range sessions {
		ok, err := s.importSession(ctx, ls, ids)
		if err != nil {
			return result, err
		}
		if !ok {
			result.Skipped++
			continue
		}
		result.Sessions++
	}

	for _, lc := range checkpoints {
		if lc.SessionID == "" {
			result.Skipped++
			continue
		}
		progress := model.CheckpointProgress{
			ID:                lc.ID,
			SessionID:         lc.SessionID,
			CheckpointID:      lc.CheckpointID,
			AnsweredCorrectly: lc.AnsweredCorrectly,
			TimeTaken:         roundInt(lc.TimeTaken),
			CreatedAt:         parseTime(lc.CreatedAt),
		}
		if progress.ID == "" {
			progress.ID = fmt.Sprintf("%s-%d-%d", lc.SessionID, lc.CheckpointID, progress.CreatedAt.UnixNano())
		}
		if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&progress).Error; err != nil {
			return result, err
		}
		result.Checkpoints++
	}

	log.WithFields(log.Fields{
		"players":     result.Players,
		"sessions":    result.Sessions,
		"checkpoints": result.Checkpoints,
		"skipped":     result.Skipped,
	}).Info("Legacy import finished")
	return result, nil
}

// importPlayer returns the id the player is stored under. A code that already
// exists keeps its stored id.
func (s *LegacySeeder) importPlayer(ctx context.Context, lp legacyPlayer) (string, error) {
	code := lp.Code
	if code == "" {
		code = lp.Email
	}
	code = services.SanitizeCode(code)
	if code == "" {
		if lp.ID == "" {
			return "", nil
		}
		code = services.LocalCode(lp.ID)
	}

	existing, err := s.players.GetPlayerByCode(ctx, code)
	if err == nil {
		if lp.Name != "" && existing.Name != lp.Name {
			existing.Name = lp.Name
			if _, err := s.players.SavePlayer(ctx, existing); err != nil {
				return "", err
			}
		}
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	saved, err := s.players.SavePlayer(ctx, &model.Player{ID: lp.ID, Code: code, Name: lp.Name})
	if err != nil {
		return "", err
	}
	return saved.ID, nil
}

func (s *LegacySeeder) importSession(ctx context.Context, ls legacySession, ids map[string]string) (bool, error) {
	if ls.ID == "" || ls.PlayerID == "" {
		return false, nil
	}

	playerID, ok := ids[ls.PlayerID]
	if !ok {
		// sessions joined with their player carry the code inline
		if ls.Players == nil {
			return false, nil
		}
		id, err := s.importPlayer(ctx, legacyPlayer{ID: ls.PlayerID, Email: ls.Players.Email, Name: ls.Players.Name})
		if err != nil || id == "" {
			return false, err
		}
		ids[ls.PlayerID] = id
		playerID = id
	}

	player, err := s.players.GetPlayer(ctx, playerID)
	if err != nil {
		return false, err
	}

	session := &model.GameSession{
		ID:                   ls.ID,
		PlayerID:             playerID,
		PlayerCode:           player.Code,
		PlayerName:           player.Name,
		Score:                roundInt(ls.Score),
		LivesUsed:            roundInt(ls.LivesUsed),
		TotalTime:            roundInt(ls.TotalTime),
		CompletedCheckpoints: roundInt(ls.CompletedCheckpoints),
		KPIAvailability:      clampKPI(ls.AccuracyPercentage),
		KPIAcceptanceRate:    clampKPI(ls.DeliveryEfficiency),
		KPIRating:            clampKPI(ls.CustomerSatisfaction),
		IsCompleted:          ls.IsCompleted,
	}
	if ls.IsCompleted && ls.CompletedAt != nil {
		if at := parseTime(*ls.CompletedAt); !at.IsZero() {
			session.CompletedAt = &at
		}
	}

	if _, err := s.sessions.SaveSession(ctx, session); err != nil {
		return false, err
	}
	return true, nil
}

func decodeEntry(raw json.RawMessage, dest interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if raw[0] == '"' {
		var inner string
		if err := shared.JSONAPI.Unmarshal(raw, &inner); err != nil {
			return err
		}
		if strings.TrimSpace(inner) == "" {
			return nil
		}
		raw = json.RawMessage(inner)
	}
	return shared.JSONAPI.Unmarshal(raw, dest)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func clampKPI(v float64) int {
	return max(0, min(100, roundInt(v)))
}
