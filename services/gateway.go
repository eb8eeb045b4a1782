package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"github.com/ze-parceiro/simulator_api/dto"
	"github.com/ze-parceiro/simulator_api/model"
	"github.com/ze-parceiro/simulator_api/shared"
	"github.com/ze-parceiro/simulator_api/store"
)

// GatewayService persists players, sessions and checkpoint attempts. Every
// operation tries the remote store first and falls back to the local one, so
// a call only fails when both tiers are down.
type GatewayService struct {
	appContext.DefaultService

	fallback *store.Fallback
	now      func() time.Time
}

const GATEWAY_SVC = "gateway_svc"

var ErrSessionNotFound = errors.New("session not found")

// SessionData is the full set of figures written when a session is saved in one shot.
type SessionData struct {
	Score                int
	LivesUsed            int
	TotalTime            int
	CompletedCheckpoints int
	KPIs                 model.KPISet
	IsCompleted          bool
}

func NewGatewayService(remote, local store.Store) *GatewayService {
	svc := &GatewayService{now: time.Now}
	svc.fallback = store.NewFallback(remote, local)
	svc.fallback.OnFallback = observeFallback
	return svc
}

func (svc GatewayService) Id() string {
	return GATEWAY_SVC
}

func (svc *GatewayService) Configure(ctx *appContext.Context) error {
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *GatewayService) Start() error {
	var remote store.Store
	if fs, ok := svc.Service(FIRESTORE_SVC).(*FirestoreService); ok && fs != nil {
		remote = fs
	}

	localID := SQLITE_SVC
	if UsePostgres() {
		localID = POSTGRES_SVC
	}
	provider, ok := svc.Service(localID).(LocalStoreProvider)
	if !ok || provider.LocalStore() == nil {
		return fmt.Errorf("local store %s is not available", localID)
	}

	svc.fallback = store.NewFallback(remote, provider.LocalStore())
	svc.fallback.OnFallback = observeFallback
	return nil
}

// LocalStore exposes the local tier for reporting queries that only it can answer.
func (svc *GatewayService) LocalStore() *LocalStore {
	if ls, ok := svc.fallback.Local.(*LocalStore); ok {
		return ls
	}
	return nil
}

// SanitizeCode normalises a participant code before lookups.
func SanitizeCode(code string) string {
	return strings.Join(strings.Fields(code), " ")
}

// LocalCode is the synthetic code used when only a player id is known.
func LocalCode(playerID string) string {
	return playerID + "@local"
}

// SavePlayer looks the participant up by code and creates it when missing.
// An existing participant only has its name updated, and only when a new
// non-empty name differs from the stored one.
func (svc *GatewayService) SavePlayer(ctx context.Context, code, name string) (*model.Player, error) {
	code = SanitizeCode(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, errors.New("participant code is required")
	}

	var saved *model.Player
	err := svc.fallback.Run(ctx, "save_player", func(ctx context.Context, s store.Store) error {
		existing, err := s.GetPlayerByCode(ctx, code)
		if err != nil && !store.IsNotFound(err) {
			return err
		}
		if existing != nil {
			if name == "" || existing.Name == name {
				saved = existing
				return nil
			}
			existing.Name = name
			saved, err = s.UpsertPlayer(ctx, existing)
			return err
		}
		saved, err = s.UpsertPlayer(ctx, &model.Player{Code: code, Name: name})
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// CreateSession opens an empty, not completed session for the player.
func (svc *GatewayService) CreateSession(ctx context.Context, player *model.Player) (*model.GameSession, error) {
	if player == nil || player.ID == "" {
		return nil, errors.New("player is required")
	}
	code := player.Code
	if code == "" {
		code = LocalCode(player.ID)
	}

	var created *model.GameSession
	err := svc.fallback.Run(ctx, "create_session", func(ctx context.Context, s store.Store) error {
		now := svc.now()
		var err error
		created, err = s.UpsertSession(ctx, &model.GameSession{
			PlayerID:   player.ID,
			PlayerCode: code,
			PlayerName: player.Name,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateGameSession applies patch to the session with the given id. Completed
// sessions are frozen and come back unchanged.
func (svc *GatewayService) UpdateGameSession(ctx context.Context, sessionID string, patch model.SessionPatch) (*model.GameSession, error) {
	var updated *model.GameSession
	err := svc.fallback.Run(ctx, "update_session", func(ctx context.Context, s store.Store) error {
		current, err := s.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if current.IsCompleted {
			updated = current
			return nil
		}
		patch.Apply(current, svc.now())
		updated, err = s.UpsertSession(ctx, current)
		return err
	})
	if err != nil {
		if store.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	return updated, nil
}

// SaveGameSession records a finished session in one write. There is no dedup
// key: calling it twice creates two sessions.
func (svc *GatewayService) SaveGameSession(ctx context.Context, player *model.Player, data SessionData) (*model.GameSession, error) {
	if player == nil || player.ID == "" {
		return nil, errors.New("player is required")
	}
	code := player.Code
	if code == "" {
		code = LocalCode(player.ID)
	}

	var saved *model.GameSession
	err := svc.fallback.Run(ctx, "save_session", func(ctx context.Context, s store.Store) error {
		now := svc.now()
		session := &model.GameSession{
			PlayerID:             player.ID,
			PlayerCode:           code,
			PlayerName:           player.Name,
			Score:                data.Score,
			LivesUsed:            data.LivesUsed,
			TotalTime:            data.TotalTime,
			CompletedCheckpoints: data.CompletedCheckpoints,
			KPIAvailability:      data.KPIs.Availability,
			KPIAcceptanceRate:    data.KPIs.AcceptanceRate,
			KPIDeliveryTime:      data.KPIs.DeliveryTime,
			KPIRating:            data.KPIs.Rating,
			IsCompleted:          data.IsCompleted,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if data.IsCompleted {
			session.CompletedAt = &now
		}
		var err error
		saved, err = s.UpsertSession(ctx, session)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// SaveCheckpointProgress appends one attempt. Failures are logged and dropped.
func (svc *GatewayService) SaveCheckpointProgress(ctx context.Context, sessionID string, checkpointID int, answeredCorrectly bool, timeTaken int) {
	err := svc.fallback.Run(ctx, "append_progress", func(ctx context.Context, s store.Store) error {
		_, err := s.AppendProgress(ctx, &model.CheckpointProgress{
			SessionID:         sessionID,
			CheckpointID:      checkpointID,
			AnsweredCorrectly: answeredCorrectly,
			TimeTaken:         timeTaken,
			CreatedAt:         svc.now(),
		})
		return err
	})
	if err != nil {
		log.WithFields(log.Fields{
			"session_id":    sessionID,
			"checkpoint_id": checkpointID,
			"error":         err.Error(),
		}).Warn("Checkpoint progress lost")
	}
}

// GetCompletedSessions merges completed sessions from both tiers, newest first.
// Sessions without a completion time sort last.
func (svc *GatewayService) GetCompletedSessions(ctx context.Context) []model.GameSession {
	var combined []model.GameSession
	seen := map[string]bool{}
	svc.fallback.Each(ctx, "query_completed_sessions", func(ctx context.Context, s store.Store) error {
		sessions, err := s.QueryCompletedSessions(ctx)
		if err != nil {
			return err
		}
		for _, gs := range sessions {
			if seen[gs.ID] {
				continue
			}
			seen[gs.ID] = true
			combined = append(combined, gs)
		}
		return nil
	})

	sort.SliceStable(combined, func(i, j int) bool {
		a, b := combined[i].CompletedAt, combined[j].CompletedAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
	if combined == nil {
		combined = []model.GameSession{}
	}
	return combined
}

// GetCheckpointStats aggregates attempts per checkpoint from the local tier.
func (svc *GatewayService) GetCheckpointStats(ctx context.Context) (*dto.CheckpointStatsResponse, error) {
	local := svc.LocalStore()
	if local == nil {
		return nil, shared.NewServiceUnavailableError(store.ErrNotConfigured, "Local store not available")
	}

	stats, err := local.Analytics().GetCheckpointStats(ctx)
	if err != nil {
		return nil, shared.NewServiceUnavailableError(err, "Could not load checkpoint statistics")
	}
	if stats == nil {
		stats = []model.CheckpointStat{}
	}
	return &dto.CheckpointStatsResponse{Source: local.Name(), Stats: stats}, nil
}
