package services

import (
	"context"
	"errors"

	"github.com/ze-parceiro/simulator_api/model"
	"github.com/ze-parceiro/simulator_api/services/repositories"
	"github.com/ze-parceiro/simulator_api/store"
	"gorm.io/gorm"
)

// LocalStore is the gorm-backed durable tier shared by the sqlite and postgres services.
type LocalStore struct {
	name      string
	players   *repositories.PlayerRepository
	sessions  *repositories.SessionRepository
	progress  *repositories.ProgressRepository
	analytics *repositories.AnalyticRepository
}

// LocalStoreProvider is implemented by database services that can back the gateway.
type LocalStoreProvider interface {
	LocalStore() *LocalStore
}

var localModels = []interface{}{
	&model.Player{},
	&model.GameSession{},
	&model.CheckpointProgress{},
}

// MigrateLocalStore creates or updates the local tables.
func MigrateLocalStore(db *gorm.DB) error {
	return db.AutoMigrate(localModels...)
}

func NewLocalStore(name string, db *gorm.DB) *LocalStore {
	return &LocalStore{
		name:      name,
		players:   repositories.NewPlayerRepository(db),
		sessions:  repositories.NewSessionRepository(db),
		progress:  repositories.NewProgressRepository(db),
		analytics: repositories.NewAnalyticRepository(db),
	}
}

func (s *LocalStore) Name() string {
	return s.name
}

func (s *LocalStore) Analytics() *repositories.AnalyticRepository {
	return s.analytics
}

func (s *LocalStore) Progress() *repositories.ProgressRepository {
	return s.progress
}

func (s *LocalStore) GetPlayerByCode(ctx context.Context, code string) (*model.Player, error) {
	p, err := s.players.GetPlayerByCode(ctx, code)
	if err != nil {
		return nil, s.handleError("get_player", err)
	}
	return p, nil
}

func (s *LocalStore) GetSession(ctx context.Context, id string) (*model.GameSession, error) {
	gs, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, s.handleError("get_session", err)
	}
	return gs, nil
}

func (s *LocalStore) UpsertPlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	p, err := s.players.SavePlayer(ctx, player)
	if err != nil {
		return nil, s.handleError("upsert_player", err)
	}
	return p, nil
}

func (s *LocalStore) UpsertSession(ctx context.Context, session *model.GameSession) (*model.GameSession, error) {
	gs, err := s.sessions.SaveSession(ctx, session)
	if err != nil {
		return nil, s.handleError("upsert_session", err)
	}
	return gs, nil
}

func (s *LocalStore) AppendProgress(ctx context.Context, progress *model.CheckpointProgress) (*model.CheckpointProgress, error) {
	p, err := s.progress.CreateProgress(ctx, progress)
	if err != nil {
		return nil, s.handleError("append_progress", err)
	}
	return p, nil
}

func (s *LocalStore) QueryCompletedSessions(ctx context.Context) ([]model.GameSession, error) {
	sessions, err := s.analytics.GetCompletedSessions(ctx)
	if err != nil {
		return nil, s.handleError("query_completed_sessions", err)
	}
	return sessions, nil
}

// handleError maps gorm and driver errors onto the store taxonomy.
func (s *LocalStore) handleError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.NewError(store.ErrorNotFound, s.name, op, err)
	}
	return store.NewError(store.ErrorLocalUnavailable, s.name, op, err)
}
