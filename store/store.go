package store

import (
	"context"

	"github.com/ze-parceiro/simulator_api/model"
)

// Store is the capability set both persistence tiers offer.
type Store interface {
	Name() string

	GetPlayerByCode(ctx context.Context, code string) (*model.Player, error)
	GetSession(ctx context.Context, id string) (*model.GameSession, error)

	UpsertPlayer(ctx context.Context, player *model.Player) (*model.Player, error)
	UpsertSession(ctx context.Context, session *model.GameSession) (*model.GameSession, error)

	AppendProgress(ctx context.Context, progress *model.CheckpointProgress) (*model.CheckpointProgress, error)

	QueryCompletedSessions(ctx context.Context) ([]model.GameSession, error)
}
