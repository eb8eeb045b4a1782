package handlers

import (
	"context"

	"github.com/ze-parceiro/simulator_api/dto"
	"github.com/ze-parceiro/simulator_api/engine"
	"github.com/ze-parceiro/simulator_api/model"
)

type PlayServiceInterface interface {
	Login(ctx context.Context, code, name string) (*dto.LoginResponse, error)
	State(ctx context.Context, playID string) (engine.State, error)
	Move(ctx context.Context, playID string, req dto.MoveRequest) (*dto.MoveResponse, error)
	Reach(ctx context.Context, playID string, checkpointID int) (*dto.ReachResponse, error)
	Answer(ctx context.Context, playID string, checkpointID int, req dto.AnswerRequest) (*dto.AnswerResponse, error)
	UpdateSettings(ctx context.Context, playID string, req dto.SettingsRequest) (engine.State, error)
	Reset(ctx context.Context, playID string) (engine.State, error)
	End(ctx context.Context, playID string) error
	Certificate(ctx context.Context, playID string) (*model.Certificate, error)
}

type ContentServiceInterface interface {
	Questions() []dto.CheckpointQuestion
	Definition(id int) (engine.CheckpointDefinition, bool)
}

type ReportServiceInterface interface {
	GetCompletedSessions(ctx context.Context) []model.GameSession
	GetCheckpointStats(ctx context.Context) (*dto.CheckpointStatsResponse, error)
}
