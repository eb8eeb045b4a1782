package dto

import "github.com/ze-parceiro/simulator_api/model"

type CompletedSessionsResponse struct {
	Total    int                 `json:"total"`
	Sessions []model.GameSession `json:"sessions"`
}

type CheckpointStatsResponse struct {
	Source string                 `json:"source"`
	Stats  []model.CheckpointStat `json:"stats"`
}
