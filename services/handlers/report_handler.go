package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ze-parceiro/simulator_api/dto"
	"github.com/ze-parceiro/simulator_api/shared"
)

type ReportHandler struct {
	reportSvc ReportServiceInterface
}

func NewReportHandler(reportSvc ReportServiceInterface) *ReportHandler {
	return &ReportHandler{
		reportSvc: reportSvc,
	}
}

// @Summary Completed Sessions
// @Description Completed game sessions from both stores, newest first
// @Tags reports
// @Produce json
// @Success 200 {object} shared.Response{data=dto.CompletedSessionsResponse}
// @Router /api/v1/reports/sessions/completed [get]
func (h *ReportHandler) GetCompletedSessions(c *fiber.Ctx) error {
	sessions := h.reportSvc.GetCompletedSessions(c.UserContext())

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", dto.CompletedSessionsResponse{
		Total:    len(sessions),
		Sessions: sessions,
	})
}

// @Summary Checkpoint Statistics
// @Description Attempts, correct answers and average answer time per checkpoint
// @Tags reports
// @Produce json
// @Success 200 {object} shared.Response{data=dto.CheckpointStatsResponse}
// @Failure 503 {object} shared.Response
// @Router /api/v1/reports/checkpoints [get]
func (h *ReportHandler) GetCheckpointStats(c *fiber.Ctx) error {
	stats, err := h.reportSvc.GetCheckpointStats(c.UserContext())
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", stats)
}
