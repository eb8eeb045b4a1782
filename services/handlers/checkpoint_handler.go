package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/ze-parceiro/simulator_api/dto"
	"github.com/ze-parceiro/simulator_api/shared"
)

type CheckpointHandler struct {
	contentSvc ContentServiceInterface
}

func NewCheckpointHandler(contentSvc ContentServiceInterface) *CheckpointHandler {
	return &CheckpointHandler{
		contentSvc: contentSvc,
	}
}

// @Summary List Checkpoints
// @Description Returns the checkpoint catalogue without answers
// @Tags checkpoints
// @Produce json
// @Success 200 {object} shared.Response{data=[]dto.CheckpointQuestion}
// @Router /api/v1/checkpoints [get]
func (h *CheckpointHandler) GetCheckpoints(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=60")
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.contentSvc.Questions())
}

// @Summary Get Checkpoint
// @Tags checkpoints
// @Produce json
// @Param id path int true "Checkpoint ID"
// @Success 200 {object} shared.Response{data=dto.CheckpointQuestion}
// @Failure 404 {object} shared.Response
// @Router /api/v1/checkpoints/{id} [get]
func (h *CheckpointHandler) GetCheckpoint(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return shared.NewBadRequestError(err, "Invalid checkpoint id")
	}

	def, ok := h.contentSvc.Definition(id)
	if !ok {
		return shared.NewNotFoundError(errors.New("checkpoint not found"), "Checkpoint not found")
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", dto.NewCheckpointQuestion(def))
}
