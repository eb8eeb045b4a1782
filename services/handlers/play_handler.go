package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ze-parceiro/simulator_api/dto"
	"github.com/ze-parceiro/simulator_api/middleware"
	"github.com/ze-parceiro/simulator_api/shared"
)

type PlayHandler struct {
	playSvc PlayServiceInterface
}

func NewPlayHandler(playSvc PlayServiceInterface) *PlayHandler {
	return &PlayHandler{
		playSvc: playSvc,
	}
}

// @Summary Login
// @Description Registers the participant code, opens a game session and returns the play token
// @Tags play
// @Accept  json
// @Produce json
// @Param loginRequest body dto.LoginRequest true "Login request"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Failure 503 {object} shared.Response
// @Router /api/v1/play/login [post]
func (h *PlayHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.playSvc.Login(c.UserContext(), req.Code, req.Name)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Get State
// @Description Returns the current game state of the play
// @Tags play
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response{data=engine.State}
// @Router /api/v1/play/state [get]
func (h *PlayHandler) GetState(c *fiber.Ctx) error {
	state, err := h.playSvc.State(c.UserContext(), middleware.PlayID(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", state)
}

// @Summary Move
// @Description Moves the player to a tile or one step in a direction
// @Tags play
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param moveRequest body dto.MoveRequest true "Move request"
// @Success 200 {object} shared.Response{data=dto.MoveResponse}
// @Router /api/v1/play/move [post]
func (h *PlayHandler) Move(c *fiber.Ctx) error {
	var req dto.MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.playSvc.Move(c.UserContext(), middleware.PlayID(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Reach Checkpoint
// @Description Checks whether the checkpoint can be answered and returns its question
// @Tags play
// @Produce json
// @Security BearerAuth
// @Param id path int true "Checkpoint ID"
// @Success 200 {object} shared.Response{data=dto.ReachResponse}
// @Router /api/v1/play/checkpoints/{id}/reach [post]
func (h *PlayHandler) Reach(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return shared.NewBadRequestError(err, "Invalid checkpoint id")
	}

	resp, err := h.playSvc.Reach(c.UserContext(), middleware.PlayID(c), id)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Answer Checkpoint
// @Description Submits an answer. The response carries the outcome, a hint on wrong answers and the certificate on victory
// @Tags play
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Checkpoint ID"
// @Param answerRequest body dto.AnswerRequest true "Answer request"
// @Success 200 {object} shared.Response{data=dto.AnswerResponse}
// @Failure 409 {object} shared.Response
// @Router /api/v1/play/checkpoints/{id}/answer [post]
func (h *PlayHandler) Answer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return shared.NewBadRequestError(err, "Invalid checkpoint id")
	}

	var req dto.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.playSvc.Answer(c.UserContext(), middleware.PlayID(c), id, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Update Settings
// @Tags play
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param settingsRequest body dto.SettingsRequest true "Settings"
// @Success 200 {object} shared.Response{data=engine.State}
// @Router /api/v1/play/settings [put]
func (h *PlayHandler) UpdateSettings(c *fiber.Ctx) error {
	var req dto.SettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	state, err := h.playSvc.UpdateSettings(c.UserContext(), middleware.PlayID(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", state)
}

// @Summary Reset
// @Description Restarts the game for the same participant with a new session
// @Tags play
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response{data=engine.State}
// @Router /api/v1/play/reset [post]
func (h *PlayHandler) Reset(c *fiber.Ctx) error {
	state, err := h.playSvc.Reset(c.UserContext(), middleware.PlayID(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", state)
}

// @Summary End Play
// @Tags play
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response
// @Router /api/v1/play [delete]
func (h *PlayHandler) End(c *fiber.Ctx) error {
	if err := h.playSvc.End(c.UserContext(), middleware.PlayID(c)); err != nil {
		return err
	}

	return shared.ResponseOK(c, nil)
}

// @Summary Get Certificate
// @Description Returns the certificate issued when every checkpoint was completed
// @Tags play
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response{data=model.Certificate}
// @Failure 404 {object} shared.Response
// @Router /api/v1/play/certificate [get]
func (h *PlayHandler) GetCertificate(c *fiber.Ctx) error {
	cert, err := h.playSvc.Certificate(c.UserContext(), middleware.PlayID(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", cert)
}
