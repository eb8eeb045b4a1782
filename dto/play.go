package dto

import (
	"errors"

	"github.com/ze-parceiro/simulator_api/engine"
	"github.com/ze-parceiro/simulator_api/model"
)

type LoginRequest struct {
	Code string `json:"code" validate:"required,participant_code" example:"ze-0042"`
	Name string `json:"name" validate:"required,min=1,max=80" example:"Maria Souza"`
}

func (r LoginRequest) Validate() error {
	return GetValidator().Struct(r)
}

type LoginResponse struct {
	Token     TokenPair     `json:"token"`
	Player    *model.Player `json:"player"`
	SessionID string        `json:"session_id"`
	State     engine.State  `json:"state"`
}

// MoveRequest carries either an absolute position or a single step direction.
type MoveRequest struct {
	X         *int   `json:"x,omitempty" validate:"omitempty,min=0,max=15"`
	Y         *int   `json:"y,omitempty" validate:"omitempty,min=0,max=11"`
	Direction string `json:"direction,omitempty" validate:"omitempty,direction"`
}

func (r MoveRequest) Validate() error {
	if err := GetValidator().Struct(r); err != nil {
		return err
	}
	hasPos := r.X != nil && r.Y != nil
	if !hasPos && r.Direction == "" {
		return errors.New("either x and y or direction is required")
	}
	return nil
}

type MoveResponse struct {
	State      engine.State       `json:"state"`
	Checkpoint *engine.Checkpoint `json:"checkpoint,omitempty"`
}

type ReachResponse struct {
	Result     engine.ReachResult  `json:"result"`
	Message    string              `json:"message,omitempty"`
	Checkpoint *CheckpointQuestion `json:"checkpoint,omitempty"`
}

type AnswerRequest struct {
	Option *int   `json:"option,omitempty" validate:"omitempty,min=0"`
	Text   string `json:"text,omitempty" validate:"omitempty,max=500"`
}

func (r AnswerRequest) Validate() error {
	if err := GetValidator().Struct(r); err != nil {
		return err
	}
	if r.Option == nil && r.Text == "" {
		return errors.New("option or text is required")
	}
	return nil
}

type AnswerResponse struct {
	Outcome     engine.Outcome     `json:"outcome"`
	Hint        string             `json:"hint,omitempty"`
	State       engine.State       `json:"state"`
	Certificate *model.Certificate `json:"certificate,omitempty"`
}

type SettingsRequest struct {
	Sound      bool    `json:"sound"`
	Animations bool    `json:"animations"`
	Speed      float64 `json:"speed" validate:"gte=0.25,lte=2,speed_step"`
}

func (r SettingsRequest) Validate() error {
	return GetValidator().Struct(r)
}

// CheckpointQuestion is a checkpoint as shown to the trainee, without the answer.
type CheckpointQuestion struct {
	ID        int                 `json:"id"`
	X         int                 `json:"x"`
	Y         int                 `json:"y"`
	Video     string              `json:"video"`
	Context   string              `json:"context"`
	Situation string              `json:"situation"`
	Options   []string            `json:"options,omitempty"`
	Type      engine.QuestionType `json:"type"`
	Status    engine.Status       `json:"status,omitempty"`
}

func NewCheckpointQuestion(def engine.CheckpointDefinition) CheckpointQuestion {
	return CheckpointQuestion{
		ID:        def.ID,
		X:         def.X,
		Y:         def.Y,
		Video:     def.Video,
		Context:   def.Context,
		Situation: def.Situation,
		Options:   def.Options,
		Type:      def.Type,
	}
}
