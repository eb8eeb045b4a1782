package engine

import "time"

type Status string

const (
	StatusLocked    Status = "locked"
	StatusCurrent   Status = "current"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type QuestionType string

const (
	QuestionMultiple QuestionType = "multiple"
	QuestionText     QuestionType = "text"
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Stats struct {
	Lives          int    `json:"lives"`
	Score          int    `json:"score"`
	CompletedTasks int    `json:"completed_tasks"`
	Accuracy       int    `json:"accuracy"`
	SessionTime    string `json:"session_time"`
}

// KPIs are the four 0-100 partner gauges shown on the HUD.
type KPIs struct {
	Availability   int `json:"availability"`
	AcceptanceRate int `json:"acceptance_rate"`
	DeliveryTime   int `json:"delivery_time"`
	Rating         int `json:"rating"`
}

type Settings struct {
	Sound      bool    `json:"sound"`
	Animations bool    `json:"animations"`
	Speed      float64 `json:"speed"`
}

// CheckpointDefinition is the static content of one map checkpoint.
type CheckpointDefinition struct {
	ID            int          `json:"id"`
	X             int          `json:"x"`
	Y             int          `json:"y"`
	Video         string       `json:"video"`
	Context       string       `json:"context"`
	Situation     string       `json:"situation"`
	Options       []string     `json:"options,omitempty"`
	CorrectOption int          `json:"correct_option"`
	CorrectText   string       `json:"correct_text,omitempty"`
	Hint          string       `json:"hint"`
	Type          QuestionType `json:"type"`
}

// Checkpoint wraps a definition with the per-session progress.
type Checkpoint struct {
	CheckpointDefinition
	Completed bool   `json:"completed"`
	Status    Status `json:"status"`
}

// State is the whole in-memory play. It is a value: every transition returns a new State.
type State struct {
	CurrentUser    string       `json:"current_user"`
	SessionStart   time.Time    `json:"session_start"`
	PlayerPosition Position     `json:"player_position"`
	Stats          Stats        `json:"stats"`
	KPIs           KPIs         `json:"kpis"`
	Settings       Settings     `json:"settings"`
	Checkpoints    []Checkpoint `json:"checkpoints"`
	CorrectAnswers int          `json:"correct_answers"`
	TotalQuestions int          `json:"total_questions"`
}

// Active reports whether a trainee is logged into this play.
func (s State) Active() bool {
	return s.CurrentUser != ""
}

// Outcome is what the caller inspects after an answer.
type Outcome struct {
	Found   bool `json:"found"`
	Correct bool `json:"correct"`
	Victory bool `json:"victory"`
	Loss    bool `json:"loss"`
}

// Rules holds the tunable constants of a play.
type Rules struct {
	StartingLives    int
	KPIBaseline      int
	CorrectKPIBonus  int
	WrongKPIPenalty  int
	PointsPerCorrect int
	StartPosition    Position
	Sequential       bool
	DefaultSettings  Settings
}

func DefaultRules() Rules {
	return Rules{
		StartingLives:    3,
		KPIBaseline:      70,
		CorrectKPIBonus:  5,
		WrongKPIPenalty:  3,
		PointsPerCorrect: 100,
		StartPosition:    Position{X: 2, Y: 6},
		Sequential:       true,
		DefaultSettings: Settings{
			Sound:      true,
			Animations: true,
			Speed:      1,
		},
	}
}

// LivesUsed is the persisted lives_used figure for the given remaining lives.
func (r Rules) LivesUsed(lives int) int {
	used := r.StartingLives - lives
	if used < 0 {
		return 0
	}
	return used
}
