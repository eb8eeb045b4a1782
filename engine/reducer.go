package engine

import (
	"fmt"
	"math"
	"time"
)

// NewState builds the default state for a fresh play with no trainee logged in.
func NewState(rules Rules, catalogue []CheckpointDefinition) State {
	return State{
		PlayerPosition: rules.StartPosition,
		Stats:          defaultStats(rules),
		KPIs:           baselineKPIs(rules),
		Settings:       rules.DefaultSettings,
		Checkpoints:    initialCheckpoints(rules, catalogue),
	}
}

func defaultStats(rules Rules) Stats {
	return Stats{
		Lives:       rules.StartingLives,
		SessionTime: FormatElapsed(0),
	}
}

func baselineKPIs(rules Rules) KPIs {
	return KPIs{
		Availability:   rules.KPIBaseline,
		AcceptanceRate: rules.KPIBaseline,
		DeliveryTime:   rules.KPIBaseline,
		Rating:         rules.KPIBaseline,
	}
}

func initialCheckpoints(rules Rules, catalogue []CheckpointDefinition) []Checkpoint {
	checkpoints := make([]Checkpoint, len(catalogue))
	for i, def := range catalogue {
		status := StatusPending
		if rules.Sequential {
			status = StatusLocked
			if i == 0 {
				status = StatusCurrent
			}
		}
		checkpoints[i] = Checkpoint{CheckpointDefinition: def, Status: status}
	}
	return checkpoints
}

// Start marks identity as the active trainee. Stats are left untouched.
func Start(state State, identity string, now time.Time) State {
	next := state.clone()
	next.CurrentUser = identity
	next.SessionStart = now
	next.Stats.SessionTime = FormatElapsed(0)
	return next
}

// Move overwrites the player position. Walkability is the caller's concern.
func Move(state State, pos Position) State {
	next := state.clone()
	next.PlayerPosition = pos
	return next
}

// Answer applies one answer to the checkpoint with the given id.
// Unknown ids leave the state untouched and report Found=false.
func Answer(rules Rules, state State, checkpointID int, correct bool) (State, Outcome) {
	idx := state.indexOf(checkpointID)
	if idx < 0 {
		return state, Outcome{}
	}

	next := state.clone()
	cp := &next.Checkpoints[idx]
	if cp.Status != StatusCompleted {
		if correct {
			cp.Status = StatusCompleted
		} else {
			cp.Status = StatusFailed
		}
		cp.Completed = correct
	}

	if correct && rules.Sequential && idx+1 < len(next.Checkpoints) {
		if following := &next.Checkpoints[idx+1]; following.Status == StatusLocked {
			following.Status = StatusCurrent
		}
	}

	next.Stats.CompletedTasks = next.countCompleted()

	delta := -rules.WrongKPIPenalty
	if correct {
		next.Stats.Score += rules.PointsPerCorrect
		next.CorrectAnswers++
		delta = rules.CorrectKPIBonus
	} else if next.Stats.Lives > 0 {
		next.Stats.Lives--
	}
	next.TotalQuestions++
	next.Stats.Accuracy = Accuracy(next.CorrectAnswers, next.TotalQuestions)

	next.KPIs = KPIs{
		Availability:   clampKPI(next.KPIs.Availability + delta),
		AcceptanceRate: clampKPI(next.KPIs.AcceptanceRate + delta),
		DeliveryTime:   clampKPI(next.KPIs.DeliveryTime + delta),
		Rating:         clampKPI(next.KPIs.Rating + delta),
	}

	return next, Outcome{
		Found:   true,
		Correct: correct,
		Victory: correct && next.Stats.CompletedTasks == len(next.Checkpoints),
		Loss:    !correct && next.Stats.Lives == 0,
	}
}

// ApplySettings replaces the settings wholesale.
func ApplySettings(state State, settings Settings) State {
	next := state.clone()
	next.Settings = settings
	return next
}

// Reset returns progress to defaults and restarts the session clock.
// Identity and settings survive.
func Reset(rules Rules, state State, catalogue []CheckpointDefinition, now time.Time) State {
	next := NewState(rules, catalogue)
	next.CurrentUser = state.CurrentUser
	next.Settings = state.Settings
	next.SessionStart = now
	return next
}

// Tick recomputes the formatted session time. Inactive states are returned as-is.
func Tick(state State, now time.Time) State {
	if !state.Active() || state.SessionStart.IsZero() {
		return state
	}
	formatted := FormatElapsed(now.Sub(state.SessionStart))
	if formatted == state.Stats.SessionTime {
		return state
	}
	next := state
	next.Stats.SessionTime = formatted
	return next
}

func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// FormatElapsed renders a duration as MM:SS. Minutes are not capped at 59.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func clampKPI(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func (s State) indexOf(checkpointID int) int {
	for i, cp := range s.Checkpoints {
		if cp.ID == checkpointID {
			return i
		}
	}
	return -1
}

func (s State) countCompleted() int {
	n := 0
	for _, cp := range s.Checkpoints {
		if cp.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// Checkpoint returns the runtime checkpoint with the given id.
func (s State) Checkpoint(id int) (Checkpoint, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Checkpoint{}, false
	}
	return s.Checkpoints[idx], true
}

func (s State) clone() State {
	next := s
	next.Checkpoints = make([]Checkpoint, len(s.Checkpoints))
	copy(next.Checkpoints, s.Checkpoints)
	return next
}
