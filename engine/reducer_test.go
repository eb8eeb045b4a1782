package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func startedState(t *testing.T) (Rules, State) {
	t.Helper()
	rules := DefaultRules()
	s := Start(NewState(rules, DefaultCatalogue()), "p1", t0)
	require.True(t, s.Active())
	return rules, s
}

func TestNewState_Defaults(t *testing.T) {
	rules := DefaultRules()
	s := NewState(rules, DefaultCatalogue())

	assert.False(t, s.Active())
	assert.Equal(t, Position{X: 2, Y: 6}, s.PlayerPosition)
	assert.Equal(t, Stats{Lives: 3, SessionTime: "00:00"}, s.Stats)
	assert.Equal(t, KPIs{70, 70, 70, 70}, s.KPIs)
	require.Len(t, s.Checkpoints, 15)
	assert.Equal(t, StatusCurrent, s.Checkpoints[0].Status)
	for _, cp := range s.Checkpoints[1:] {
		assert.Equal(t, StatusLocked, cp.Status)
		assert.False(t, cp.Completed)
	}
}

func TestNewState_NonSequential(t *testing.T) {
	rules := DefaultRules()
	rules.Sequential = false
	s := NewState(rules, DefaultCatalogue())
	for _, cp := range s.Checkpoints {
		assert.Equal(t, StatusPending, cp.Status)
	}

	s, _ = Answer(rules, s, 0, true)
	assert.Equal(t, StatusPending, s.Checkpoints[1].Status)
}

func TestStart_KeepsStats(t *testing.T) {
	rules, s := startedState(t)
	s, _ = Answer(rules, s, 0, true)

	s = Start(s, "p2", t0.Add(time.Minute))
	assert.Equal(t, "p2", s.CurrentUser)
	assert.Equal(t, 100, s.Stats.Score)
	assert.Equal(t, t0.Add(time.Minute), s.SessionStart)
}

func TestMove_Unconditional(t *testing.T) {
	_, s := startedState(t)
	s = Move(s, Position{X: 0, Y: 0})
	assert.Equal(t, Position{X: 0, Y: 0}, s.PlayerPosition)
}

func TestAnswer_SequentialUnlock(t *testing.T) {
	rules, s := startedState(t)
	for i := 0; i < 14; i++ {
		before := s
		s, _ = Answer(rules, s, i, true)
		assert.Equal(t, StatusCompleted, s.Checkpoints[i].Status)
		assert.Equal(t, StatusCurrent, s.Checkpoints[i+1].Status, "checkpoint %d", i+1)
		for j := i + 2; j < len(s.Checkpoints); j++ {
			assert.Equal(t, before.Checkpoints[j].Status, s.Checkpoints[j].Status, "checkpoint %d", j)
		}
	}
}

func TestAnswer_WrongDoesNotUnlock(t *testing.T) {
	rules, s := startedState(t)
	s, out := Answer(rules, s, 0, false)
	assert.True(t, out.Found)
	assert.Equal(t, StatusFailed, s.Checkpoints[0].Status)
	assert.Equal(t, StatusLocked, s.Checkpoints[1].Status)

	// retry from failed
	s, _ = Answer(rules, s, 0, true)
	assert.Equal(t, StatusCompleted, s.Checkpoints[0].Status)
	assert.True(t, s.Checkpoints[0].Completed)
	assert.Equal(t, StatusCurrent, s.Checkpoints[1].Status)
}

func TestAnswer_CompletedIsTerminal(t *testing.T) {
	rules, s := startedState(t)
	s, _ = Answer(rules, s, 0, true)
	s, _ = Answer(rules, s, 0, false)

	assert.Equal(t, StatusCompleted, s.Checkpoints[0].Status)
	assert.True(t, s.Checkpoints[0].Completed)
	assert.Equal(t, 1, s.Stats.CompletedTasks)
	assert.Equal(t, 2, s.Stats.Lives)
}

func TestAnswer_UnknownIDIsNoop(t *testing.T) {
	rules, s := startedState(t)
	next, out := Answer(rules, s, 99, true)
	assert.False(t, out.Found)
	assert.Equal(t, s, next)
}

func TestAnswer_DoesNotMutateInput(t *testing.T) {
	rules, s := startedState(t)
	_, _ = Answer(rules, s, 0, true)
	assert.Equal(t, StatusCurrent, s.Checkpoints[0].Status)
	assert.Equal(t, 0, s.Stats.Score)
}

func TestAnswer_ScoreMonotonicity(t *testing.T) {
	rules, s := startedState(t)
	pattern := []bool{true, false, false, true, true, false, true}
	correct := 0
	for i, ok := range pattern {
		s, _ = Answer(rules, s, i, ok)
		if ok {
			correct++
		}
		assert.Equal(t, 100*correct, s.Stats.Score)
	}
}

func TestAnswer_KPIClamping(t *testing.T) {
	rules := DefaultRules()
	for _, start := range []int{0, 1, 3, 50, 96, 99, 100} {
		s := NewState(rules, DefaultCatalogue())
		s.KPIs = KPIs{start, start, start, start}
		s.Stats.Lives = 1000
		for i := 0; i < 60; i++ {
			s, _ = Answer(rules, s, i%15, i%3 != 0)
			for _, v := range []int{s.KPIs.Availability, s.KPIs.AcceptanceRate, s.KPIs.DeliveryTime, s.KPIs.Rating} {
				assert.GreaterOrEqual(t, v, 0)
				assert.LessOrEqual(t, v, 100)
			}
		}
	}
}

func TestAnswer_KPIDeltas(t *testing.T) {
	rules, s := startedState(t)
	s, _ = Answer(rules, s, 0, true)
	assert.Equal(t, KPIs{75, 75, 75, 75}, s.KPIs)
	s, _ = Answer(rules, s, 1, false)
	assert.Equal(t, KPIs{72, 72, 72, 72}, s.KPIs)
}

func TestAnswer_LifeFloor(t *testing.T) {
	rules, s := startedState(t)
	for i := 0; i < 10; i++ {
		s, _ = Answer(rules, s, i, false)
		assert.GreaterOrEqual(t, s.Stats.Lives, 0)
	}
	assert.Equal(t, 0, s.Stats.Lives)
	assert.Equal(t, 10, s.TotalQuestions)
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0, Accuracy(0, 0))
	for total := 1; total <= 20; total++ {
		for correct := 0; correct <= total; correct++ {
			want := int(float64(100*correct)/float64(total) + 0.5)
			assert.Equal(t, want, Accuracy(correct, total), "%d/%d", correct, total)
		}
	}
	assert.Equal(t, 67, Accuracy(2, 3))
	assert.Equal(t, 33, Accuracy(1, 3))
}

func TestReset_Idempotent(t *testing.T) {
	rules, s := startedState(t)
	catalogue := DefaultCatalogue()
	s, _ = Answer(rules, s, 0, true)
	s, _ = Answer(rules, s, 1, false)
	s = Move(s, Position{X: 9, Y: 9})

	first := Reset(rules, s, catalogue, t0.Add(time.Minute))
	second := Reset(rules, first, catalogue, t0.Add(2*time.Minute))

	first.SessionStart, second.SessionStart = time.Time{}, time.Time{}
	assert.Equal(t, first, second)
	assert.Equal(t, "p1", second.CurrentUser)
	assert.Equal(t, 3, second.Stats.Lives)
	assert.Equal(t, 0, second.CorrectAnswers)
}

func TestTick(t *testing.T) {
	_, s := startedState(t)
	s = Tick(s, t0.Add(83*time.Second))
	assert.Equal(t, "01:23", s.Stats.SessionTime)

	idle := NewState(DefaultRules(), DefaultCatalogue())
	assert.Equal(t, "00:00", Tick(idle, t0.Add(time.Hour)).Stats.SessionTime)
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "00:00", FormatElapsed(-time.Second))
	assert.Equal(t, "00:59", FormatElapsed(59*time.Second))
	assert.Equal(t, "61:05", FormatElapsed(61*time.Minute+5*time.Second))
}

func TestScenarioA(t *testing.T) {
	rules, s := startedState(t)
	s, out := Answer(rules, s, 0, true)

	assert.Equal(t, 100, s.Stats.Score)
	assert.Equal(t, StatusCompleted, s.Checkpoints[0].Status)
	assert.Equal(t, StatusCurrent, s.Checkpoints[1].Status)
	assert.Equal(t, 3, s.Stats.Lives)
	assert.False(t, out.Victory)
	assert.False(t, out.Loss)
}

func TestScenarioB(t *testing.T) {
	rules, s := startedState(t)
	var out Outcome
	for i, id := range []int{0, 1, 2} {
		s, out = Answer(rules, s, id, false)
		assert.Equal(t, i == 2, out.Loss, "answer %d", i)
	}
	assert.Equal(t, 0, s.Stats.Lives)
	assert.Equal(t, 3, rules.LivesUsed(s.Stats.Lives))
}

func TestScenarioC(t *testing.T) {
	rules, s := startedState(t)
	var out Outcome
	for id := 0; id < 15; id++ {
		s, out = Answer(rules, s, id, true)
		assert.Equal(t, id == 14, out.Victory, "answer %d", id)
	}
	assert.Equal(t, 15, s.Stats.CompletedTasks)
	assert.Equal(t, 1500, s.Stats.Score)
	assert.Equal(t, 100, s.Stats.Accuracy)
}
