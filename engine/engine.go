package engine

import (
	"sync"
	"time"
)

// Engine owns one play's State. All mutations go through the mutex and a
// ticker goroutine keeps the session time current while a trainee is active.
type Engine struct {
	mu        sync.Mutex
	rules     Rules
	catalogue []CheckpointDefinition
	state     State

	now      func() time.Time
	interval time.Duration

	clockMu sync.Mutex
	stop    chan struct{}
	done    chan struct{}
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTickInterval changes the session clock period. Zero disables the ticker.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

func New(rules Rules, catalogue []CheckpointDefinition, opts ...Option) *Engine {
	e := &Engine{
		rules:     rules,
		catalogue: catalogue,
		now:       time.Now,
		interval:  time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state = NewState(rules, catalogue)
	return e
}

func (e *Engine) Rules() Rules {
	return e.rules
}

// Start activates a session for identity and (re)starts the clock.
func (e *Engine) Start(identity string) State {
	e.mu.Lock()
	e.state = Start(e.state, identity, e.now())
	s := e.state
	e.mu.Unlock()

	e.restartClock()
	return s
}

func (e *Engine) MovePlayer(pos Position) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Move(e.state, pos)
	return e.state
}

func (e *Engine) AnswerCheckpoint(checkpointID int, correct bool) (State, Outcome) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out Outcome
	e.state, out = Answer(e.rules, e.state, checkpointID, correct)
	return e.state, out
}

func (e *Engine) UpdateSettings(settings Settings) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = ApplySettings(e.state, settings)
	return e.state
}

func (e *Engine) ResetGame() State {
	e.mu.Lock()
	e.state = Reset(e.rules, e.state, e.catalogue, e.now())
	s := e.state
	e.mu.Unlock()

	e.restartClock()
	return s
}

// Snapshot returns the current state with a fresh session time.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Tick(e.state, e.now())
	return e.state.clone()
}

// Restore replaces the state, used when a play is rehydrated from a snapshot.
func (e *Engine) Restore(s State) {
	e.mu.Lock()
	e.state = s.clone()
	active := e.state.Active()
	e.mu.Unlock()

	if active {
		e.restartClock()
	}
}

// Close stops the session clock. The engine stays readable afterwards.
func (e *Engine) Close() {
	e.clockMu.Lock()
	defer e.clockMu.Unlock()
	e.stopClockLocked()
}

func (e *Engine) tick() {
	e.mu.Lock()
	e.state = Tick(e.state, e.now())
	e.mu.Unlock()
}

func (e *Engine) restartClock() {
	e.clockMu.Lock()
	defer e.clockMu.Unlock()

	e.stopClockLocked()
	if e.interval <= 0 {
		return
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	e.stop, e.done = stop, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e.tick()
			}
		}
	}()
}

func (e *Engine) stopClockLocked() {
	if e.stop == nil {
		return
	}
	close(e.stop)
	<-e.done
	e.stop, e.done = nil, nil
}
