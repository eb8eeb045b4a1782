package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ze-parceiro/simulator_api/dto"
	"github.com/ze-parceiro/simulator_api/engine"
	"github.com/ze-parceiro/simulator_api/model"
	"github.com/ze-parceiro/simulator_api/shared"
)

// PlayService keeps one engine per logged-in trainee and drives the answer
// loop: evaluate, mutate the engine, then persist.
type PlayService struct {
	appContext.DefaultService

	gateway *GatewayService
	content *ContentService
	certs   *CertificateService
	cache   *RedisService
	jwt     *JWTService

	rules        engine.Rules
	board        *engine.Board
	idleTTL      time.Duration
	tickInterval time.Duration
	now          func() time.Time

	mu    sync.RWMutex
	plays map[string]*Play

	closed chan struct{}
	done   chan struct{}
}

const PLAY_SVC = "play_svc"

const playKeyPrefix = "ze-simulator:play:"

var (
	ErrPlayNotFound     = errors.New("play not found")
	ErrCheckpointClosed = errors.New("checkpoint does not accept answers")
)

// Play is one trainee's in-memory game plus the identifiers needed to persist it.
type Play struct {
	mu sync.Mutex

	ID          string
	Player      model.Player
	SessionID   string
	Engine      *engine.Engine
	Certificate *model.Certificate

	reachedAt map[int]time.Time
	lastSeen  atomic.Int64
}

func (p *Play) touch(now time.Time) {
	p.lastSeen.Store(now.UnixNano())
}

func (p *Play) idleSince(cutoff time.Time) bool {
	return p.lastSeen.Load() < cutoff.UnixNano()
}

// playSnapshot is what gets written to redis so a play survives a restart.
type playSnapshot struct {
	ID          string             `json:"id"`
	Player      model.Player       `json:"player"`
	SessionID   string             `json:"session_id"`
	State       engine.State       `json:"state"`
	Certificate *model.Certificate `json:"certificate,omitempty"`
	ReachedAt   map[int]time.Time  `json:"reached_at,omitempty"`
}

func NewPlayService(rules engine.Rules, gateway *GatewayService, content *ContentService, certs *CertificateService, cache *RedisService, jwt *JWTService) *PlayService {
	return &PlayService{
		gateway:      gateway,
		content:      content,
		certs:        certs,
		cache:        cache,
		jwt:          jwt,
		rules:        rules,
		board:        engine.DefaultBoard(),
		idleTTL:      2 * time.Hour,
		tickInterval: time.Second,
		now:          time.Now,
		plays:        make(map[string]*Play),
	}
}

func (svc PlayService) Id() string {
	return PLAY_SVC
}

func (svc *PlayService) Configure(ctx *appContext.Context) error {
	svc.rules = RulesFromEnv()
	svc.board = engine.DefaultBoard()
	svc.tickInterval = time.Second
	svc.now = time.Now
	svc.plays = make(map[string]*Play)

	svc.idleTTL = 2 * time.Hour
	if v := os.Getenv("PLAY_IDLE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			svc.idleTTL = d
		}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *PlayService) Start() error {
	svc.gateway = svc.Service(GATEWAY_SVC).(*GatewayService)
	svc.content = svc.Service(CONTENT_SVC).(*ContentService)
	svc.certs = svc.Service(CERTIFICATE_SVC).(*CertificateService)
	svc.cache = svc.Service(REDIS_SVC).(*RedisService)
	svc.jwt = svc.Service(JWT_SVC).(*JWTService)

	svc.startJanitor()
	log.WithFields(log.Fields{
		"starting_lives": svc.rules.StartingLives,
		"kpi_baseline":   svc.rules.KPIBaseline,
		"sequential":     svc.rules.Sequential,
		"idle_ttl":       svc.idleTTL.String(),
	}).Info("Play service started")
	return nil
}

func (svc *PlayService) Shutdown() {
	if svc.closed != nil {
		close(svc.closed)
		<-svc.done
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	for id, p := range svc.plays {
		p.Engine.Close()
		delete(svc.plays, id)
	}
	activePlays.Set(0)
}

// RulesFromEnv reads the GAME_* overrides on top of the default rules.
func RulesFromEnv() engine.Rules {
	rules := engine.DefaultRules()
	if v, err := strconv.Atoi(os.Getenv("GAME_STARTING_LIVES")); err == nil && v > 0 {
		rules.StartingLives = v
	}
	if v, err := strconv.Atoi(os.Getenv("GAME_KPI_BASELINE")); err == nil && v >= 0 && v <= 100 {
		rules.KPIBaseline = v
	}
	if v, err := strconv.ParseBool(os.Getenv("GAME_SEQUENTIAL_UNLOCK")); err == nil {
		rules.Sequential = v
	}
	return rules
}

func (svc *PlayService) Rules() engine.Rules {
	return svc.rules
}

// Login registers the participant, opens a session and starts a fresh play.
func (svc *PlayService) Login(ctx context.Context, code, name string) (*dto.LoginResponse, error) {
	player, err := svc.gateway.SavePlayer(ctx, code, name)
	if err != nil {
		return nil, shared.NewServiceUnavailableError(err, "Could not save, try again")
	}

	p := &Play{
		ID:        uuid.NewString(),
		Player:    *player,
		Engine:    svc.newEngine(),
		reachedAt: make(map[int]time.Time),
	}
	p.touch(svc.now())
	p.SessionID = svc.openSession(ctx, p)

	p.Engine.ResetGame()
	state := p.Engine.Start(player.Code)

	token, err := svc.jwt.IssuePlayToken(p.ID, player.Code)
	if err != nil {
		p.Engine.Close()
		return nil, err
	}

	svc.register(p)
	svc.persist(ctx, p)

	log.WithFields(log.Fields{
		"play_id":    p.ID,
		"player_id":  player.ID,
		"session_id": p.SessionID,
	}).Info("Play started")

	return &dto.LoginResponse{
		Token:     *token,
		Player:    player,
		SessionID: p.SessionID,
		State:     state,
	}, nil
}

func (svc *PlayService) State(ctx context.Context, playID string) (engine.State, error) {
	p, err := svc.get(ctx, playID)
	if err != nil {
		return engine.State{}, err
	}
	return p.Engine.Snapshot(), nil
}

// Move relocates the trainee either to an absolute tile or one step in a direction.
func (svc *PlayService) Move(ctx context.Context, playID string, req dto.MoveRequest) (*dto.MoveResponse, error) {
	p, err := svc.get(ctx, playID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.Engine.Snapshot()
	var target engine.Position
	if req.Direction != "" {
		dir, ok := engine.ParseDirection(req.Direction)
		if !ok {
			return nil, shared.NewBadRequestError(fmt.Errorf("unknown direction %q", req.Direction), "Invalid request")
		}
		target = svc.board.Step(current.PlayerPosition, dir)
	} else {
		if req.X == nil || req.Y == nil {
			return nil, shared.NewBadRequestError(errors.New("either x and y or direction is required"), "Invalid request")
		}
		target = engine.Position{X: *req.X, Y: *req.Y}
		if !svc.board.Walkable(target) {
			return nil, shared.NewBadRequestError(fmt.Errorf("tile %d,%d is not walkable", target.X, target.Y), "Invalid request")
		}
	}

	state := p.Engine.MovePlayer(target)
	svc.persist(ctx, p)

	resp := &dto.MoveResponse{State: state}
	if cp, ok := svc.board.CheckpointAt(state, target); ok {
		resp.Checkpoint = &cp
	}
	return resp, nil
}

// Reach gates a checkpoint dialog. Interactable checkpoints start the answer timer.
func (svc *PlayService) Reach(ctx context.Context, playID string, checkpointID int) (*dto.ReachResponse, error) {
	p, err := svc.get(ctx, playID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	result := engine.Reach(p.Engine.Snapshot(), checkpointID)
	if result == engine.ReachUnknown {
		return nil, shared.NewNotFoundError(ErrUnknownCheckpoint, "Checkpoint not found")
	}

	resp := &dto.ReachResponse{Result: result, Message: result.Message()}
	if result.Interactable() {
		def, _ := svc.content.Definition(checkpointID)
		q := dto.NewCheckpointQuestion(def)
		resp.Checkpoint = &q
		p.reachedAt[checkpointID] = svc.now()
		svc.persist(ctx, p)
	}
	return resp, nil
}

// Answer evaluates and applies one answer, then records it. A loss finalizes
// the session and resets the play; a victory completes the session and issues
// the certificate.
func (svc *PlayService) Answer(ctx context.Context, playID string, checkpointID int, req dto.AnswerRequest) (*dto.AnswerResponse, error) {
	p, err := svc.get(ctx, playID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	// only checkpoints that open the question dialog accept answers
	switch reach := engine.Reach(p.Engine.Snapshot(), checkpointID); {
	case reach == engine.ReachUnknown:
		return nil, shared.NewNotFoundError(ErrUnknownCheckpoint, "Checkpoint not found")
	case !reach.Interactable():
		return nil, shared.NewConflictError(fmt.Errorf("%w: %s", ErrCheckpointClosed, reach), reach.Message())
	}

	correct, err := svc.content.EvaluateAnswer(checkpointID, req.Option, req.Text)
	if err != nil {
		if errors.Is(err, ErrUnknownCheckpoint) {
			return nil, shared.NewNotFoundError(err, "Checkpoint not found")
		}
		return nil, shared.NewBadRequestError(err, "Invalid request")
	}

	timeTaken := svc.timeTaken(p, checkpointID)
	state, outcome := p.Engine.AnswerCheckpoint(checkpointID, correct)
	observeAnswer(checkpointID, correct)

	if p.SessionID != "" {
		svc.gateway.SaveCheckpointProgress(ctx, p.SessionID, checkpointID, correct, timeTaken)
	}

	resp := &dto.AnswerResponse{Outcome: outcome, State: state}
	if !correct {
		if def, ok := svc.content.Definition(checkpointID); ok {
			resp.Hint = def.Hint
		}
	}

	switch {
	case outcome.Victory:
		svc.finalize(ctx, p, state, true)
		observeSessionFinished("victory")
		p.Certificate = svc.certs.Issue(ctx, &p.Player, p.SessionID, state)
		resp.Certificate = p.Certificate
	case outcome.Loss:
		svc.finalize(ctx, p, state, false)
		observeSessionFinished("loss")
		p.Engine.ResetGame()
		p.reachedAt = make(map[int]time.Time)
		p.SessionID = svc.openSession(ctx, p)
	default:
		svc.updateSession(ctx, p, state)
	}

	svc.persist(ctx, p)
	return resp, nil
}

func (svc *PlayService) UpdateSettings(ctx context.Context, playID string, req dto.SettingsRequest) (engine.State, error) {
	p, err := svc.get(ctx, playID)
	if err != nil {
		return engine.State{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	state := p.Engine.UpdateSettings(engine.Settings{
		Sound:      req.Sound,
		Animations: req.Animations,
		Speed:      req.Speed,
	})
	svc.persist(ctx, p)
	return state, nil
}

// Reset restarts the play for the same trainee with a new session.
func (svc *PlayService) Reset(ctx context.Context, playID string) (engine.State, error) {
	p, err := svc.get(ctx, playID)
	if err != nil {
		return engine.State{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	state := p.Engine.ResetGame()
	p.reachedAt = make(map[int]time.Time)
	p.Certificate = nil
	p.SessionID = svc.openSession(ctx, p)
	svc.persist(ctx, p)
	return state, nil
}

// End drops the play from memory and from the snapshot cache.
func (svc *PlayService) End(ctx context.Context, playID string) error {
	svc.mu.Lock()
	p, ok := svc.plays[playID]
	delete(svc.plays, playID)
	activePlays.Set(float64(len(svc.plays)))
	svc.mu.Unlock()

	if ok {
		p.Engine.Close()
	}
	if svc.cache.Enabled() {
		if err := svc.cache.Delete(ctx, playKeyPrefix+playID); err != nil {
			log.WithError(err).Warn("Failed to drop play snapshot")
		}
	}
	if !ok {
		return shared.NewNotFoundError(ErrPlayNotFound, "Play not found")
	}
	return nil
}

func (svc *PlayService) Certificate(ctx context.Context, playID string) (*model.Certificate, error) {
	p, err := svc.get(ctx, playID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Certificate == nil {
		return nil, shared.NewNotFoundError(errors.New("no certificate issued"), "Complete every checkpoint to earn the certificate")
	}
	return p.Certificate, nil
}

func (svc *PlayService) newEngine() *engine.Engine {
	return engine.New(svc.rules, svc.content.Catalogue(), engine.WithClock(svc.now), engine.WithTickInterval(svc.tickInterval))
}

func (svc *PlayService) openSession(ctx context.Context, p *Play) string {
	session, err := svc.gateway.CreateSession(ctx, &p.Player)
	if err != nil {
		log.WithFields(log.Fields{
			"play_id": p.ID,
			"error":   err.Error(),
		}).Warn("Could not open session, it will be saved when the play ends")
		return ""
	}
	return session.ID
}

func (svc *PlayService) timeTaken(p *Play, checkpointID int) int {
	start, ok := p.reachedAt[checkpointID]
	if !ok {
		start = p.Engine.Snapshot().SessionStart
	}
	delete(p.reachedAt, checkpointID)
	if start.IsZero() {
		return 0
	}
	secs := int(svc.now().Sub(start) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}

func (svc *PlayService) sessionFigures(state engine.State, completed bool) SessionData {
	total := 0
	if !state.SessionStart.IsZero() {
		total = int(svc.now().Sub(state.SessionStart) / time.Second)
	}
	return SessionData{
		Score:                state.Stats.Score,
		LivesUsed:            svc.rules.LivesUsed(state.Stats.Lives),
		TotalTime:            total,
		CompletedCheckpoints: state.Stats.CompletedTasks,
		KPIs: model.KPISet{
			Availability:   state.KPIs.Availability,
			AcceptanceRate: state.KPIs.AcceptanceRate,
			DeliveryTime:   state.KPIs.DeliveryTime,
			Rating:         state.KPIs.Rating,
		},
		IsCompleted: completed,
	}
}

func (d SessionData) patch() model.SessionPatch {
	return model.SessionPatch{
		Score:                &d.Score,
		LivesUsed:            &d.LivesUsed,
		TotalTime:            &d.TotalTime,
		CompletedCheckpoints: &d.CompletedCheckpoints,
		KPIAvailability:      &d.KPIs.Availability,
		KPIAcceptanceRate:    &d.KPIs.AcceptanceRate,
		KPIDeliveryTime:      &d.KPIs.DeliveryTime,
		KPIRating:            &d.KPIs.Rating,
		IsCompleted:          &d.IsCompleted,
	}
}

func (svc *PlayService) updateSession(ctx context.Context, p *Play, state engine.State) {
	if p.SessionID == "" {
		return
	}
	if _, err := svc.gateway.UpdateGameSession(ctx, p.SessionID, svc.sessionFigures(state, false).patch()); err != nil {
		log.WithFields(log.Fields{
			"session_id": p.SessionID,
			"error":      err.Error(),
		}).Warn("Failed to update session")
	}
}

// finalize writes the closing figures. Without an open session the result is
// saved as a new one.
func (svc *PlayService) finalize(ctx context.Context, p *Play, state engine.State, completed bool) {
	data := svc.sessionFigures(state, completed)

	if p.SessionID != "" {
		_, err := svc.gateway.UpdateGameSession(ctx, p.SessionID, data.patch())
		if err == nil {
			return
		}
		log.WithFields(log.Fields{
			"session_id": p.SessionID,
			"error":      err.Error(),
		}).Warn("Failed to finalize session, saving a new one")
	}

	saved, err := svc.gateway.SaveGameSession(ctx, &p.Player, data)
	if err != nil {
		log.WithFields(log.Fields{
			"play_id": p.ID,
			"error":   err.Error(),
		}).Error("Session result lost")
		return
	}
	p.SessionID = saved.ID
}

func (svc *PlayService) register(p *Play) {
	svc.mu.Lock()
	svc.plays[p.ID] = p
	activePlays.Set(float64(len(svc.plays)))
	svc.mu.Unlock()
}

// get returns a live play, rehydrating it from the snapshot cache when this
// process does not hold it.
func (svc *PlayService) get(ctx context.Context, playID string) (*Play, error) {
	svc.mu.RLock()
	p, ok := svc.plays[playID]
	svc.mu.RUnlock()
	if ok {
		p.touch(svc.now())
		return p, nil
	}

	p, err := svc.restore(ctx, playID)
	if err != nil {
		return nil, err
	}

	svc.mu.Lock()
	if existing, ok := svc.plays[playID]; ok {
		svc.mu.Unlock()
		p.Engine.Close()
		return existing, nil
	}
	svc.plays[playID] = p
	activePlays.Set(float64(len(svc.plays)))
	svc.mu.Unlock()
	return p, nil
}

func (svc *PlayService) restore(ctx context.Context, playID string) (*Play, error) {
	notFound := shared.NewNotFoundError(ErrPlayNotFound, "Play not found, log in again")
	if !svc.cache.Enabled() {
		return nil, notFound
	}

	var snap playSnapshot
	found, err := svc.cache.GetJSON(ctx, playKeyPrefix+playID, &snap)
	if err != nil {
		log.WithError(err).Warn("Failed to read play snapshot")
		return nil, notFound
	}
	if !found {
		return nil, notFound
	}

	p := &Play{
		ID:          snap.ID,
		Player:      snap.Player,
		SessionID:   snap.SessionID,
		Engine:      svc.newEngine(),
		Certificate: snap.Certificate,
		reachedAt:   snap.ReachedAt,
	}
	p.touch(svc.now())
	if p.reachedAt == nil {
		p.reachedAt = make(map[int]time.Time)
	}
	p.Engine.Restore(snap.State)

	log.WithField("play_id", playID).Info("Play restored from snapshot")
	return p, nil
}

func (svc *PlayService) persist(ctx context.Context, p *Play) {
	if !svc.cache.Enabled() {
		return
	}
	snap := playSnapshot{
		ID:          p.ID,
		Player:      p.Player,
		SessionID:   p.SessionID,
		State:       p.Engine.Snapshot(),
		Certificate: p.Certificate,
		ReachedAt:   p.reachedAt,
	}
	if err := svc.cache.SetJSON(ctx, playKeyPrefix+p.ID, snap, svc.idleTTL); err != nil {
		log.WithError(err).Warn("Failed to write play snapshot")
	}
}

func (svc *PlayService) startJanitor() {
	svc.closed = make(chan struct{})
	svc.done = make(chan struct{})

	interval := svc.idleTTL / 2
	if interval > time.Minute {
		interval = time.Minute
	}

	go func() {
		defer close(svc.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-svc.closed:
				return
			case <-ticker.C:
				svc.evictIdle()
			}
		}
	}()
}

// evictIdle closes plays not touched within the idle TTL. Their snapshots
// expire from redis on the same TTL.
func (svc *PlayService) evictIdle() int {
	cutoff := svc.now().Add(-svc.idleTTL)

	svc.mu.Lock()
	var idle []*Play
	for id, p := range svc.plays {
		if p.idleSince(cutoff) {
			idle = append(idle, p)
			delete(svc.plays, id)
		}
	}
	activePlays.Set(float64(len(svc.plays)))
	svc.mu.Unlock()

	for _, p := range idle {
		p.Engine.Close()
		log.WithField("play_id", p.ID).Debug("Evicted idle play")
	}
	return len(idle)
}
