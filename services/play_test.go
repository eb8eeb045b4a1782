package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ze-parceiro/simulator_api/dto"
	"github.com/ze-parceiro/simulator_api/engine"
	"github.com/ze-parceiro/simulator_api/shared"
)

type testPlay struct {
	svc   *PlayService
	local *LocalStore
	clock time.Time
}

func newTestPlayService(t *testing.T) *testPlay {
	t.Helper()
	local := newTestLocalStore(t)
	tp := &testPlay{local: local, clock: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}

	svc := NewPlayService(
		engine.DefaultRules(),
		NewGatewayService(offlineRemote(), local),
		NewContentService(engine.DefaultCatalogue()),
		NewCertificateService(nil),
		NewRedisService(nil),
		NewJWTService("secret", time.Hour),
	)
	svc.tickInterval = 0
	svc.now = func() time.Time { return tp.clock }
	tp.svc = svc
	return tp
}

func (tp *testPlay) login(t *testing.T) *dto.LoginResponse {
	t.Helper()
	resp, err := tp.svc.Login(context.Background(), "ze-0042", "Maria")
	require.NoError(t, err)
	return resp
}

func requireStatus(t *testing.T, err error, code int) {
	t.Helper()
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	assert.Equal(t, code, appErr.StatusCode)
}

func correctAnswer(def engine.CheckpointDefinition) dto.AnswerRequest {
	if def.Type == engine.QuestionText {
		return dto.AnswerRequest{Text: def.CorrectText}
	}
	opt := def.CorrectOption
	return dto.AnswerRequest{Option: &opt}
}

func wrongAnswer(def engine.CheckpointDefinition) dto.AnswerRequest {
	if def.Type == engine.QuestionText {
		return dto.AnswerRequest{Text: "no idea"}
	}
	opt := (def.CorrectOption + 1) % len(def.Options)
	return dto.AnswerRequest{Option: &opt}
}

func TestPlay_Login(t *testing.T) {
	tp := newTestPlayService(t)
	resp := tp.login(t)

	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "ze-0042", resp.Player.Code)
	assert.Equal(t, "ze-0042", resp.State.CurrentUser)
	assert.Equal(t, 3, resp.State.Stats.Lives)

	claims, err := tp.svc.jwt.VerifyPlayToken(resp.Token.AccessToken)
	require.NoError(t, err)

	state, err := tp.svc.State(context.Background(), claims.PlayID)
	require.NoError(t, err)
	assert.True(t, state.Active())
}

func TestPlay_LoginStoreDown(t *testing.T) {
	tp := newTestPlayService(t)
	tp.svc.gateway = NewGatewayService(offlineRemote(), nil)

	_, err := tp.svc.Login(context.Background(), "ze-0042", "Maria")
	requireStatus(t, err, http.StatusServiceUnavailable)
}

func TestPlay_UnknownPlay(t *testing.T) {
	tp := newTestPlayService(t)
	_, err := tp.svc.State(context.Background(), "nope")
	requireStatus(t, err, http.StatusNotFound)
}

func TestPlay_Move(t *testing.T) {
	tp := newTestPlayService(t)
	playID := playIDOf(t, tp, tp.login(t))
	ctx := context.Background()

	resp, err := tp.svc.Move(ctx, playID, dto.MoveRequest{Direction: "up"})
	require.NoError(t, err)
	assert.Equal(t, engine.Position{X: 2, Y: 5}, resp.State.PlayerPosition)
	assert.Nil(t, resp.Checkpoint)

	x, y := 3, 2
	resp, err = tp.svc.Move(ctx, playID, dto.MoveRequest{X: &x, Y: &y})
	require.NoError(t, err)
	require.NotNil(t, resp.Checkpoint)
	assert.Equal(t, 0, resp.Checkpoint.ID)

	x, y = 0, 0
	_, err = tp.svc.Move(ctx, playID, dto.MoveRequest{X: &x, Y: &y})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestPlay_Reach(t *testing.T) {
	tp := newTestPlayService(t)
	playID := playIDOf(t, tp, tp.login(t))
	ctx := context.Background()

	resp, err := tp.svc.Reach(ctx, playID, 0)
	require.NoError(t, err)
	assert.Equal(t, engine.ReachAvailable, resp.Result)
	require.NotNil(t, resp.Checkpoint)
	assert.Equal(t, 0, resp.Checkpoint.ID)

	resp, err = tp.svc.Reach(ctx, playID, 1)
	require.NoError(t, err)
	assert.Equal(t, engine.ReachLocked, resp.Result)
	assert.Nil(t, resp.Checkpoint)
	assert.NotEmpty(t, resp.Message)

	_, err = tp.svc.Reach(ctx, playID, 99)
	requireStatus(t, err, http.StatusNotFound)
}

func TestPlay_AnswerRecordsProgress(t *testing.T) {
	tp := newTestPlayService(t)
	login := tp.login(t)
	playID := playIDOf(t, tp, login)
	ctx := context.Background()
	def, _ := tp.svc.content.Definition(0)

	_, err := tp.svc.Reach(ctx, playID, 0)
	require.NoError(t, err)
	tp.clock = tp.clock.Add(12 * time.Second)

	resp, err := tp.svc.Answer(ctx, playID, 0, wrongAnswer(def))
	require.NoError(t, err)
	assert.False(t, resp.Outcome.Correct)
	assert.Equal(t, def.Hint, resp.Hint)
	assert.Equal(t, 2, resp.State.Stats.Lives)

	resp, err = tp.svc.Answer(ctx, playID, 0, correctAnswer(def))
	require.NoError(t, err)
	assert.True(t, resp.Outcome.Correct)
	assert.Empty(t, resp.Hint)
	assert.Equal(t, 100, resp.State.Stats.Score)

	attempts, err := tp.local.Progress().GetProgressBySession(ctx, login.SessionID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, 12, attempts[0].TimeTaken)

	session, err := tp.local.GetSession(ctx, login.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 100, session.Score)
	assert.Equal(t, 1, session.LivesUsed)
	assert.Equal(t, 1, session.CompletedCheckpoints)
	assert.False(t, session.IsCompleted)
}

func TestPlay_AnswerValidation(t *testing.T) {
	tp := newTestPlayService(t)
	playID := playIDOf(t, tp, tp.login(t))
	ctx := context.Background()

	_, err := tp.svc.Answer(ctx, playID, 0, dto.AnswerRequest{Text: "hello"})
	requireStatus(t, err, http.StatusBadRequest)

	opt := 0
	_, err = tp.svc.Answer(ctx, playID, 42, dto.AnswerRequest{Option: &opt})
	requireStatus(t, err, http.StatusNotFound)
}

func TestPlay_AnswerLockedCheckpoint(t *testing.T) {
	tp := newTestPlayService(t)
	playID := playIDOf(t, tp, tp.login(t))
	ctx := context.Background()
	def, _ := tp.svc.content.Definition(14)

	_, err := tp.svc.Answer(ctx, playID, 14, correctAnswer(def))
	requireStatus(t, err, http.StatusConflict)
	appErr, _ := shared.GetAppError(err)
	assert.Equal(t, engine.ReachLocked.Message(), appErr.Message)

	state, err := tp.svc.State(ctx, playID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Stats.Score)
	assert.Equal(t, 0, state.TotalQuestions)
	assert.Equal(t, engine.StatusLocked, state.Checkpoints[14].Status)
}

func TestPlay_AnswerCompletedCheckpoint(t *testing.T) {
	tp := newTestPlayService(t)
	playID := playIDOf(t, tp, tp.login(t))
	ctx := context.Background()
	def, _ := tp.svc.content.Definition(0)

	_, err := tp.svc.Answer(ctx, playID, 0, correctAnswer(def))
	require.NoError(t, err)

	_, err = tp.svc.Answer(ctx, playID, 0, correctAnswer(def))
	requireStatus(t, err, http.StatusConflict)

	state, err := tp.svc.State(ctx, playID)
	require.NoError(t, err)
	assert.Equal(t, 100, state.Stats.Score)
	assert.Equal(t, 1, state.TotalQuestions)
}

func TestPlay_LossStartsNewSession(t *testing.T) {
	tp := newTestPlayService(t)
	login := tp.login(t)
	playID := playIDOf(t, tp, login)
	ctx := context.Background()
	def, _ := tp.svc.content.Definition(0)

	var resp *dto.AnswerResponse
	var err error
	for i := 0; i < 3; i++ {
		resp, err = tp.svc.Answer(ctx, playID, 0, wrongAnswer(def))
		require.NoError(t, err)
	}
	assert.True(t, resp.Outcome.Loss)
	assert.Equal(t, 0, resp.State.Stats.Lives)

	lost, err := tp.local.GetSession(ctx, login.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 3, lost.LivesUsed)
	assert.False(t, lost.IsCompleted)

	state, err := tp.svc.State(ctx, playID)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Stats.Lives)
	assert.Equal(t, "ze-0042", state.CurrentUser)

	p, err := tp.svc.get(ctx, playID)
	require.NoError(t, err)
	assert.NotEmpty(t, p.SessionID)
	assert.NotEqual(t, login.SessionID, p.SessionID)
}

func TestPlay_VictoryIssuesCertificate(t *testing.T) {
	tp := newTestPlayService(t)
	login := tp.login(t)
	playID := playIDOf(t, tp, login)
	ctx := context.Background()

	_, err := tp.svc.Certificate(ctx, playID)
	requireStatus(t, err, http.StatusNotFound)

	var resp *dto.AnswerResponse
	for _, def := range tp.svc.content.Catalogue() {
		resp, err = tp.svc.Answer(ctx, playID, def.ID, correctAnswer(def))
		require.NoError(t, err)
		tp.clock = tp.clock.Add(10 * time.Second)
	}
	assert.True(t, resp.Outcome.Victory)
	require.NotNil(t, resp.Certificate)
	assert.Equal(t, 1500, resp.Certificate.Score)
	assert.Equal(t, login.SessionID, resp.Certificate.SessionID)

	cert, err := tp.svc.Certificate(ctx, playID)
	require.NoError(t, err)
	assert.Equal(t, resp.Certificate.ID, cert.ID)

	// a finished play accepts no further answers
	last, _ := tp.svc.content.Definition(14)
	_, err = tp.svc.Answer(ctx, playID, 14, correctAnswer(last))
	requireStatus(t, err, http.StatusConflict)
	cert, err = tp.svc.Certificate(ctx, playID)
	require.NoError(t, err)
	assert.Equal(t, resp.Certificate.ID, cert.ID)
	state, err := tp.svc.State(ctx, playID)
	require.NoError(t, err)
	assert.Equal(t, 1500, state.Stats.Score)

	report := tp.svc.gateway.GetCompletedSessions(ctx)
	require.Len(t, report, 1)
	assert.Equal(t, login.SessionID, report[0].ID)
	assert.Equal(t, 15, report[0].CompletedCheckpoints)
	assert.Equal(t, 0, report[0].LivesUsed)
	assert.Equal(t, 140, report[0].TotalTime)

	// reset clears the certificate and opens a new session
	state, err = tp.svc.Reset(ctx, playID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Stats.Score)
	_, err = tp.svc.Certificate(ctx, playID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestPlay_SettingsAndEnd(t *testing.T) {
	tp := newTestPlayService(t)
	playID := playIDOf(t, tp, tp.login(t))
	ctx := context.Background()

	state, err := tp.svc.UpdateSettings(ctx, playID, dto.SettingsRequest{Sound: false, Animations: true, Speed: 1.5})
	require.NoError(t, err)
	assert.Equal(t, engine.Settings{Sound: false, Animations: true, Speed: 1.5}, state.Settings)

	require.NoError(t, tp.svc.End(ctx, playID))
	_, err = tp.svc.State(ctx, playID)
	requireStatus(t, err, http.StatusNotFound)
	requireStatus(t, tp.svc.End(ctx, playID), http.StatusNotFound)
}

func TestPlay_EvictIdle(t *testing.T) {
	tp := newTestPlayService(t)
	first := playIDOf(t, tp, tp.login(t))

	tp.clock = tp.clock.Add(90 * time.Minute)
	second := playIDOf(t, tp, tp.login(t))

	tp.clock = tp.clock.Add(45 * time.Minute)
	assert.Equal(t, 1, tp.svc.evictIdle())

	_, err := tp.svc.State(context.Background(), first)
	requireStatus(t, err, http.StatusNotFound)
	_, err = tp.svc.State(context.Background(), second)
	assert.NoError(t, err)
}

func TestRulesFromEnv(t *testing.T) {
	t.Setenv("GAME_STARTING_LIVES", "5")
	t.Setenv("GAME_KPI_BASELINE", "150")
	t.Setenv("GAME_SEQUENTIAL_UNLOCK", "false")

	rules := RulesFromEnv()
	assert.Equal(t, 5, rules.StartingLives)
	assert.Equal(t, 70, rules.KPIBaseline)
	assert.False(t, rules.Sequential)
}

func playIDOf(t *testing.T, tp *testPlay, resp *dto.LoginResponse) string {
	t.Helper()
	claims, err := tp.svc.jwt.VerifyPlayToken(resp.Token.AccessToken)
	require.NoError(t, err)
	return claims.PlayID
}
