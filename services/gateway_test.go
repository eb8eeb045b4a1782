package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ze-parceiro/simulator_api/model"
	"github.com/ze-parceiro/simulator_api/store"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// failingStore rejects every call with the configured error.
type failingStore struct {
	err error
}

func (s failingStore) Name() string { return "failing" }

func (s failingStore) GetPlayerByCode(context.Context, string) (*model.Player, error) {
	return nil, s.err
}

func (s failingStore) GetSession(context.Context, string) (*model.GameSession, error) {
	return nil, s.err
}

func (s failingStore) UpsertPlayer(context.Context, *model.Player) (*model.Player, error) {
	return nil, s.err
}

func (s failingStore) UpsertSession(context.Context, *model.GameSession) (*model.GameSession, error) {
	return nil, s.err
}

func (s failingStore) AppendProgress(context.Context, *model.CheckpointProgress) (*model.CheckpointProgress, error) {
	return nil, s.err
}

func (s failingStore) QueryCompletedSessions(context.Context) ([]model.GameSession, error) {
	return nil, s.err
}

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	db, err := OpenSqlite(filepath.Join(t.TempDir(), "simulator.db"))
	require.NoError(t, err)
	require.NoError(t, MigrateLocalStore(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewLocalStore("sqlite", db)
}

func offlineRemote() store.Store {
	return failingStore{err: store.NewError(store.ErrorRemoteUnavailable, "failing", "any", errors.New("offline"))}
}

func TestGateway_SavePlayerFallsBackToLocal(t *testing.T) {
	gw := NewGatewayService(offlineRemote(), newTestLocalStore(t))
	ctx := context.Background()

	first, err := gw.SavePlayer(ctx, "p1", "Name")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Name", first.Name)

	second, err := gw.SavePlayer(ctx, "p1", "Name2")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Name2", second.Name)

	// empty name keeps the stored one
	third, err := gw.SavePlayer(ctx, "  p1 ", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)
	assert.Equal(t, "Name2", third.Name)
}

func TestGateway_SavePlayerRejectedRemote(t *testing.T) {
	remote := failingStore{err: store.NewError(store.ErrorRemoteRejected, "failing", "any", errors.New("permission denied"))}
	gw := NewGatewayService(remote, newTestLocalStore(t))

	p, err := gw.SavePlayer(context.Background(), "p2", "")
	require.NoError(t, err)
	assert.Equal(t, "p2", p.Code)
}

func TestGateway_TotalFailure(t *testing.T) {
	localErr := store.NewError(store.ErrorLocalUnavailable, "local", "any", errors.New("disk"))
	gw := NewGatewayService(offlineRemote(), failingStore{err: localErr})
	ctx := context.Background()

	p, err := gw.SavePlayer(ctx, "p1", "Name")
	assert.Nil(t, p)
	assert.Error(t, err)

	s, err := gw.CreateSession(ctx, &model.Player{ID: "x"})
	assert.Nil(t, s)
	assert.Error(t, err)

	// swallowed
	gw.SaveCheckpointProgress(ctx, "s1", 0, true, 4)

	assert.Empty(t, gw.GetCompletedSessions(ctx))
}

func TestGateway_SessionLifecycle(t *testing.T) {
	local := newTestLocalStore(t)
	gw := NewGatewayService(offlineRemote(), local)
	fixed := time.Date(2025, 5, 2, 12, 0, 0, 0, time.UTC)
	gw.now = func() time.Time { return fixed }
	ctx := context.Background()

	player, err := gw.SavePlayer(ctx, "p1", "Ana")
	require.NoError(t, err)

	session, err := gw.CreateSession(ctx, player)
	require.NoError(t, err)
	assert.False(t, session.IsCompleted)
	assert.Nil(t, session.CompletedAt)
	assert.Equal(t, 0, session.Score)
	assert.Equal(t, "p1", session.PlayerCode)
	assert.Equal(t, "Ana", session.PlayerName)

	score := 300
	updated, err := gw.UpdateGameSession(ctx, session.ID, model.SessionPatch{Score: &score})
	require.NoError(t, err)
	assert.Equal(t, 300, updated.Score)
	assert.Nil(t, updated.CompletedAt)

	done := true
	total := 95
	updated, err = gw.UpdateGameSession(ctx, session.ID, model.SessionPatch{IsCompleted: &done, TotalTime: &total})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, fixed.Equal(*updated.CompletedAt))

	// completed sessions are frozen
	late := 9999
	frozen, err := gw.UpdateGameSession(ctx, session.ID, model.SessionPatch{Score: &late})
	require.NoError(t, err)
	assert.Equal(t, 300, frozen.Score)
	assert.Equal(t, 95, frozen.TotalTime)

	gw.SaveCheckpointProgress(ctx, session.ID, 0, false, 12)
	gw.SaveCheckpointProgress(ctx, session.ID, 0, true, 7)
	attempts, err := local.Progress().GetProgressBySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}

func TestGateway_UpdateUnknownSession(t *testing.T) {
	gw := NewGatewayService(offlineRemote(), newTestLocalStore(t))
	score := 1
	s, err := gw.UpdateGameSession(context.Background(), "missing", model.SessionPatch{Score: &score})
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGateway_UpdateClearsCompletedAt(t *testing.T) {
	local := newTestLocalStore(t)
	gw := NewGatewayService(offlineRemote(), local)
	ctx := context.Background()

	// written directly so the row is not frozen by the completed check
	now := time.Now()
	gs, err := local.UpsertSession(ctx, &model.GameSession{PlayerID: "p", CompletedAt: &now})
	require.NoError(t, err)

	no := false
	updated, err := gw.UpdateGameSession(ctx, gs.ID, model.SessionPatch{IsCompleted: &no})
	require.NoError(t, err)
	assert.Nil(t, updated.CompletedAt)
}

func TestGateway_SaveGameSessionAndReport(t *testing.T) {
	gw := NewGatewayService(offlineRemote(), newTestLocalStore(t))
	ctx := context.Background()
	player := &model.Player{ID: "p-1"}

	clock := time.Date(2025, 5, 2, 12, 0, 0, 0, time.UTC)
	gw.now = func() time.Time { return clock }
	older, err := gw.SaveGameSession(ctx, player, SessionData{Score: 500, IsCompleted: true})
	require.NoError(t, err)
	assert.Equal(t, LocalCode("p-1"), older.PlayerCode)

	clock = clock.Add(time.Hour)
	newer, err := gw.SaveGameSession(ctx, player, SessionData{Score: 1500, IsCompleted: true, KPIs: model.KPISet{Rating: 99}})
	require.NoError(t, err)

	_, err = gw.SaveGameSession(ctx, player, SessionData{Score: 100, IsCompleted: false})
	require.NoError(t, err)

	sessions := gw.GetCompletedSessions(ctx)
	require.Len(t, sessions, 2)
	assert.Equal(t, newer.ID, sessions[0].ID)
	assert.Equal(t, older.ID, sessions[1].ID)
	assert.Equal(t, 99, sessions[0].KPIRating)
}

func TestGateway_CompletedSessionsMergeTiers(t *testing.T) {
	remote := newTestLocalStore(t)
	remote.name = "remote"
	local := newTestLocalStore(t)
	gw := NewGatewayService(remote, local)
	ctx := context.Background()

	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	_, err := remote.UpsertSession(ctx, &model.GameSession{PlayerID: "a", IsCompleted: true, CompletedAt: &t1})
	require.NoError(t, err)
	_, err = local.UpsertSession(ctx, &model.GameSession{PlayerID: "b", IsCompleted: true, CompletedAt: &t2})
	require.NoError(t, err)
	_, err = local.UpsertSession(ctx, &model.GameSession{PlayerID: "c", IsCompleted: true})
	require.NoError(t, err)

	sessions := gw.GetCompletedSessions(ctx)
	require.Len(t, sessions, 3)
	assert.Equal(t, "b", sessions[0].PlayerID)
	assert.Equal(t, "a", sessions[1].PlayerID)
	assert.Equal(t, "c", sessions[2].PlayerID)
}

func TestFirestoreErrorCode(t *testing.T) {
	assert.Equal(t, store.ErrorNotFound, firestoreErrorCode(status.Error(codes.NotFound, "gone")))
	assert.Equal(t, store.ErrorRemoteRejected, firestoreErrorCode(status.Error(codes.PermissionDenied, "no")))
	assert.Equal(t, store.ErrorRemoteRejected, firestoreErrorCode(status.Error(codes.InvalidArgument, "bad")))
	assert.Equal(t, store.ErrorRemoteUnavailable, firestoreErrorCode(status.Error(codes.Unavailable, "down")))
	assert.Equal(t, store.ErrorRemoteUnavailable, firestoreErrorCode(context.DeadlineExceeded))
	assert.Equal(t, store.ErrorRemoteUnavailable, firestoreErrorCode(errors.New("dial tcp")))
}

func TestFirestoreService_NotConfigured(t *testing.T) {
	fs := &FirestoreService{}
	_, err := fs.GetPlayerByCode(context.Background(), "p1")
	assert.ErrorIs(t, err, store.ErrNotConfigured)
	assert.Equal(t, store.ErrorRemoteUnavailable, store.CodeOf(err, ""))

	// the gateway serves from the local tier
	gw := NewGatewayService(fs, newTestLocalStore(t))
	p, err := gw.SavePlayer(context.Background(), "p1", "")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.Code)
}

func TestGateway_CheckpointStats(t *testing.T) {
	gw := NewGatewayService(offlineRemote(), newTestLocalStore(t))
	ctx := context.Background()

	gw.SaveCheckpointProgress(ctx, "s-1", 0, false, 21)
	gw.SaveCheckpointProgress(ctx, "s-1", 0, true, 10)
	gw.SaveCheckpointProgress(ctx, "s-2", 3, true, 7)

	resp, err := gw.GetCheckpointStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", resp.Source)
	require.Len(t, resp.Stats, 2)
	assert.Equal(t, model.CheckpointStat{CheckpointID: 0, Attempts: 2, Correct: 1, AvgTimeTaken: 15}, resp.Stats[0])
	assert.Equal(t, model.CheckpointStat{CheckpointID: 3, Attempts: 1, Correct: 1, AvgTimeTaken: 7}, resp.Stats[1])
}

func TestGateway_CheckpointStatsWithoutLocal(t *testing.T) {
	gw := NewGatewayService(offlineRemote(), nil)
	_, err := gw.GetCheckpointStats(context.Background())
	require.Error(t, err)
}
