package services

import (
	"context"
	"errors"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ze-parceiro/simulator_api/model"
	"github.com/ze-parceiro/simulator_api/store"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	playersCollection  = "players"
	sessionsCollection = "game_sessions"
	progressCollection = "checkpoints_progress"
)

// FirestoreService is the remote tier. When no project is configured every
// call fails with remote_unavailable and the gateway serves from the local store.
type FirestoreService struct {
	appContext.DefaultService
	client *firestore.Client

	projectID       string
	credentialsFile string
	timeout         time.Duration
}

const FIRESTORE_SVC = "firestore_svc"

func (svc FirestoreService) Id() string {
	return FIRESTORE_SVC
}

func (svc *FirestoreService) Configure(ctx *appContext.Context) error {
	svc.projectID = os.Getenv("FIREBASE_PROJECT_ID")
	svc.credentialsFile = os.Getenv("FIREBASE_CREDENTIALS_FILE")

	svc.timeout = 5 * time.Second
	if v := os.Getenv("FIRESTORE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			svc.timeout = d
		}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *FirestoreService) Start() error {
	if svc.projectID == "" {
		log.Warn("FIREBASE_PROJECT_ID not set, remote store disabled")
		return nil
	}

	var opts []option.ClientOption
	if svc.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(svc.credentialsFile))
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: svc.projectID}, opts...)
	if err != nil {
		// The simulator keeps working on the local store
		log.WithError(err).Warn("Failed to initialise Firebase app, remote store disabled")
		return nil
	}

	svc.client, err = app.Firestore(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to create Firestore client, remote store disabled")
		svc.client = nil
		return nil
	}

	log.WithField("project_id", svc.projectID).Info("Firestore remote store enabled")
	return nil
}

func (svc *FirestoreService) Shutdown() {
	if svc.client != nil {
		svc.client.Close()
	}
}

func (svc *FirestoreService) Name() string {
	return "firestore"
}

func (svc *FirestoreService) Enabled() bool {
	return svc.client != nil
}

func (svc *FirestoreService) begin(ctx context.Context, op string) (context.Context, context.CancelFunc, error) {
	if svc.client == nil {
		return nil, nil, store.NewError(store.ErrorRemoteUnavailable, svc.Name(), op, store.ErrNotConfigured)
	}
	ctx, cancel := context.WithTimeout(ctx, svc.timeout)
	return ctx, cancel, nil
}

func (svc *FirestoreService) GetPlayerByCode(ctx context.Context, code string) (*model.Player, error) {
	const op = "get_player"
	ctx, cancel, err := svc.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	iter := svc.client.Collection(playersCollection).Where("code", "==", code).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, store.NewError(store.ErrorNotFound, svc.Name(), op, nil)
	}
	if err != nil {
		return nil, svc.handleError(op, err)
	}

	var player model.Player
	if err := doc.DataTo(&player); err != nil {
		return nil, svc.handleError(op, err)
	}
	player.ID = doc.Ref.ID
	return &player, nil
}

func (svc *FirestoreService) GetSession(ctx context.Context, id string) (*model.GameSession, error) {
	const op = "get_session"
	ctx, cancel, err := svc.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	doc, err := svc.client.Collection(sessionsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, svc.handleError(op, err)
	}

	var session model.GameSession
	if err := doc.DataTo(&session); err != nil {
		return nil, svc.handleError(op, err)
	}
	session.ID = doc.Ref.ID
	return &session, nil
}

func (svc *FirestoreService) UpsertPlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	const op = "upsert_player"
	ctx, cancel, err := svc.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	saved := *player
	now := time.Now()
	if saved.ID == "" {
		id, _ := uuid.NewV7()
		saved.ID = id.String()
	}
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now

	if _, err := svc.client.Collection(playersCollection).Doc(saved.ID).Set(ctx, saved); err != nil {
		return nil, svc.handleError(op, err)
	}
	return &saved, nil
}

func (svc *FirestoreService) UpsertSession(ctx context.Context, session *model.GameSession) (*model.GameSession, error) {
	const op = "upsert_session"
	ctx, cancel, err := svc.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	saved := *session
	now := time.Now()
	if saved.ID == "" {
		id, _ := uuid.NewV7()
		saved.ID = id.String()
	}
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	if saved.UpdatedAt.IsZero() {
		saved.UpdatedAt = now
	}

	if _, err := svc.client.Collection(sessionsCollection).Doc(saved.ID).Set(ctx, saved); err != nil {
		return nil, svc.handleError(op, err)
	}
	return &saved, nil
}

func (svc *FirestoreService) AppendProgress(ctx context.Context, progress *model.CheckpointProgress) (*model.CheckpointProgress, error) {
	const op = "append_progress"
	ctx, cancel, err := svc.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	saved := *progress
	if saved.ID == "" {
		id, _ := uuid.NewV7()
		saved.ID = id.String()
	}
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now()
	}

	if _, err := svc.client.Collection(progressCollection).Doc(saved.ID).Create(ctx, saved); err != nil {
		return nil, svc.handleError(op, err)
	}
	return &saved, nil
}

func (svc *FirestoreService) QueryCompletedSessions(ctx context.Context) ([]model.GameSession, error) {
	const op = "query_completed_sessions"
	ctx, cancel, err := svc.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	docs, err := svc.client.Collection(sessionsCollection).Where("is_completed", "==", true).Documents(ctx).GetAll()
	if err != nil {
		return nil, svc.handleError(op, err)
	}

	sessions := make([]model.GameSession, 0, len(docs))
	for _, doc := range docs {
		var session model.GameSession
		if err := doc.DataTo(&session); err != nil {
			log.WithFields(log.Fields{
				"doc_id": doc.Ref.ID,
				"error":  err.Error(),
			}).Warn("Skipping malformed session document")
			continue
		}
		session.ID = doc.Ref.ID
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (svc *FirestoreService) handleError(op string, err error) error {
	return store.NewError(firestoreErrorCode(err), svc.Name(), op, err)
}

func firestoreErrorCode(err error) store.ErrorCode {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return store.ErrorRemoteUnavailable
	}
	switch status.Code(err) {
	case codes.NotFound:
		return store.ErrorNotFound
	case codes.InvalidArgument, codes.PermissionDenied, codes.Unauthenticated,
		codes.FailedPrecondition, codes.AlreadyExists, codes.OutOfRange:
		return store.ErrorRemoteRejected
	default:
		return store.ErrorRemoteUnavailable
	}
}
