package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ze-parceiro/simulator_api/model"
	"gorm.io/gorm"
)

// SessionRepository handles game session rows
type SessionRepository struct {
	BaseRepository
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *SessionRepository) GetSession(ctx context.Context, id string) (*model.GameSession, error) {
	var session model.GameSession
	if err := ds.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (ds *SessionRepository) SaveSession(ctx context.Context, session *model.GameSession) (*model.GameSession, error) {
	now := time.Now()
	if session.ID == "" {
		id, _ := uuid.NewV7()
		session.ID = id.String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = now
	}

	if err := ds.db.WithContext(ctx).Save(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}
