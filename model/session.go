package model

import "time"

// GameSession is one play-through of the checkpoint map. Once IsCompleted is
// set the record is frozen.
type GameSession struct {
	ID                   string     `json:"id" gorm:"primaryKey" firestore:"-"`
	PlayerID             string     `json:"player_id" gorm:"index;not null" firestore:"player_id"`
	PlayerCode           string     `json:"player_code" firestore:"player_code"`
	PlayerName           string     `json:"player_name,omitempty" firestore:"player_name,omitempty"`
	Score                int        `json:"score" gorm:"not null" firestore:"score"`
	LivesUsed            int        `json:"lives_used" gorm:"not null" firestore:"lives_used"`
	TotalTime            int        `json:"total_time" gorm:"not null" firestore:"total_time"` // in seconds
	CompletedCheckpoints int        `json:"completed_checkpoints" gorm:"not null" firestore:"completed_checkpoints"`
	KPIAvailability      int        `json:"kpi_availability" gorm:"not null" firestore:"kpi_availability"`
	KPIAcceptanceRate    int        `json:"kpi_acceptance_rate" gorm:"not null" firestore:"kpi_acceptance_rate"`
	KPIDeliveryTime      int        `json:"kpi_delivery_time" gorm:"not null" firestore:"kpi_delivery_time"`
	KPIRating            int        `json:"kpi_rating" gorm:"not null" firestore:"kpi_rating"`
	CompletedAt          *time.Time `json:"completed_at" firestore:"completed_at"`
	IsCompleted          bool       `json:"is_completed" gorm:"index;not null" firestore:"is_completed"`
	CreatedAt            time.Time  `json:"created_at" gorm:"not null" firestore:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" gorm:"not null" firestore:"updated_at"`
}

// SessionPatch carries the fields a running session may change. Nil means untouched.
type SessionPatch struct {
	Score                *int  `json:"score,omitempty"`
	LivesUsed            *int  `json:"lives_used,omitempty"`
	TotalTime            *int  `json:"total_time,omitempty"`
	CompletedCheckpoints *int  `json:"completed_checkpoints,omitempty"`
	KPIAvailability      *int  `json:"kpi_availability,omitempty"`
	KPIAcceptanceRate    *int  `json:"kpi_acceptance_rate,omitempty"`
	KPIDeliveryTime      *int  `json:"kpi_delivery_time,omitempty"`
	KPIRating            *int  `json:"kpi_rating,omitempty"`
	IsCompleted          *bool `json:"is_completed,omitempty"`
}

// Apply writes the patch onto s. completed_at follows is_completed.
func (p SessionPatch) Apply(s *GameSession, now time.Time) {
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setInt(&s.Score, p.Score)
	setInt(&s.LivesUsed, p.LivesUsed)
	setInt(&s.TotalTime, p.TotalTime)
	setInt(&s.CompletedCheckpoints, p.CompletedCheckpoints)
	setInt(&s.KPIAvailability, p.KPIAvailability)
	setInt(&s.KPIAcceptanceRate, p.KPIAcceptanceRate)
	setInt(&s.KPIDeliveryTime, p.KPIDeliveryTime)
	setInt(&s.KPIRating, p.KPIRating)

	if p.IsCompleted != nil {
		s.IsCompleted = *p.IsCompleted
		if s.IsCompleted {
			at := now
			s.CompletedAt = &at
		} else {
			s.CompletedAt = nil
		}
	}
	s.UpdatedAt = now
}
