package model

import "time"

// CheckpointProgress is one answer attempt. Retries append new rows.
type CheckpointProgress struct {
	ID                string    `json:"id" gorm:"primaryKey" firestore:"-"`
	SessionID         string    `json:"session_id" gorm:"index;not null" firestore:"session_id"`
	CheckpointID      int       `json:"checkpoint_id" gorm:"not null" firestore:"checkpoint_id"`
	AnsweredCorrectly bool      `json:"answered_correctly" gorm:"not null" firestore:"answered_correctly"`
	TimeTaken         int       `json:"time_taken" gorm:"not null" firestore:"time_taken"` // in seconds
	CreatedAt         time.Time `json:"created_at" gorm:"not null" firestore:"created_at"`
}

// CheckpointStat aggregates the recorded attempts of one checkpoint.
type CheckpointStat struct {
	CheckpointID int `json:"checkpoint_id"`
	Attempts     int `json:"attempts"`
	Correct      int `json:"correct"`
	AvgTimeTaken int `json:"avg_time_taken"`
}
