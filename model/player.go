package model

import "time"

type Player struct {
	ID        string    `json:"id" gorm:"primaryKey" firestore:"-"`
	Code      string    `json:"code" gorm:"uniqueIndex;not null" firestore:"code"`
	Name      string    `json:"name,omitempty" firestore:"name,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"not null" firestore:"created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null" firestore:"updated_at"`
}
