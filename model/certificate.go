package model

import "time"

type Certificate struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	PlayerCode  string    `json:"player_code"`
	PlayerName  string    `json:"player_name"`
	Score       int       `json:"score"`
	TotalTime   string    `json:"total_time"`
	Accuracy    int       `json:"accuracy"`
	KPIs        KPISet    `json:"kpis"`
	IssuedAt    time.Time `json:"issued_at"`
	DownloadURL string    `json:"download_url,omitempty"`
}

type KPISet struct {
	Availability   int `json:"availability"`
	AcceptanceRate int `json:"acceptance_rate"`
	DeliveryTime   int `json:"delivery_time"`
	Rating         int `json:"rating"`
}
