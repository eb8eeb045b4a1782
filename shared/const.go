package shared

const (
	PlayID     = "play_id"
	PlayerCode = "player_code"
)
