package ports

import "context"

// MoveMessage describes one accepted move for spectators.
type MoveMessage struct {
	MatchID    string   `json:"match_id"`
	TurnID     int64    `json:"turn_id"`
	PlayerID   string   `json:"player_id"`
	Move       []string `json:"move"`
	Cleared    bool     `json:"cleared"`
	RoundReset bool     `json:"round_reset"`
	NextPlayer string   `json:"next_player"`
	GameOver   bool     `json:"game_over"`
	Loser      string   `json:"loser,omitempty"`
}

// MoveFeed defines the interface for publishing accepted moves outside the match.
type MoveFeed interface {
	// PublishMove delivers the message. Delivery is best effort; errors are logged by the caller
	// and never affect the match.
	PublishMove(ctx context.Context, msg MoveMessage) error
}
