package app

import "roevhul/internal/domain"

// EventKind identifies emitted domain events for transport dispatch.
type EventKind string

const (
	EventGameStarted    EventKind = "game_started"
	EventHandDealt      EventKind = "hand_dealt"
	EventPlayerMoved    EventKind = "player_moved"
	EventPlayerFinished EventKind = "player_finished"
	EventMoveRejected   EventKind = "move_rejected"
	EventGameEnded      EventKind = "game_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type GameStartedPayload struct {
	Players         []string
	FirstTurnUserID string
	TurnID          int64
}

type HandDealtPayload struct {
	UserID string
	Hand   []domain.Card
}

type PlayerMovedPayload struct {
	UserID string
	Move   domain.Move
	// Cleared is set when the move itself reset the table (clear card or four of a kind).
	Cleared bool
	// RoundReset is set when every other active player passed and the top was dropped.
	RoundReset     bool
	NextTurnUserID string
	TurnID         int64
}

type PlayerFinishedPayload struct {
	UserID string
	Place  int // 1-based
}

type MoveRejectedPayload struct {
	UserID string
	Reason string
}

type GameEndedPayload struct {
	FinishOrder []string
	Loser       string
}

// RejectionEvent builds the unicast event sent to the player whose move was refused.
func RejectionEvent(err *MoveError) Event {
	return Event{
		Kind:       EventMoveRejected,
		Payload:    MoveRejectedPayload{UserID: err.PlayerID, Reason: err.Reason},
		Recipients: []string{err.PlayerID},
	}
}
