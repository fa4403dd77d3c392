package nakama

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"roevhul/internal/app"
	"roevhul/internal/domain"
)

var errBadPayload = errors.New("bad payload")

// PlayMoveRequest is the body of OpPlayMove. Move is "pass", a space separated
// string of card codes, or an array of card codes.
type PlayMoveRequest struct {
	TurnID int64           `json:"turn_id"`
	Move   json.RawMessage `json:"move"`
}

// PassTurnRequest is the body of OpPassTurn.
type PassTurnRequest struct {
	TurnID int64 `json:"turn_id"`
}

// Tokens decodes the move field into notation tokens.
func (r PlayMoveRequest) Tokens() ([]string, error) {
	raw := bytes.TrimSpace(r.Move)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: missing move", errBadPayload)
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadPayload, err)
		}
		move, err := domain.ParseMoveText(s)
		if err != nil {
			return nil, err
		}
		return domain.FormatMove(move), nil
	}
	var tokens []string
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadPayload, err)
	}
	return tokens, nil
}

func decodePlayMove(data []byte) (PlayMoveRequest, error) {
	var req PlayMoveRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("%w: %v", errBadPayload, err)
	}
	return req, nil
}

// decodePassTurn accepts an empty body, which decodes to turn 0 and is rejected as stale.
func decodePassTurn(data []byte) (PassTurnRequest, error) {
	var req PassTurnRequest
	if len(bytes.TrimSpace(data)) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("%w: %v", errBadPayload, err)
	}
	return req, nil
}

// StateMessage is the per-player snapshot sent with OpState.
type StateMessage struct {
	TurnID            int64          `json:"turn_id"`
	IsGameOver        bool           `json:"is_game_over"`
	Hand              []string       `json:"hand"`
	Top               []string       `json:"top"`
	CurrentPlayerTurn string         `json:"current_player_turn"`
	CardCounts        map[string]int `json:"card_counts"`
	FinishOrder       []string       `json:"finish_order"`
	Loser             string         `json:"loser,omitempty"`
}

func toStateMessage(v app.View) StateMessage {
	msg := StateMessage{
		TurnID:            v.TurnID,
		IsGameOver:        v.IsGameOver,
		Hand:              v.Hand,
		Top:               v.Top,
		CurrentPlayerTurn: v.CurrentPlayerTurn,
		CardCounts:        v.CardCounts,
		FinishOrder:       v.FinishOrder,
		Loser:             v.Loser,
	}
	if msg.Hand == nil {
		msg.Hand = []string{}
	}
	if msg.FinishOrder == nil {
		msg.FinishOrder = []string{}
	}
	return msg
}

type SeatInfo struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	IsBot       bool   `json:"is_bot"`
	IsOwner     bool   `json:"is_owner"`
	Cards       int    `json:"cards"`
}

// LobbyStateMessage describes the table: who sits where and who owns it.
type LobbyStateMessage struct {
	Seats   []SeatInfo `json:"seats"`
	Open    int        `json:"open"`
	Phase   string     `json:"phase"`
	Private bool       `json:"private"`
}

type GameStartedMessage struct {
	Players   []string `json:"players"`
	FirstTurn string   `json:"first_turn"`
	TurnID    int64    `json:"turn_id"`
}

type HandDealtMessage struct {
	Hand []string `json:"hand"`
}

type PlayerMoveMessage struct {
	PlayerID   string   `json:"player_id"`
	Move       []string `json:"move"`
	Cleared    bool     `json:"cleared"`
	RoundReset bool     `json:"round_reset"`
	NextPlayer string   `json:"next_player"`
	TurnID     int64    `json:"turn_id"`
}

type GameEndedMessage struct {
	FinishOrder []string `json:"finish_order"`
	Loser       string   `json:"loser"`
}

type MoveRejectedMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// eventMessage maps an app event to its op code and wire payload.
// ok is false for events that have no client representation.
func eventMessage(ev app.Event) (opCode int64, payload any, ok bool) {
	switch p := ev.Payload.(type) {
	case app.GameStartedPayload:
		return OpGameStarted, GameStartedMessage{Players: p.Players, FirstTurn: p.FirstTurnUserID, TurnID: p.TurnID}, true
	case app.HandDealtPayload:
		return OpHandDealt, HandDealtMessage{Hand: domain.CardCodes(p.Hand)}, true
	case app.PlayerMovedPayload:
		return OpPlayerMove, PlayerMoveMessage{
			PlayerID:   p.UserID,
			Move:       domain.FormatMove(p.Move),
			Cleared:    p.Cleared,
			RoundReset: p.RoundReset,
			NextPlayer: p.NextTurnUserID,
			TurnID:     p.TurnID,
		}, true
	case app.MoveRejectedPayload:
		return OpMoveRejected, MoveRejectedMessage{Code: CodeRejected, Message: p.Reason}, true
	case app.GameEndedPayload:
		return OpGameEnded, GameEndedMessage{FinishOrder: p.FinishOrder, Loser: p.Loser}, true
	default:
		// player_finished is folded into the state snapshots.
		return 0, nil, false
	}
}

func encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
