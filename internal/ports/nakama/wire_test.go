package nakama

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"roevhul/internal/app"
	"roevhul/internal/domain"
)

func TestPlayMoveRequest_Tokens(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []string
		wantErr bool
	}{
		{name: "pass string", body: `{"turn_id":3,"move":"pass"}`, want: []string{"pass"}},
		{name: "card string", body: `{"turn_id":3,"move":"c3 d3"}`, want: []string{"C3", "D3"}},
		{name: "card array", body: `{"turn_id":3,"move":["C3","D3"]}`, want: []string{"C3", "D3"}},
		{name: "missing move", body: `{"turn_id":3}`, wantErr: true},
		{name: "null move", body: `{"turn_id":3,"move":null}`, wantErr: true},
		{name: "number move", body: `{"turn_id":3,"move":7}`, wantErr: true},
		{name: "unknown card", body: `{"turn_id":3,"move":"X9"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := decodePlayMove([]byte(tt.body))
			if err != nil {
				t.Fatalf("decodePlayMove: %v", err)
			}
			if req.TurnID != 3 {
				t.Fatalf("turn id = %d, want 3", req.TurnID)
			}
			got, err := req.Tokens()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Tokens: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Tokens() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodePassTurn(t *testing.T) {
	req, err := decodePassTurn(nil)
	if err != nil || req.TurnID != 0 {
		t.Fatalf("empty body: req=%+v err=%v", req, err)
	}
	req, err = decodePassTurn([]byte(`{"turn_id": 12}`))
	if err != nil || req.TurnID != 12 {
		t.Fatalf("req=%+v err=%v", req, err)
	}
	if _, err := decodePassTurn([]byte(`{`)); !errors.Is(err, errBadPayload) {
		t.Fatalf("expected errBadPayload, got %v", err)
	}
}

func TestToStateMessage(t *testing.T) {
	got := toStateMessage(app.View{TurnID: 4, CurrentPlayerTurn: "a", CardCounts: map[string]int{"a": 0}})
	want := StateMessage{
		TurnID:            4,
		Hand:              []string{},
		CurrentPlayerTurn: "a",
		CardCounts:        map[string]int{"a": 0},
		FinishOrder:       []string{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("toStateMessage() mismatch (-want +got):\n%s", diff)
	}

	data, err := encode(got)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// An empty table is sent as null.
	if want := `"top":null`; !strings.Contains(string(data), want) {
		t.Fatalf("expected %s in %s", want, data)
	}
}

func TestEventMessage(t *testing.T) {
	c3 := domain.ThreeOfClubs

	tests := []struct {
		name   string
		event  app.Event
		opCode int64
		want   any
	}{
		{
			name:   "hand dealt",
			event:  app.Event{Kind: app.EventHandDealt, Payload: app.HandDealtPayload{UserID: "a", Hand: []domain.Card{c3}}},
			opCode: OpHandDealt,
			want:   HandDealtMessage{Hand: []string{"C3"}},
		},
		{
			name:   "player moved",
			event:  app.Event{Kind: app.EventPlayerMoved, Payload: app.PlayerMovedPayload{UserID: "a", Move: domain.Single{Card: c3}, NextTurnUserID: "b", TurnID: 2}},
			opCode: OpPlayerMove,
			want:   PlayerMoveMessage{PlayerID: "a", Move: []string{"C3"}, NextPlayer: "b", TurnID: 2},
		},
		{
			name:   "rejected",
			event:  app.Event{Kind: app.EventMoveRejected, Payload: app.MoveRejectedPayload{UserID: "a", Reason: "not your turn"}},
			opCode: OpMoveRejected,
			want:   MoveRejectedMessage{Code: CodeRejected, Message: "not your turn"},
		},
		{
			name:   "ended",
			event:  app.Event{Kind: app.EventGameEnded, Payload: app.GameEndedPayload{FinishOrder: []string{"a", "b"}, Loser: "b"}},
			opCode: OpGameEnded,
			want:   GameEndedMessage{FinishOrder: []string{"a", "b"}, Loser: "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opCode, payload, ok := eventMessage(tt.event)
			if !ok || opCode != tt.opCode {
				t.Fatalf("eventMessage() = %d, %t; want %d", opCode, ok, tt.opCode)
			}
			if diff := cmp.Diff(tt.want, payload); diff != "" {
				t.Fatalf("payload mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, _, ok := eventMessage(app.Event{Kind: app.EventPlayerFinished, Payload: app.PlayerFinishedPayload{UserID: "a", Place: 1}}); ok {
		t.Fatalf("player_finished should not be sent")
	}
}
