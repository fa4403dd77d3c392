package app

import (
	"slices"

	"roevhul/internal/domain"
)

// Phase represents the lifecycle stage of a Røvhul game.
type Phase string

const (
	// PhaseNotStarted is the state before cards are dealt.
	PhaseNotStarted Phase = "not_started"
	// PhaseInProgress is the state while moves are accepted.
	PhaseInProgress Phase = "in_progress"
	// PhaseOver is reached when fewer than two players hold cards. Terminal.
	PhaseOver Phase = "over"
	// PhaseAborted is reached when an internal invariant fails. Terminal.
	PhaseAborted Phase = "aborted"
)

// Settings is the per-match configuration consumed at start.
type Settings struct {
	Jokers         int
	MagnitudeOrder domain.MagnitudeOrder
}

// DefaultSettings returns two jokers and the default magnitude order.
func DefaultSettings() Settings {
	return Settings{
		Jokers:         domain.DefaultJokers,
		MagnitudeOrder: domain.DefaultMagnitudeOrder(),
	}
}

// Game is the authoritative state of one match. Only Service mutates it.
type Game struct {
	Phase    Phase
	Settings Settings
	Rules    domain.Rules

	// Players is the roster in seat order.
	Players []string
	Hands   map[string]*domain.Hand
	Table   *domain.Table

	// Turn indexes Players modulo len(Players). It only ever grows.
	Turn int
	// TurnID changes every time a move is accepted.
	TurnID int64

	// FinishOrder lists players in the order they emptied their hand; the last entry is the loser.
	FinishOrder []string

	// LeaderID played the current top; Passes counts passes since then.
	LeaderID string
	Passes   int
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() string {
	if len(g.Players) == 0 {
		return ""
	}
	return g.Players[g.Turn%len(g.Players)]
}

// IsOver reports whether the game reached a terminal phase.
func (g *Game) IsOver() bool {
	return g.Phase == PhaseOver || g.Phase == PhaseAborted
}

// Loser returns the last player left holding cards, once the game is over.
func (g *Game) Loser() string {
	if g.Phase != PhaseOver || len(g.FinishOrder) == 0 {
		return ""
	}
	return g.FinishOrder[len(g.FinishOrder)-1]
}

// ActivePlayers returns players still holding cards, in seat order.
func (g *Game) ActivePlayers() []string {
	out := make([]string, 0, len(g.Players))
	for _, id := range g.Players {
		if h, ok := g.Hands[id]; ok && !h.IsEmpty() {
			out = append(out, id)
		}
	}
	return out
}

// HasCards reports whether the player still holds cards.
func (g *Game) HasCards(playerID string) bool {
	h, ok := g.Hands[playerID]
	return ok && !h.IsEmpty()
}

// CardCounts returns the number of cards each player holds.
func (g *Game) CardCounts() map[string]int {
	counts := make(map[string]int, len(g.Players))
	for _, id := range g.Players {
		if h, ok := g.Hands[id]; ok {
			counts[id] = h.Len()
		}
	}
	return counts
}

// IsSeated reports whether playerID is part of the roster.
func (g *Game) IsSeated(playerID string) bool {
	return slices.Contains(g.Players, playerID)
}

func (g *Game) finished(playerID string) bool {
	return slices.Contains(g.FinishOrder, playerID)
}
